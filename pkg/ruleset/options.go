// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package ruleset

import (
	"encoding/json"
	"fmt"
	"slices"

	"k8s.io/apimachinery/pkg/util/validation/field"

	"github.com/gardener/kube-scanner/pkg/config"
	"github.com/gardener/kube-scanner/pkg/rule"
)

// IndexedRuleOptionsConfig is a rule option together with its index in the configuration.
type IndexedRuleOptionsConfig struct {
	config.RuleOptionsConfig
	// Index is the rule option's index in the file configuration
	Index int
}

// IndexRuleOptions returns the rule options of a ruleset configuration mapped by rule id.
func IndexRuleOptions(rulesetConfig config.RulesetConfig) (map[string]IndexedRuleOptionsConfig, error) {
	ruleOptions := make(map[string]IndexedRuleOptionsConfig, len(rulesetConfig.RuleOptions))
	for index, opt := range rulesetConfig.RuleOptions {
		if _, ok := ruleOptions[opt.RuleID]; ok {
			return nil, fmt.Errorf("rule option for rule id: %s is already registered", opt.RuleID)
		}
		ruleOptions[opt.RuleID] = IndexedRuleOptionsConfig{Index: index, RuleOptionsConfig: opt}
	}
	return ruleOptions, nil
}

// ValidateRuleOptions checks that rule options only reference known rules
// and that skipped rules carry a justification.
func ValidateRuleOptions(ruleOptions map[string]IndexedRuleOptionsConfig, knownIDs []string, fldPath *field.Path) field.ErrorList {
	var allErrs field.ErrorList
	for id, opt := range ruleOptions {
		idxPath := fldPath.Index(opt.Index)
		if !slices.Contains(knownIDs, id) {
			allErrs = append(allErrs, field.NotSupported(idxPath.Child("ruleID"), id, knownIDs))
			continue
		}
		if opt.Skip != nil && opt.Skip.Enabled && len(opt.Skip.Justification) == 0 {
			allErrs = append(allErrs, field.Required(idxPath.Child("skip", "justification"), "must be set when a rule is skipped"))
		}
	}
	return allErrs
}

// ApplySkipOptions replaces every rule that is skipped by configuration with a [rule.SkipRule].
// Every rule is required to implement [rule.Severity].
func ApplySkipOptions(rules []rule.Rule, ruleOptions map[string]IndexedRuleOptionsConfig) ([]rule.Rule, error) {
	res := slices.Clone(rules)
	for i, r := range res {
		severity, ok := r.(rule.Severity)
		if !ok {
			return nil, fmt.Errorf("rule %s does not implement rule.Severity", r.ID())
		}

		opt, found := ruleOptions[r.ID()]
		if found && opt.Skip != nil && opt.Skip.Enabled {
			res[i] = rule.NewSkipRule(r.ID(), r.Name(), opt.Skip.Justification, severity.Severity())
		}
	}
	return res, nil
}

// ParseArgs decodes generic ruleset or rule arguments into the given type.
func ParseArgs[A any](args any) (A, error) {
	var parsed A
	if args == nil {
		return parsed, nil
	}

	argsByte, err := json.Marshal(args)
	if err != nil {
		return parsed, err
	}
	if err := json.Unmarshal(argsByte, &parsed); err != nil {
		return parsed, err
	}
	return parsed, nil
}

// SkippedRules returns all rules that are skipped.
func SkippedRules(r Ruleset) []*rule.SkipRule {
	var skipped []*rule.SkipRule
	for _, rr := range r.Rules() {
		if s, ok := rr.(*rule.SkipRule); ok {
			skipped = append(skipped, s)
		}
	}
	return skipped
}
