// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package antipatterns

import (
	"fmt"
	"slices"

	"k8s.io/apimachinery/pkg/util/validation/field"

	"github.com/gardener/kube-scanner/pkg/config"
	"github.com/gardener/kube-scanner/pkg/rule"
	"github.com/gardener/kube-scanner/pkg/ruleset"
	"github.com/gardener/kube-scanner/pkg/ruleset/antipatterns/rules"
)

const (
	// RulesetID is a constant containing the id of the Workload Anti-Patterns Ruleset.
	RulesetID = "anti-patterns"
	// RulesetName is a constant containing the user-friendly name of the Workload Anti-Patterns Ruleset.
	RulesetName = "Workload Anti-Patterns"
)

var (
	_ ruleset.Ruleset = &Ruleset{}
	// SupportedVersions is a list of available versions for the Workload Anti-Patterns Ruleset.
	// Versions are sorted from newest to oldest.
	SupportedVersions = []string{"v1"}
)

// Ruleset contains checks for common workload anti-patterns
// that are not part of a benchmark.
type Ruleset struct {
	version string
	rules   []rule.Rule
}

// FromGenericConfig creates a Ruleset from a generic ruleset configuration.
func FromGenericConfig(rulesetConfig config.RulesetConfig, fldPath *field.Path) (*Ruleset, error) {
	version := rulesetConfig.Version
	if len(version) == 0 {
		version = SupportedVersions[0]
	}
	if !slices.Contains(SupportedVersions, version) {
		return nil, fmt.Errorf("unknown ruleset %s version: %s", rulesetConfig.ID, rulesetConfig.Version)
	}

	ruleOptions, err := ruleset.IndexRuleOptions(rulesetConfig)
	if err != nil {
		return nil, err
	}

	registered := []rule.Rule{
		&rules.RuleLatestTag{},
		&rules.RuleRootUser{},
	}
	if errs := ruleset.ValidateRuleOptions(ruleOptions, []string{rules.IDLatestTag, rules.IDRootUser}, fldPath.Child("ruleOptions")); len(errs) > 0 {
		return nil, errs.ToAggregate()
	}

	registered, err = ruleset.ApplySkipOptions(registered, ruleOptions)
	if err != nil {
		return nil, err
	}

	return &Ruleset{
		version: version,
		rules:   registered,
	}, nil
}

// ID returns the id of the Ruleset.
func (r *Ruleset) ID() string {
	return RulesetID
}

// Name returns the name of the Ruleset.
func (r *Ruleset) Name() string {
	return RulesetName
}

// Version returns the version of the Ruleset.
func (r *Ruleset) Version() string {
	return r.version
}

// Rules returns the registered rules.
func (r *Ruleset) Rules() []rule.Rule {
	return slices.Clone(r.rules)
}
