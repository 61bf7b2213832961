// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package builder

import (
	"fmt"
	"maps"
	"slices"

	"k8s.io/apimachinery/pkg/util/validation/field"

	"github.com/gardener/kube-scanner/pkg/config"
	"github.com/gardener/kube-scanner/pkg/ruleset"
	"github.com/gardener/kube-scanner/pkg/ruleset/antipatterns"
	"github.com/gardener/kube-scanner/pkg/ruleset/cisk8s"
)

// RulesetFromConfigFunc constructs a Ruleset from a generic ruleset configuration.
type RulesetFromConfigFunc func(rulesetConfig config.RulesetConfig, fldPath *field.Path) (ruleset.Ruleset, error)

// RulesetFromConfigFuncs returns the constructors of all known rulesets in evaluation order.
func RulesetFromConfigFuncs() map[string]RulesetFromConfigFunc {
	return map[string]RulesetFromConfigFunc{
		antipatterns.RulesetID: AntiPatternsRulesetFromConfig,
		cisk8s.RulesetID:       CISKubernetesRulesetFromConfig,
	}
}

// AntiPatternsRulesetFromConfig returns a Workload Anti-Patterns ruleset.
func AntiPatternsRulesetFromConfig(rulesetConfig config.RulesetConfig, fldPath *field.Path) (ruleset.Ruleset, error) {
	return antipatterns.FromGenericConfig(rulesetConfig, fldPath)
}

// CISKubernetesRulesetFromConfig returns a CIS Kubernetes Benchmark ruleset.
func CISKubernetesRulesetFromConfig(rulesetConfig config.RulesetConfig, fldPath *field.Path) (ruleset.Ruleset, error) {
	return cisk8s.FromGenericConfig(rulesetConfig, fldPath)
}

// RulesetsFromConfig creates the configured rulesets. All known rulesets
// are created in their latest version when none are configured.
// Rulesets are returned in a stable order: anti-patterns first, then benchmarks.
func RulesetsFromConfig(rulesetConfigs []config.RulesetConfig, fldPath *field.Path) ([]ruleset.Ruleset, error) {
	funcs := RulesetFromConfigFuncs()

	if len(rulesetConfigs) == 0 {
		rulesetConfigs = []config.RulesetConfig{
			{ID: antipatterns.RulesetID},
			{ID: cisk8s.RulesetID},
		}
	}

	rulesets := make([]ruleset.Ruleset, 0, len(rulesetConfigs))
	for i, rc := range rulesetConfigs {
		f, ok := funcs[rc.ID]
		if !ok {
			return nil, fmt.Errorf("unknown ruleset identifier: %s, supported rulesets are %v", rc.ID, slices.Sorted(maps.Keys(funcs)))
		}
		rs, err := f(rc, fldPath.Index(i))
		if err != nil {
			return nil, fmt.Errorf("failed to create ruleset %s: %w", rc.ID, err)
		}
		rulesets = append(rulesets, rs)
	}

	slices.SortStableFunc(rulesets, func(a, b ruleset.Ruleset) int {
		return rulesetOrder(a.ID()) - rulesetOrder(b.ID())
	})
	return rulesets, nil
}

func rulesetOrder(id string) int {
	if id == antipatterns.RulesetID {
		return 0
	}
	return 1
}
