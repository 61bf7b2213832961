// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package cisk8s

import (
	"fmt"
	"slices"

	"k8s.io/apimachinery/pkg/util/validation/field"

	"github.com/gardener/kube-scanner/pkg/metadata"
	"github.com/gardener/kube-scanner/pkg/rule"
	"github.com/gardener/kube-scanner/pkg/ruleset"
	"github.com/gardener/kube-scanner/pkg/ruleset/cisk8s/rules"
)

func (r *Ruleset) registerV190Rules(ruleOptions map[string]ruleset.IndexedRuleOptionsConfig, fldPath *field.Path) error {
	catalog, err := metadata.New("v1.9.0")
	if err != nil {
		return err
	}

	registered := []rule.Rule{
		&rules.Rule514{Catalog: catalog},
		&rules.Rule516{Catalog: catalog},
		&rules.Rule521{Catalog: catalog},
		&rules.Rule522{Catalog: catalog},
		&rules.Rule523{Catalog: catalog},
		&rules.Rule524{Catalog: catalog},
		&rules.Rule525{Catalog: catalog},
		&rules.Rule527{Catalog: catalog},
		&rules.Rule528{Catalog: catalog},
		&rules.Rule529{Catalog: catalog},
		&rules.Rule532{Catalog: catalog},
		&rules.Rule572{Catalog: catalog},
		&rules.Rule573{Catalog: catalog},
		&rules.Rule574{Catalog: catalog},
	}

	// check that the registered rules equal
	// the number of controls in that benchmark version
	if len(registered) != len(catalog.Controls()) {
		return fmt.Errorf("revision expects %d registered rules, but got: %d", len(catalog.Controls()), len(registered))
	}

	ids := make([]string, 0, len(registered))
	for _, rr := range registered {
		ids = append(ids, rr.ID())
	}
	if errs := ruleset.ValidateRuleOptions(ruleOptions, ids, fldPath); len(errs) > 0 {
		return errs.ToAggregate()
	}

	registered, err = ruleset.ApplySkipOptions(registered, ruleOptions)
	if err != nil {
		return err
	}

	if len(r.args.Levels) > 0 {
		for i, rr := range registered {
			c := catalog.MustLookup(rr.ID())
			if _, skipped := rr.(*rule.SkipRule); !skipped && !slices.Contains(r.args.Levels, c.Level) {
				r.Logger().Debug("skipping rule of unselected level", "rule", rr.ID(), "level", c.Level)
				registered[i] = rule.NewSkipRule(rr.ID(), rr.Name(), fmt.Sprintf("Level %s is not selected.", c.Level), c.Severity)
			}
		}
	}

	return r.AddRules(registered...)
}
