// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package cisk8s

import (
	"fmt"
	"log/slog"
	"slices"

	"k8s.io/apimachinery/pkg/util/validation/field"

	"github.com/gardener/kube-scanner/pkg/config"
	"github.com/gardener/kube-scanner/pkg/metadata"
	"github.com/gardener/kube-scanner/pkg/rule"
	"github.com/gardener/kube-scanner/pkg/ruleset"
)

const (
	// RulesetID is a constant containing the id of the CIS Kubernetes Benchmark Ruleset.
	RulesetID = metadata.BenchmarkID
	// RulesetName is a constant containing the user-friendly name of the CIS Kubernetes Benchmark Ruleset.
	RulesetName = metadata.BenchmarkName
)

var (
	_ ruleset.BenchmarkRuleset = &Ruleset{}
	// SupportedVersions is a list of available versions for the CIS Kubernetes Benchmark Ruleset.
	// Versions are sorted from newest to oldest.
	SupportedVersions = metadata.SupportedVersions
)

// Ruleset implements the CIS Kubernetes Benchmark workload controls.
type Ruleset struct {
	version string
	rules   []rule.Rule
	ruleIDs map[string]struct{}
	args    Args
	logger  *slog.Logger
}

// Args are Ruleset specific arguments.
type Args struct {
	// Levels selects the evaluated control levels. All levels are evaluated when empty.
	Levels []rule.Level `json:"levels" yaml:"levels"`
}

// New creates a new Ruleset.
func New(options ...CreateOption) (*Ruleset, error) {
	r := &Ruleset{
		version: SupportedVersions[0],
		ruleIDs: map[string]struct{}{},
	}

	for _, o := range options {
		o(r)
	}

	return r, nil
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

// Rules returns the registered rules in catalog order.
func (r *Ruleset) Rules() []rule.Rule {
	return slices.Clone(r.rules)
}

// Benchmark returns the benchmark release the Ruleset implements.
func (r *Ruleset) Benchmark() metadata.Benchmark {
	return metadata.Benchmark{ID: metadata.BenchmarkID, Name: metadata.BenchmarkName, Version: r.version}
}

// FromGenericConfig creates a Ruleset from a generic ruleset configuration.
// The configured version may be an exact version or a semver constraint.
func FromGenericConfig(rulesetConfig config.RulesetConfig, fldPath *field.Path) (*Ruleset, error) {
	args, err := ruleset.ParseArgs[Args](rulesetConfig.Args)
	if err != nil {
		return nil, err
	}
	if errs := args.Validate(fldPath.Child("args")); len(errs) > 0 {
		return nil, errs.ToAggregate()
	}

	version := rulesetConfig.Version
	if !slices.Contains(SupportedVersions, version) {
		if version, err = metadata.ResolveVersion(rulesetConfig.Version); err != nil {
			return nil, fmt.Errorf("unknown ruleset %s version: %s - use 'kube-scanner show controls' to see the supported benchmark: %w", rulesetConfig.ID, rulesetConfig.Version, err)
		}
	}

	r, err := New(
		WithVersion(version),
		WithArgs(args),
	)
	if err != nil {
		return nil, err
	}

	ruleOptions, err := ruleset.IndexRuleOptions(rulesetConfig)
	if err != nil {
		return nil, err
	}

	switch version {
	case "v1.9.0":
		if err := r.registerV190Rules(ruleOptions, fldPath.Child("ruleOptions")); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown ruleset %s version: %s", rulesetConfig.ID, version)
	}

	return r, nil
}

// AddRules adds Rules to the Ruleset.
func (r *Ruleset) AddRules(rules ...rule.Rule) error {
	for _, rr := range rules {
		if _, ok := r.ruleIDs[rr.ID()]; ok {
			return fmt.Errorf("rule with id %s already exists", rr.ID())
		}
		r.ruleIDs[rr.ID()] = struct{}{}
		r.rules = append(r.rules, rr)
	}
	return nil
}

// Logger returns the Ruleset's logger.
// If not set it set it to slog.Default().With("ruleset", r.ID(), "version", r.Version()) then return it.
func (r *Ruleset) Logger() *slog.Logger {
	if r.logger == nil {
		r.logger = slog.Default().With("ruleset", r.ID(), "version", r.Version())
	}
	return r.logger
}

// Validate validates the Ruleset arguments.
func (a Args) Validate(fldPath *field.Path) field.ErrorList {
	var allErrs field.ErrorList
	for i, l := range a.Levels {
		if !slices.Contains(rule.Levels(), l) {
			allErrs = append(allErrs, field.NotSupported(fldPath.Child("levels").Index(i), l, rule.Levels()))
		}
	}
	return allErrs
}
