// SPDX-FileCopyrightText: 2023 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package ruleset

import (
	"github.com/gardener/kube-scanner/pkg/metadata"
	"github.com/gardener/kube-scanner/pkg/rule"
)

// Ruleset is a set of Rules.
type Ruleset interface {
	ID() string
	Name() string
	Version() string
	// Rules returns the registered rules in evaluation order.
	Rules() []rule.Rule
}

// BenchmarkRuleset is a Ruleset which implements a versioned benchmark.
type BenchmarkRuleset interface {
	Ruleset
	Benchmark() metadata.Benchmark
}
