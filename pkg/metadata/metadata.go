// SPDX-FileCopyrightText: 2023 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package metadata

import (
	"github.com/gardener/kube-scanner/pkg/rule"
)

// Version is used to represent a specific version of a benchmark.
type Version struct {
	// Version is the name of the benchmark release.
	Version string `json:"version"`
	// Latest shows if the specific version is the latest one.
	Latest bool `json:"latest"`
}

// Benchmark is used to represent a benchmark and it's metadata.
type Benchmark struct {
	// ID is the unique identifier of the benchmark.
	ID string `json:"id"`
	// Name is the user-friendly name of the benchmark.
	Name string `json:"name"`
	// Version is the benchmark release the catalog is based on.
	Version string `json:"version"`
}

// BenchmarkDetailed is used to represent a benchmark with all supported versions.
type BenchmarkDetailed struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Versions []Version `json:"versions"`
}

// Control is a single entry of the benchmark catalog.
type Control struct {
	// ID is the dotted identifier of the control, e.g. 5.2.1.
	ID string `json:"id"`
	// Title is the title of the control as published by the benchmark.
	Title       string             `json:"title"`
	Level       rule.Level         `json:"level"`
	Severity    rule.SeverityLevel `json:"severity"`
	Category    rule.Category      `json:"category"`
	Description string             `json:"description"`
	Remediation string             `json:"remediation"`
}

// Violation returns a new [rule.Violation] for the control and the given object.
func (c Control) Violation(ref rule.WorkloadRef) rule.Violation {
	return rule.Violation{
		Ref:          ref,
		RuleID:       c.ID,
		ControlID:    c.ID,
		ControlTitle: c.Title,
		Category:     c.Category,
		Severity:     c.Severity,
		Level:        c.Level,
		Description:  c.Description,
		Remediation:  c.Remediation,
	}
}
