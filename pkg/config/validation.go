// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"slices"

	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/apimachinery/pkg/util/validation"
	"k8s.io/apimachinery/pkg/util/validation/field"

	"github.com/gardener/kube-scanner/pkg/rule"
)

// Validate validates the configuration.
func (c *ScannerConfig) Validate() field.ErrorList {
	var (
		allErrs  field.ErrorList
		scanPath = field.NewPath("scan")
	)

	if c.Provider.QPS < 0 {
		allErrs = append(allErrs, field.Invalid(field.NewPath("provider", "qps"), c.Provider.QPS, "must not be negative"))
	}
	if c.Provider.Burst < 0 {
		allErrs = append(allErrs, field.Invalid(field.NewPath("provider", "burst"), c.Provider.Burst, "must not be negative"))
	}

	if c.Scan.Workers < 0 {
		allErrs = append(allErrs, field.Invalid(scanPath.Child("workers"), c.Scan.Workers, "must not be negative"))
	}
	if c.Scan.ListTimeout < 0 {
		allErrs = append(allErrs, field.Invalid(scanPath.Child("listTimeout"), c.Scan.ListTimeout.String(), "must not be negative"))
	}
	if c.Scan.PageLimit < 0 {
		allErrs = append(allErrs, field.Invalid(scanPath.Child("pageLimit"), c.Scan.PageLimit, "must not be negative"))
	}
	if c.Scan.MaxRetries < 0 {
		allErrs = append(allErrs, field.Invalid(scanPath.Child("maxRetries"), c.Scan.MaxRetries, "must not be negative"))
	}

	namespacesPath := scanPath.Child("namespaces")
	if len(c.Scan.Namespaces.LabelSelector) > 0 {
		if _, err := labels.Parse(c.Scan.Namespaces.LabelSelector); err != nil {
			allErrs = append(allErrs, field.Invalid(namespacesPath.Child("labelSelector"), c.Scan.Namespaces.LabelSelector, err.Error()))
		}
	}
	for i, ns := range c.Scan.Namespaces.Exclude {
		for _, msg := range validation.IsDNS1123Label(ns) {
			allErrs = append(allErrs, field.Invalid(namespacesPath.Child("exclude").Index(i), ns, msg))
		}
	}

	rulesetIDs := map[string]struct{}{}
	for i, rs := range c.Scan.Rulesets {
		idxPath := scanPath.Child("rulesets").Index(i)
		if len(rs.ID) == 0 {
			allErrs = append(allErrs, field.Required(idxPath.Child("id"), "must not be empty"))
			continue
		}
		if _, ok := rulesetIDs[rs.ID]; ok {
			allErrs = append(allErrs, field.Duplicate(idxPath.Child("id"), rs.ID))
		}
		rulesetIDs[rs.ID] = struct{}{}
	}

	if c.Output != nil {
		outputPath := field.NewPath("output")
		if len(c.Output.Format) > 0 && !slices.Contains([]string{FormatJSON, FormatHTML}, c.Output.Format) {
			allErrs = append(allErrs, field.NotSupported(outputPath.Child("format"), c.Output.Format, []string{FormatJSON, FormatHTML}))
		}
		if len(c.Output.MinSeverity) > 0 && !slices.Contains(rule.Severities(), rule.SeverityLevel(c.Output.MinSeverity)) {
			allErrs = append(allErrs, field.NotSupported(outputPath.Child("minSeverity"), c.Output.MinSeverity, rule.Severities()))
		}
	}

	return allErrs
}
