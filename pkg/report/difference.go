// SPDX-FileCopyrightText: 2024 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gardener/kube-scanner/pkg/rule"
)

// Difference contains the findings that were added and resolved between 2 reports.
type Difference struct {
	Time        time.Time          `json:"time"`
	MinSeverity rule.SeverityLevel `json:"minSeverity,omitempty"`
	OldScanID   string             `json:"oldScanId"`
	OldTime     time.Time          `json:"oldTime"`
	NewScanID   string             `json:"newScanId"`
	NewTime     time.Time          `json:"newTime"`
	Added       Findings           `json:"added"`
	Resolved    Findings           `json:"resolved"`
	// AddedSummary and ResolvedSummary do not carry namespace counts.
	AddedSummary    Summary `json:"addedSummary"`
	ResolvedSummary Summary `json:"resolvedSummary"`
}

// CreateDifference creates the difference between 2 reports.
// Findings are compared as multisets, the order of the findings is not relevant.
func CreateDifference(oldReport, newReport ScanReport) (*Difference, error) {
	var minSeverity rule.SeverityLevel
	switch {
	case oldReport.MinSeverity == newReport.MinSeverity:
		minSeverity = oldReport.MinSeverity
	case len(oldReport.MinSeverity) == 0:
		minSeverity = newReport.MinSeverity
	case len(newReport.MinSeverity) == 0:
		minSeverity = oldReport.MinSeverity
	default:
		return nil, errors.New("reports must have equal minSeverity")
	}

	oldFindings := filterFindings(oldReport.Findings, minSeverity)
	newFindings := filterFindings(newReport.Findings, minSeverity)

	diff := &Difference{
		Time:        time.Now().UTC(),
		MinSeverity: minSeverity,
		OldScanID:   oldReport.ScanID,
		OldTime:     oldReport.Time,
		NewScanID:   newReport.ScanID,
		NewTime:     newReport.Time,
		Added:       subtractFindings(newFindings, oldFindings),
		Resolved:    subtractFindings(oldFindings, newFindings),
	}
	diff.AddedSummary = diff.Added.summary(0)
	diff.ResolvedSummary = diff.Resolved.summary(0)
	return diff, nil
}

func subtractFindings(a, b Findings) Findings {
	return Findings{
		LatestTagContainers:      subtract(a.LatestTagContainers, b.LatestTagContainers),
		RootContainers:           subtract(a.RootContainers, b.RootContainers),
		CISViolations:            subtract(a.CISViolations, b.CISViolations),
		NetworkPolicyViolations:  subtract(a.NetworkPolicyViolations, b.NetworkPolicyViolations),
		ServiceAccountViolations: subtract(a.ServiceAccountViolations, b.ServiceAccountViolations),
	}
}

// subtract returns the elements of a that are not matched by an element of b.
// Every element of b matches at most one element of a.
func subtract[T any](a, b []T) []T {
	counts := make(map[string]int, len(b))
	for _, e := range b {
		counts[findingKey(e)]++
	}

	res := []T{}
	for _, e := range a {
		key := findingKey(e)
		if counts[key] > 0 {
			counts[key]--
			continue
		}
		res = append(res, e)
	}
	return res
}

func findingKey(finding any) string {
	data, err := json.Marshal(finding)
	if err != nil {
		// findings only contain plain values
		panic(err)
	}
	return string(data)
}

func filterFindings(f Findings, minSeverity rule.SeverityLevel) Findings {
	if minSeverity == "" {
		return f
	}
	keep := func(s rule.SeverityLevel) bool {
		return !s.Less(minSeverity)
	}
	return Findings{
		LatestTagContainers:      filter(f.LatestTagContainers, func(e LatestTagContainer) bool { return keep(e.Severity) }),
		RootContainers:           filter(f.RootContainers, func(e RootContainer) bool { return keep(e.Severity) }),
		CISViolations:            filter(f.CISViolations, func(e CISViolation) bool { return keep(e.Severity) }),
		NetworkPolicyViolations:  filter(f.NetworkPolicyViolations, func(e NetworkPolicyViolation) bool { return keep(e.Severity) }),
		ServiceAccountViolations: filter(f.ServiceAccountViolations, func(e ServiceAccountViolation) bool { return keep(e.Severity) }),
	}
}

func filter[T any](s []T, keep func(T) bool) []T {
	res := []T{}
	for _, e := range s {
		if keep(e) {
			res = append(res, e)
		}
	}
	return res
}
