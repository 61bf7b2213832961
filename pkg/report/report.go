// SPDX-FileCopyrightText: 2023 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/google/uuid"
	"k8s.io/component-base/version"

	"github.com/gardener/kube-scanner/pkg/metadata"
	"github.com/gardener/kube-scanner/pkg/rule"
)

// ScanReport contains the findings of a single cluster scan
// grouped by category.
type ScanReport struct {
	ScanID         string              `json:"scanId"`
	Time           time.Time           `json:"time"`
	ScannerVersion string              `json:"scannerVersion"`
	Benchmark      *metadata.Benchmark `json:"benchmark,omitempty"`
	MinSeverity    rule.SeverityLevel  `json:"minSeverity,omitempty"`
	Cancelled      bool                `json:"cancelled"`
	Findings
	Summary      Summary       `json:"summary"`
	Namespaces   []Namespace   `json:"namespaces,omitempty"`
	SkippedRules []SkippedRule `json:"skippedRules,omitempty"`
	Diagnostics  []Diagnostic  `json:"diagnostics"`
}

// Findings contains the violations of a scan per category.
type Findings struct {
	LatestTagContainers      []LatestTagContainer      `json:"latestTagContainers"`
	RootContainers           []RootContainer           `json:"rootContainers"`
	CISViolations            []CISViolation            `json:"cisViolations"`
	NetworkPolicyViolations  []NetworkPolicyViolation  `json:"networkPolicyViolations"`
	ServiceAccountViolations []ServiceAccountViolation `json:"serviceAccountViolations"`
}

// Summary contains the number of findings per category.
type Summary struct {
	NamespacesScanned        int `json:"namespacesScanned"`
	LatestTagIssues          int `json:"latestTagIssues"`
	RootUserIssues           int `json:"rootUserIssues"`
	CISViolations            int `json:"cisViolations"`
	NetworkPolicyViolations  int `json:"networkPolicyViolations"`
	ServiceAccountViolations int `json:"serviceAccountViolations"`
	TotalIssues              int `json:"totalIssues"`
}

// ContainerRef identifies the container a finding was reported for.
type ContainerRef struct {
	Namespace     string `json:"namespace"`
	Pod           string `json:"pod"`
	Container     string `json:"container,omitempty"`
	InitContainer bool   `json:"isInitContainer"`
}

// Control contains the benchmark control a finding violates.
type Control struct {
	ControlID    string             `json:"controlId"`
	ControlTitle string             `json:"controlTitle"`
	Severity     rule.SeverityLevel `json:"severity"`
	Level        rule.Level         `json:"level,omitempty"`
	Description  string             `json:"description"`
	Remediation  string             `json:"remediation"`
}

// LatestTagContainer is a container running a mutable image tag.
type LatestTagContainer struct {
	ContainerRef
	Image    string             `json:"image"`
	Severity rule.SeverityLevel `json:"severity"`
}

// RootContainer is a container that may run as the root user.
type RootContainer struct {
	ContainerRef
	Reason       string             `json:"reason"`
	UserID       *int64             `json:"userId,omitempty"`
	RunAsNonRoot *bool              `json:"runAsNonRoot,omitempty"`
	Severity     rule.SeverityLevel `json:"severity"`
}

// CISViolation is a workload level benchmark violation.
type CISViolation struct {
	ContainerRef
	Control
}

// NetworkPolicyViolation is a namespace level benchmark violation.
type NetworkPolicyViolation struct {
	Namespace string `json:"namespace"`
	Control
}

// ServiceAccountViolation is a service account token benchmark violation.
// Pod is set when the violation was found for a pod running as the default service account.
type ServiceAccountViolation struct {
	Namespace      string `json:"namespace"`
	ServiceAccount string `json:"serviceAccount"`
	Pod            string `json:"pod,omitempty"`
	Control
}

// Namespace is a namespace that was fully scanned.
type Namespace struct {
	Name               string `json:"name"`
	PodSecurityEnforce string `json:"podSecurityEnforce,omitempty"`
}

// SkippedRule is a registered rule that was disabled by configuration.
type SkippedRule struct {
	RulesetID     string             `json:"rulesetId"`
	RuleID        string             `json:"ruleId"`
	Name          string             `json:"name"`
	Severity      rule.SeverityLevel `json:"severity,omitempty"`
	Justification string             `json:"justification"`
}

// FailureReason classifies a failed listing.
type FailureReason string

const (
	// ReasonForbidden is used when the listing was denied by RBAC.
	ReasonForbidden FailureReason = "Forbidden"
	// ReasonUnauthorized is used when the credentials were rejected.
	ReasonUnauthorized FailureReason = "Unauthorized"
	// ReasonNotFound is used when the namespace or resource does not exist.
	ReasonNotFound FailureReason = "NotFound"
	// ReasonTimeout is used when the listing did not finish in time.
	ReasonTimeout FailureReason = "Timeout"
	// ReasonUnavailable is used when the API server could not be reached.
	ReasonUnavailable FailureReason = "Unavailable"
	// ReasonError is used for all other failures.
	ReasonError FailureReason = "Error"
	// ReasonNoNamespaces is used when no namespace could be scanned at all.
	ReasonNoNamespaces FailureReason = "NoNamespaces"
)

// Diagnostic describes a listing that failed and reduced the coverage of a scan.
type Diagnostic struct {
	Namespace string        `json:"namespace,omitempty"`
	Kind      string        `json:"kind"`
	Reason    FailureReason `json:"reason"`
	Message   string        `json:"message"`
}

// ReportOptions are options that can be applied to a ScanReport.
type ReportOptions struct {
	MinSeverity       rule.SeverityLevel
	NamespacesScanned int
	Namespaces        []Namespace
	Diagnostics       []Diagnostic
	SkippedRules      []SkippedRule
	Benchmark         *metadata.Benchmark
	Cancelled         bool
}

// ReportOption defines a single option that can be applied to a ScanReport.
type ReportOption interface {
	ApplyToReport(*ReportOptions)
}

// MinSeverity is the minimal reporting severity.
type MinSeverity rule.SeverityLevel

// ApplyToReport implements ReportOption.
func (ms MinSeverity) ApplyToReport(opts *ReportOptions) {
	if slices.Contains(rule.Severities(), rule.SeverityLevel(ms)) {
		opts.MinSeverity = rule.SeverityLevel(ms)
	}
}

// NamespacesScanned is the number of namespaces that were fully listed.
type NamespacesScanned int

// ApplyToReport implements ReportOption.
func (n NamespacesScanned) ApplyToReport(opts *ReportOptions) {
	opts.NamespacesScanned = int(n)
}

// Namespaces are the fully listed namespaces.
type Namespaces []Namespace

// ApplyToReport implements ReportOption.
func (n Namespaces) ApplyToReport(opts *ReportOptions) {
	opts.Namespaces = slices.Clone(n)
}

// Diagnostics are the failed listings of a scan.
type Diagnostics []Diagnostic

// ApplyToReport implements ReportOption.
func (d Diagnostics) ApplyToReport(opts *ReportOptions) {
	opts.Diagnostics = append(opts.Diagnostics, d...)
}

// SkippedRules are the rules disabled by configuration.
type SkippedRules []SkippedRule

// ApplyToReport implements ReportOption.
func (s SkippedRules) ApplyToReport(opts *ReportOptions) {
	opts.SkippedRules = append(opts.SkippedRules, s...)
}

// Benchmark is the benchmark the CIS findings refer to.
type Benchmark metadata.Benchmark

// ApplyToReport implements ReportOption.
func (b Benchmark) ApplyToReport(opts *ReportOptions) {
	benchmark := metadata.Benchmark(b)
	opts.Benchmark = &benchmark
}

// Cancelled marks a report of a scan that was interrupted.
type Cancelled bool

// ApplyToReport implements ReportOption.
func (c Cancelled) ApplyToReport(opts *ReportOptions) {
	opts.Cancelled = bool(c)
}

// New groups violations by category into a ScanReport.
// The order of the violations is preserved within each category.
func New(violations []rule.Violation, options ...ReportOption) *ScanReport {
	opts := &ReportOptions{}
	for _, o := range options {
		o.ApplyToReport(opts)
	}

	report := &ScanReport{
		ScanID:         uuid.New().String(),
		Time:           time.Now().UTC(),
		ScannerVersion: version.Get().GitVersion,
		Benchmark:      opts.Benchmark,
		MinSeverity:    opts.MinSeverity,
		Cancelled:      opts.Cancelled,
		Findings:       newFindings(),
		Namespaces:     opts.Namespaces,
		SkippedRules:   opts.SkippedRules,
		Diagnostics:    opts.Diagnostics,
	}
	if report.Diagnostics == nil {
		report.Diagnostics = []Diagnostic{}
	}

	for _, v := range violations {
		if opts.MinSeverity != "" && v.Severity.Less(opts.MinSeverity) {
			continue
		}
		report.Findings.add(v)
	}

	report.Summary = report.Findings.summary(opts.NamespacesScanned)
	return report
}

func newFindings() Findings {
	return Findings{
		LatestTagContainers:      []LatestTagContainer{},
		RootContainers:           []RootContainer{},
		CISViolations:            []CISViolation{},
		NetworkPolicyViolations:  []NetworkPolicyViolation{},
		ServiceAccountViolations: []ServiceAccountViolation{},
	}
}

func (f *Findings) add(v rule.Violation) {
	ref := ContainerRef{
		Namespace:     v.Ref.Namespace,
		Pod:           v.Ref.Pod,
		Container:     v.Ref.Container,
		InitContainer: v.Ref.InitContainer,
	}
	control := Control{
		ControlID:    v.ControlID,
		ControlTitle: v.ControlTitle,
		Severity:     v.Severity,
		Level:        v.Level,
		Description:  v.Description,
		Remediation:  v.Remediation,
	}

	switch v.Category {
	case rule.CategoryLatestTag:
		f.LatestTagContainers = append(f.LatestTagContainers, LatestTagContainer{
			ContainerRef: ref,
			Image:        v.Image,
			Severity:     v.Severity,
		})
	case rule.CategoryRootUser:
		f.RootContainers = append(f.RootContainers, RootContainer{
			ContainerRef: ref,
			Reason:       v.Reason,
			UserID:       v.UserID,
			RunAsNonRoot: v.RunAsNonRoot,
			Severity:     v.Severity,
		})
	case rule.CategoryNetworkPolicy:
		f.NetworkPolicyViolations = append(f.NetworkPolicyViolations, NetworkPolicyViolation{
			Namespace: v.Ref.Namespace,
			Control:   control,
		})
	case rule.CategoryServiceAccount:
		f.ServiceAccountViolations = append(f.ServiceAccountViolations, ServiceAccountViolation{
			Namespace:      v.Ref.Namespace,
			ServiceAccount: v.ServiceAccount,
			Pod:            v.Ref.Pod,
			Control:        control,
		})
	default:
		f.CISViolations = append(f.CISViolations, CISViolation{
			ContainerRef: ref,
			Control:      control,
		})
	}
}

func (f *Findings) summary(namespacesScanned int) Summary {
	s := Summary{
		NamespacesScanned:        namespacesScanned,
		LatestTagIssues:          len(f.LatestTagContainers),
		RootUserIssues:           len(f.RootContainers),
		CISViolations:            len(f.CISViolations),
		NetworkPolicyViolations:  len(f.NetworkPolicyViolations),
		ServiceAccountViolations: len(f.ServiceAccountViolations),
	}
	s.TotalIssues = s.LatestTagIssues + s.RootUserIssues + s.CISViolations + s.NetworkPolicyViolations + s.ServiceAccountViolations
	return s
}

// Severities returns the number of findings per severity.
func (f *Findings) Severities() map[rule.SeverityLevel]int {
	res := map[rule.SeverityLevel]int{}
	for _, c := range f.LatestTagContainers {
		res[c.Severity]++
	}
	for _, c := range f.RootContainers {
		res[c.Severity]++
	}
	for _, c := range f.CISViolations {
		res[c.Severity]++
	}
	for _, c := range f.NetworkPolicyViolations {
		res[c.Severity]++
	}
	for _, c := range f.ServiceAccountViolations {
		res[c.Severity]++
	}
	return res
}

// WriteToFile writes a ScanReport to a file.
func (r *ScanReport) WriteToFile(filePath string) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0600)
}

// ReadFromFile reads a ScanReport from a file.
func ReadFromFile(filePath string) (*ScanReport, error) {
	data, err := os.ReadFile(filepath.Clean(filePath))
	if err != nil {
		return nil, fmt.Errorf("failed to read report %s: %w", filePath, err)
	}

	report := &ScanReport{}
	if err := json.Unmarshal(data, report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report %s: %w", filePath, err)
	}
	return report, nil
}
