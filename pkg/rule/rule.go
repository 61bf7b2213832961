// SPDX-FileCopyrightText: 2023 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package rule

import (
	"slices"

	"github.com/gardener/kube-scanner/pkg/workload"
)

// Rule defines what is considered a rule in the context of a scan.
type Rule interface {
	ID() string
	Name() string
}

// Severity is implemented by rules that have a fixed severity.
type Severity interface {
	Severity() SeverityLevel
}

// ContainerRule is a Rule evaluated for every container and init container of a pod.
type ContainerRule interface {
	Rule
	CheckContainer(pod workload.Pod, container workload.Container) []Violation
}

// PodRule is a Rule evaluated once per pod.
type PodRule interface {
	Rule
	CheckPod(pod workload.Pod) []Violation
}

// NamespaceRule is a Rule evaluated once per namespace.
type NamespaceRule interface {
	Rule
	CheckNamespace(namespace workload.Namespace) []Violation
}

// ServiceAccountRule is a Rule evaluated for every service account.
type ServiceAccountRule interface {
	Rule
	CheckServiceAccount(serviceAccount workload.ServiceAccount) []Violation
}

// SeverityLevel is the severity of a Violation.
type SeverityLevel string

const (
	// SeverityCritical is the highest severity.
	SeverityCritical SeverityLevel = "Critical"
	// SeverityHigh marks violations that should be addressed with priority.
	SeverityHigh SeverityLevel = "High"
	// SeverityMedium marks violations that weaken the cluster posture.
	SeverityMedium SeverityLevel = "Medium"
	// SeverityLow marks hardening recommendations.
	SeverityLow SeverityLevel = "Low"
)

// Severities returns all supported severities.
func Severities() []SeverityLevel {
	return []SeverityLevel{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}
}

var orderedSeverities = []SeverityLevel{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}

// Less is used to define the priority of the severities.
// The ascending order is as follows
// Low, Medium, High, Critical
func (a SeverityLevel) Less(b SeverityLevel) bool {
	i := slices.Index(orderedSeverities, a)
	x := slices.Index(orderedSeverities, b)

	return i < x
}

// SeverityIcon returns the icon of a given SeverityLevel.
func SeverityIcon(severity SeverityLevel) rune {
	switch severity {
	case SeverityCritical:
		return '🔴'
	case SeverityHigh:
		return '🟠'
	case SeverityMedium:
		return '🟡'
	case SeverityLow:
		return '🔵'
	default:
		return '⚪'
	}
}

// Level is the applicability level of a benchmark control.
type Level string

const (
	// LevelOne controls are basic recommendations.
	LevelOne Level = "L1"
	// LevelTwo controls are advanced recommendations that may reduce functionality.
	LevelTwo Level = "L2"
)

// Levels returns all supported levels.
func Levels() []Level {
	return []Level{LevelOne, LevelTwo}
}

// Category groups violations in the scan report.
type Category string

const (
	// CategoryLatestTag contains containers running mutable image tags.
	CategoryLatestTag Category = "LatestTag"
	// CategoryRootUser contains containers that may run as root.
	CategoryRootUser Category = "RootUser"
	// CategoryCISCompliance contains workload level benchmark violations.
	CategoryCISCompliance Category = "CISCompliance"
	// CategoryNetworkPolicy contains namespaces without network policies.
	CategoryNetworkPolicy Category = "NetworkPolicy"
	// CategoryServiceAccount contains service account token violations.
	CategoryServiceAccount Category = "ServiceAccount"
)

// Categories returns all categories in reporting order.
func Categories() []Category {
	return []Category{CategoryLatestTag, CategoryRootUser, CategoryCISCompliance, CategoryNetworkPolicy, CategoryServiceAccount}
}
