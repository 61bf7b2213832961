// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package rule

import (
	"github.com/gardener/kube-scanner/pkg/workload"
)

// WorkloadRef identifies the object a Violation was found for.
type WorkloadRef struct {
	Namespace     string `json:"namespace"`
	Pod           string `json:"pod,omitempty"`
	Container     string `json:"container,omitempty"`
	InitContainer bool   `json:"isInitContainer,omitempty"`
}

// NamespaceRef returns a WorkloadRef for a namespace.
func NamespaceRef(namespace string) WorkloadRef {
	return WorkloadRef{Namespace: namespace}
}

// PodRef returns a WorkloadRef for a pod.
func PodRef(pod workload.Pod) WorkloadRef {
	return WorkloadRef{Namespace: pod.Namespace, Pod: pod.Name}
}

// ContainerRef returns a WorkloadRef for a container of a pod.
func ContainerRef(pod workload.Pod, container workload.Container) WorkloadRef {
	return WorkloadRef{
		Namespace:     pod.Namespace,
		Pod:           pod.Name,
		Container:     container.Name,
		InitContainer: container.Init,
	}
}

// Violation is a single finding produced by a Rule.
type Violation struct {
	Ref          WorkloadRef
	RuleID       string
	ControlID    string
	ControlTitle string
	Category     Category
	Severity     SeverityLevel
	Level        Level
	Description  string
	Remediation  string

	Image          string
	Reason         string
	ServiceAccount string
	UserID         *int64
	RunAsNonRoot   *bool
}
