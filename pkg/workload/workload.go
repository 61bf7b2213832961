// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package workload contains read-only views of the cluster objects
// that are evaluated during a scan. All optional fields of the
// underlying API objects are kept as pointers so that rules can tell
// an unset field apart from an explicitly set one.
package workload

import "strings"

// SecurityContext is the container level security context.
type SecurityContext struct {
	RunAsUser                *int64
	RunAsNonRoot             *bool
	Privileged               *bool
	AllowPrivilegeEscalation *bool
	// CapabilitiesAdd and CapabilitiesDrop hold normalized capability names.
	CapabilitiesAdd  []string
	CapabilitiesDrop []string
	ProcMount        string
	SeccompProfile   *string
}

// PodSecurityContext is the pod level security context.
type PodSecurityContext struct {
	RunAsUser      *int64
	RunAsNonRoot   *bool
	SeccompProfile *string
}

// Container is a single container or init container of a [Pod].
type Container struct {
	Name  string
	Image string
	Init  bool
	// SecurityContext is nil when the container does not define one.
	SecurityContext *SecurityContext
	// SecretRefs are the names of secrets exposed through env or envFrom.
	SecretRefs []string
	// SeccompAnnotation is the value of the legacy per container seccomp annotation.
	SeccompAnnotation string
}

// Pod is a view of a pod and all of its containers.
type Pod struct {
	Namespace                    string
	Name                         string
	HostPID                      bool
	HostIPC                      bool
	HostNetwork                  bool
	ServiceAccountName           string
	AutomountServiceAccountToken *bool
	// SecurityContext is nil when the pod does not define one.
	SecurityContext *PodSecurityContext
	// SecretVolumes are the names of secrets mounted as volumes, including projected ones.
	SecretVolumes     []string
	SeccompAnnotation string
	// Containers holds the regular containers followed by the init containers.
	Containers []Container
}

// ServiceAccount is a view of a service account.
type ServiceAccount struct {
	Namespace                    string
	Name                         string
	AutomountServiceAccountToken *bool
}

// Namespace is a view of a namespace and the amount of network policies in it.
type Namespace struct {
	Name               string
	NetworkPolicies    int
	PodSecurityEnforce string
}

// UsesDefaultServiceAccount reports whether the pod runs with the default service account.
func (p Pod) UsesDefaultServiceAccount() bool {
	return p.ServiceAccountName == "" || p.ServiceAccountName == DefaultServiceAccountName
}

// NormalizeCapability returns the capability name in upper case without the CAP_ prefix.
func NormalizeCapability(capability string) string {
	return strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(capability)), "CAP_")
}
