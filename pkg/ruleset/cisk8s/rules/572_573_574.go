// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package rules

import (
	"github.com/gardener/kube-scanner/pkg/metadata"
	"github.com/gardener/kube-scanner/pkg/rule"
	"github.com/gardener/kube-scanner/pkg/workload"
)

var (
	_ rule.ContainerRule = &Rule572{}
	_ rule.Severity      = &Rule572{}
	_ rule.ContainerRule = &Rule573{}
	_ rule.Severity      = &Rule573{}
	_ rule.ContainerRule = &Rule574{}
	_ rule.Severity      = &Rule574{}
)

const (
	// ID572 is the id of the seccomp profile control.
	ID572 = "5.7.2"
	// ID573 is the id of the security context control.
	ID573 = "5.7.3"
	// ID574 is the id of the default namespace control.
	ID574 = "5.7.4"

	defaultNamespace = "default"
)

// Rule572 reports containers without a seccomp profile on pod or container level.
type Rule572 struct {
	Catalog *metadata.Catalog
}

func (r *Rule572) ID() string {
	return ID572
}

func (r *Rule572) Name() string {
	return control(r.Catalog, ID572).Title
}

func (r *Rule572) Severity() rule.SeverityLevel {
	return control(r.Catalog, ID572).Severity
}

func (r *Rule572) CheckContainer(pod workload.Pod, container workload.Container) []rule.Violation {
	switch {
	case container.SecurityContext != nil && container.SecurityContext.SeccompProfile != nil:
		return nil
	case pod.SecurityContext != nil && pod.SecurityContext.SeccompProfile != nil:
		return nil
	case len(container.SeccompAnnotation) > 0 || len(pod.SeccompAnnotation) > 0:
		return nil
	}
	return []rule.Violation{control(r.Catalog, ID572).Violation(rule.ContainerRef(pod, container))}
}

// Rule573 reports containers without a security context on pod or container level.
type Rule573 struct {
	Catalog *metadata.Catalog
}

func (r *Rule573) ID() string {
	return ID573
}

func (r *Rule573) Name() string {
	return control(r.Catalog, ID573).Title
}

func (r *Rule573) Severity() rule.SeverityLevel {
	return control(r.Catalog, ID573).Severity
}

func (r *Rule573) CheckContainer(pod workload.Pod, container workload.Container) []rule.Violation {
	if container.SecurityContext != nil || pod.SecurityContext != nil {
		return nil
	}
	return []rule.Violation{control(r.Catalog, ID573).Violation(rule.ContainerRef(pod, container))}
}

// Rule574 reports containers running in the default namespace.
type Rule574 struct {
	Catalog *metadata.Catalog
}

func (r *Rule574) ID() string {
	return ID574
}

func (r *Rule574) Name() string {
	return control(r.Catalog, ID574).Title
}

func (r *Rule574) Severity() rule.SeverityLevel {
	return control(r.Catalog, ID574).Severity
}

func (r *Rule574) CheckContainer(pod workload.Pod, container workload.Container) []rule.Violation {
	if pod.Namespace != defaultNamespace {
		return nil
	}
	return []rule.Violation{control(r.Catalog, ID574).Violation(rule.ContainerRef(pod, container))}
}
