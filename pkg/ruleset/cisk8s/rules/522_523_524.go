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
	_ rule.ContainerRule = &Rule522{}
	_ rule.Severity      = &Rule522{}
	_ rule.ContainerRule = &Rule523{}
	_ rule.Severity      = &Rule523{}
	_ rule.ContainerRule = &Rule524{}
	_ rule.Severity      = &Rule524{}
)

const (
	// ID522 is the id of the host PID namespace control.
	ID522 = "5.2.2"
	// ID523 is the id of the host IPC namespace control.
	ID523 = "5.2.3"
	// ID524 is the id of the host network namespace control.
	ID524 = "5.2.4"
)

// Rule522 reports containers of pods sharing the host PID namespace.
type Rule522 struct {
	Catalog *metadata.Catalog
}

func (r *Rule522) ID() string {
	return ID522
}

func (r *Rule522) Name() string {
	return control(r.Catalog, ID522).Title
}

func (r *Rule522) Severity() rule.SeverityLevel {
	return control(r.Catalog, ID522).Severity
}

func (r *Rule522) CheckContainer(pod workload.Pod, container workload.Container) []rule.Violation {
	return checkHostNamespace(pod.HostPID, control(r.Catalog, ID522), pod, container)
}

// Rule523 reports containers of pods sharing the host IPC namespace.
type Rule523 struct {
	Catalog *metadata.Catalog
}

func (r *Rule523) ID() string {
	return ID523
}

func (r *Rule523) Name() string {
	return control(r.Catalog, ID523).Title
}

func (r *Rule523) Severity() rule.SeverityLevel {
	return control(r.Catalog, ID523).Severity
}

func (r *Rule523) CheckContainer(pod workload.Pod, container workload.Container) []rule.Violation {
	return checkHostNamespace(pod.HostIPC, control(r.Catalog, ID523), pod, container)
}

// Rule524 reports containers of pods sharing the host network namespace.
type Rule524 struct {
	Catalog *metadata.Catalog
}

func (r *Rule524) ID() string {
	return ID524
}

func (r *Rule524) Name() string {
	return control(r.Catalog, ID524).Title
}

func (r *Rule524) Severity() rule.SeverityLevel {
	return control(r.Catalog, ID524).Severity
}

func (r *Rule524) CheckContainer(pod workload.Pod, container workload.Container) []rule.Violation {
	return checkHostNamespace(pod.HostNetwork, control(r.Catalog, ID524), pod, container)
}

func checkHostNamespace(shared bool, c metadata.Control, pod workload.Pod, container workload.Container) []rule.Violation {
	if !shared {
		return nil
	}
	return []rule.Violation{c.Violation(rule.ContainerRef(pod, container))}
}
