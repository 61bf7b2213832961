// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package rules

import (
	"fmt"
	"strings"

	"github.com/gardener/kube-scanner/pkg/metadata"
	"github.com/gardener/kube-scanner/pkg/rule"
	"github.com/gardener/kube-scanner/pkg/workload"
)

var (
	_ rule.ContainerRule = &Rule528{}
	_ rule.Severity      = &Rule528{}
	_ rule.ContainerRule = &Rule529{}
	_ rule.Severity      = &Rule529{}
)

const (
	// ID528 is the id of the added capabilities control.
	ID528 = "5.2.8"
	// ID529 is the id of the assigned capabilities control.
	ID529 = "5.2.9"
)

// Rule528 reports containers that add any capability.
type Rule528 struct {
	Catalog *metadata.Catalog
}

func (r *Rule528) ID() string {
	return ID528
}

func (r *Rule528) Name() string {
	return control(r.Catalog, ID528).Title
}

func (r *Rule528) Severity() rule.SeverityLevel {
	return control(r.Catalog, ID528).Severity
}

func (r *Rule528) CheckContainer(pod workload.Pod, container workload.Container) []rule.Violation {
	if container.SecurityContext == nil || len(container.SecurityContext.CapabilitiesAdd) == 0 {
		return nil
	}

	v := control(r.Catalog, ID528).Violation(rule.ContainerRef(pod, container))
	v.Description = fmt.Sprintf("Container has added capabilities: %s", strings.Join(container.SecurityContext.CapabilitiesAdd, ", "))
	return []rule.Violation{v}
}

// Rule529 reports every capability added to a container.
// The baseline is an empty set of added capabilities.
type Rule529 struct {
	Catalog *metadata.Catalog
}

func (r *Rule529) ID() string {
	return ID529
}

func (r *Rule529) Name() string {
	return control(r.Catalog, ID529).Title
}

func (r *Rule529) Severity() rule.SeverityLevel {
	return control(r.Catalog, ID529).Severity
}

func (r *Rule529) CheckContainer(pod workload.Pod, container workload.Container) []rule.Violation {
	if container.SecurityContext == nil {
		return nil
	}

	var (
		c          = control(r.Catalog, ID529)
		violations = make([]rule.Violation, 0, len(container.SecurityContext.CapabilitiesAdd))
	)
	for _, capability := range container.SecurityContext.CapabilitiesAdd {
		v := c.Violation(rule.ContainerRef(pod, container))
		v.Description = fmt.Sprintf("Container has capability %s assigned", capability)
		violations = append(violations, v)
	}
	return violations
}
