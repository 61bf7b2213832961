// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package rules

import (
	"k8s.io/utils/ptr"

	"github.com/gardener/kube-scanner/pkg/metadata"
	"github.com/gardener/kube-scanner/pkg/rule"
	"github.com/gardener/kube-scanner/pkg/workload"
)

var (
	_ rule.ContainerRule = &Rule525{}
	_ rule.Severity      = &Rule525{}
)

// ID525 is the id of the privilege escalation control.
const ID525 = "5.2.5"

// Rule525 reports containers that allow privilege escalation.
// An unset allowPrivilegeEscalation permits escalation.
type Rule525 struct {
	Catalog *metadata.Catalog
}

func (r *Rule525) ID() string {
	return ID525
}

func (r *Rule525) Name() string {
	return control(r.Catalog, ID525).Title
}

func (r *Rule525) Severity() rule.SeverityLevel {
	return control(r.Catalog, ID525).Severity
}

func (r *Rule525) CheckContainer(pod workload.Pod, container workload.Container) []rule.Violation {
	if container.SecurityContext != nil && !ptr.Deref(container.SecurityContext.AllowPrivilegeEscalation, true) {
		return nil
	}
	return []rule.Violation{control(r.Catalog, ID525).Violation(rule.ContainerRef(pod, container))}
}
