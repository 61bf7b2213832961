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
	_ rule.ContainerRule = &Rule521{}
	_ rule.Severity      = &Rule521{}
)

// ID521 is the id of the privileged containers control.
const ID521 = "5.2.1"

// Rule521 reports privileged containers.
type Rule521 struct {
	Catalog *metadata.Catalog
}

func (r *Rule521) ID() string {
	return ID521
}

func (r *Rule521) Name() string {
	return control(r.Catalog, ID521).Title
}

func (r *Rule521) Severity() rule.SeverityLevel {
	return control(r.Catalog, ID521).Severity
}

func (r *Rule521) CheckContainer(pod workload.Pod, container workload.Container) []rule.Violation {
	if container.SecurityContext == nil || !ptr.Deref(container.SecurityContext.Privileged, false) {
		return nil
	}
	return []rule.Violation{control(r.Catalog, ID521).Violation(rule.ContainerRef(pod, container))}
}
