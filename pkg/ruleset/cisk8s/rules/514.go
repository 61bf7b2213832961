// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package rules

import (
	"fmt"

	"github.com/gardener/kube-scanner/pkg/metadata"
	"github.com/gardener/kube-scanner/pkg/rule"
	"github.com/gardener/kube-scanner/pkg/workload"
)

var (
	_ rule.ContainerRule = &Rule514{}
	_ rule.Severity      = &Rule514{}
)

// ID514 is the id of the secrets access control.
const ID514 = "5.1.4"

// Rule514 reports every secret that is exposed to a container,
// either through a pod volume or through environment variables.
type Rule514 struct {
	Catalog *metadata.Catalog
}

func (r *Rule514) ID() string {
	return ID514
}

func (r *Rule514) Name() string {
	return control(r.Catalog, ID514).Title
}

func (r *Rule514) Severity() rule.SeverityLevel {
	return control(r.Catalog, ID514).Severity
}

func (r *Rule514) CheckContainer(pod workload.Pod, container workload.Container) []rule.Violation {
	var (
		c          = control(r.Catalog, ID514)
		ref        = rule.ContainerRef(pod, container)
		violations = make([]rule.Violation, 0, len(pod.SecretVolumes)+len(container.SecretRefs))
	)

	for _, secret := range pod.SecretVolumes {
		v := c.Violation(ref)
		v.Description = fmt.Sprintf("Pod mounts secret %q as a volume which may provide unnecessary access to sensitive data", secret)
		violations = append(violations, v)
	}
	for _, secret := range container.SecretRefs {
		v := c.Violation(ref)
		v.Description = fmt.Sprintf("Container reads secret %q into environment variables which may provide unnecessary access to sensitive data", secret)
		violations = append(violations, v)
	}
	return violations
}
