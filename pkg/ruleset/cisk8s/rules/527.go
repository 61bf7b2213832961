// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package rules

import (
	"slices"

	"github.com/gardener/kube-scanner/pkg/metadata"
	"github.com/gardener/kube-scanner/pkg/rule"
	"github.com/gardener/kube-scanner/pkg/workload"
)

var (
	_ rule.ContainerRule = &Rule527{}
	_ rule.Severity      = &Rule527{}
)

const (
	// ID527 is the id of the NET_RAW capability control.
	ID527 = "5.2.7"

	capabilityAll    = "ALL"
	capabilityNetRaw = "NET_RAW"
)

// Rule527 reports containers that keep or add the NET_RAW capability.
// NET_RAW is part of the default runtime capabilities, so it has to be
// dropped explicitly or through ALL.
type Rule527 struct {
	Catalog *metadata.Catalog
}

func (r *Rule527) ID() string {
	return ID527
}

func (r *Rule527) Name() string {
	return control(r.Catalog, ID527).Title
}

func (r *Rule527) Severity() rule.SeverityLevel {
	return control(r.Catalog, ID527).Severity
}

func (r *Rule527) CheckContainer(pod workload.Pod, container workload.Container) []rule.Violation {
	var add, drop []string
	if sc := container.SecurityContext; sc != nil {
		add, drop = sc.CapabilitiesAdd, sc.CapabilitiesDrop
	}

	dropped := slices.Contains(drop, capabilityAll) || slices.Contains(drop, capabilityNetRaw)
	added := slices.Contains(add, capabilityNetRaw) || slices.Contains(add, capabilityAll)
	if dropped && !added {
		return nil
	}

	v := control(r.Catalog, ID527).Violation(rule.ContainerRef(pod, container))
	if !added {
		v.Description = "Container does not drop the NET_RAW capability, which allows raw socket access and network packet manipulation"
	}
	return []rule.Violation{v}
}
