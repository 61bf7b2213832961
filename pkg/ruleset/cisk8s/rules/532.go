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
	_ rule.NamespaceRule = &Rule532{}
	_ rule.Severity      = &Rule532{}
)

// ID532 is the id of the network policy existence control.
const ID532 = "5.3.2"

// Rule532 reports namespaces without any network policy.
type Rule532 struct {
	Catalog *metadata.Catalog
}

func (r *Rule532) ID() string {
	return ID532
}

func (r *Rule532) Name() string {
	return control(r.Catalog, ID532).Title
}

func (r *Rule532) Severity() rule.SeverityLevel {
	return control(r.Catalog, ID532).Severity
}

func (r *Rule532) CheckNamespace(namespace workload.Namespace) []rule.Violation {
	if namespace.NetworkPolicies > 0 {
		return nil
	}

	v := control(r.Catalog, ID532).Violation(rule.NamespaceRef(namespace.Name))
	v.Description = fmt.Sprintf("Namespace '%s' has no network policies defined, allowing unrestricted network access", namespace.Name)
	return []rule.Violation{v}
}
