// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package rules

import (
	"fmt"

	"k8s.io/utils/ptr"

	"github.com/gardener/kube-scanner/pkg/metadata"
	"github.com/gardener/kube-scanner/pkg/rule"
	"github.com/gardener/kube-scanner/pkg/workload"
)

var (
	_ rule.ServiceAccountRule = &Rule516{}
	_ rule.PodRule            = &Rule516{}
	_ rule.Severity           = &Rule516{}
)

// ID516 is the id of the service account token control.
const ID516 = "5.1.6"

// Rule516 reports service accounts that mount their token automatically
// and pods that run with an automounted token of the default service account.
type Rule516 struct {
	Catalog *metadata.Catalog
}

func (r *Rule516) ID() string {
	return ID516
}

func (r *Rule516) Name() string {
	return control(r.Catalog, ID516).Title
}

func (r *Rule516) Severity() rule.SeverityLevel {
	return control(r.Catalog, ID516).Severity
}

func (r *Rule516) CheckServiceAccount(sa workload.ServiceAccount) []rule.Violation {
	if !ptr.Deref(sa.AutomountServiceAccountToken, true) {
		return nil
	}

	v := control(r.Catalog, ID516).Violation(rule.NamespaceRef(sa.Namespace))
	v.ServiceAccount = sa.Name
	v.Description = fmt.Sprintf("Service account '%s' has automountServiceAccountToken enabled", sa.Name)
	return []rule.Violation{v}
}

func (r *Rule516) CheckPod(pod workload.Pod) []rule.Violation {
	if !pod.UsesDefaultServiceAccount() || !ptr.Deref(pod.AutomountServiceAccountToken, true) {
		return nil
	}

	v := control(r.Catalog, ID516).Violation(rule.PodRef(pod))
	v.ServiceAccount = workload.DefaultServiceAccountName
	v.Description = "Pod uses the default service account without disabling automountServiceAccountToken"
	return []rule.Violation{v}
}
