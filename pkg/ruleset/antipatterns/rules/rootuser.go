// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package rules

import (
	"github.com/gardener/kube-scanner/pkg/rule"
	"github.com/gardener/kube-scanner/pkg/workload"
)

var (
	_ rule.ContainerRule = &RuleRootUser{}
	_ rule.Severity      = &RuleRootUser{}
)

const (
	// IDRootUser is the id of the root user rule.
	IDRootUser = "root-user"

	// ReasonContainerRunAsUser is reported for containers with runAsUser 0.
	ReasonContainerRunAsUser = "Container runAsUser=0"
	// ReasonPodRunAsUser is reported for pods with runAsUser 0.
	ReasonPodRunAsUser = "Pod runAsUser=0"
	// ReasonContainerRunAsNonRoot is reported for containers with runAsNonRoot false.
	ReasonContainerRunAsNonRoot = "Container runAsNonRoot=false"
	// ReasonPodRunAsNonRoot is reported for pods with runAsNonRoot false.
	ReasonPodRunAsNonRoot = "Pod runAsNonRoot=false"
	// ReasonNoSecurityContext is reported when neither pod nor container define a security context.
	ReasonNoSecurityContext = "No security context defined (defaults to root)"
	// ReasonNoUserSettings is reported when security contexts exist but do not set the user.
	ReasonNoUserSettings = "Security context exists but no user settings (defaults to root)"
)

// RuleRootUser reports containers that run or may run as root.
// Container settings take precedence over pod settings.
type RuleRootUser struct{}

func (r *RuleRootUser) ID() string {
	return IDRootUser
}

func (r *RuleRootUser) Name() string {
	return "Containers should not run as root."
}

func (r *RuleRootUser) Severity() rule.SeverityLevel {
	return rule.SeverityHigh
}

func (r *RuleRootUser) CheckContainer(pod workload.Pod, container workload.Container) []rule.Violation {
	reason, userID, runAsNonRoot, ok := rootReason(pod.SecurityContext, container.SecurityContext)
	if !ok {
		return nil
	}

	return []rule.Violation{{
		Ref:          rule.ContainerRef(pod, container),
		RuleID:       r.ID(),
		Category:     rule.CategoryRootUser,
		Severity:     r.Severity(),
		Description:  "Container may run with the root user",
		Remediation:  "Set 'runAsNonRoot: true' and a non-zero 'runAsUser' in the pod or container security context.",
		Reason:       reason,
		UserID:       userID,
		RunAsNonRoot: runAsNonRoot,
	}}
}

func rootReason(psc *workload.PodSecurityContext, csc *workload.SecurityContext) (string, *int64, *bool, bool) {
	switch {
	case csc != nil && csc.RunAsUser != nil:
		if *csc.RunAsUser == 0 {
			return ReasonContainerRunAsUser, csc.RunAsUser, csc.RunAsNonRoot, true
		}
		return "", nil, nil, false
	case psc != nil && psc.RunAsUser != nil:
		if *psc.RunAsUser == 0 {
			return ReasonPodRunAsUser, psc.RunAsUser, psc.RunAsNonRoot, true
		}
		return "", nil, nil, false
	}

	switch {
	case csc != nil && csc.RunAsNonRoot != nil:
		if *csc.RunAsNonRoot {
			return "", nil, nil, false
		}
		return ReasonContainerRunAsNonRoot, nil, csc.RunAsNonRoot, true
	case psc != nil && psc.RunAsNonRoot != nil:
		if *psc.RunAsNonRoot {
			return "", nil, nil, false
		}
		return ReasonPodRunAsNonRoot, nil, psc.RunAsNonRoot, true
	case csc == nil && psc == nil:
		return ReasonNoSecurityContext, nil, nil, true
	default:
		return ReasonNoUserSettings, nil, nil, true
	}
}
