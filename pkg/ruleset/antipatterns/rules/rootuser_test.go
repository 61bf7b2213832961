// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package rules_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"k8s.io/utils/ptr"

	"github.com/gardener/kube-scanner/pkg/rule"
	"github.com/gardener/kube-scanner/pkg/ruleset/antipatterns/rules"
	"github.com/gardener/kube-scanner/pkg/workload"
)

var _ = Describe("#RuleRootUser", func() {
	r := &rules.RuleRootUser{}

	DescribeTable("Run cases",
		func(psc *workload.PodSecurityContext, csc *workload.SecurityContext, expectedReason string, expectedUserID *int64) {
			pod := workload.Pod{Namespace: "foo", Name: "bar", SecurityContext: psc}
			container := workload.Container{Name: "app", SecurityContext: csc}

			violations := r.CheckContainer(pod, container)

			if len(expectedReason) == 0 {
				Expect(violations).To(BeEmpty())
				return
			}
			Expect(violations).To(HaveLen(1))
			Expect(violations[0].Reason).To(Equal(expectedReason))
			Expect(violations[0].UserID).To(Equal(expectedUserID))
			Expect(violations[0].Category).To(Equal(rule.CategoryRootUser))
			Expect(violations[0].Severity).To(Equal(rule.SeverityHigh))
		},
		Entry("should fail when no security context is defined",
			nil, nil, rules.ReasonNoSecurityContext, nil),
		Entry("should fail when the container runs as uid 0",
			nil, &workload.SecurityContext{RunAsUser: ptr.To[int64](0)}, rules.ReasonContainerRunAsUser, ptr.To[int64](0)),
		Entry("should fail when the container runs as uid 0 even if the pod sets a non-root user",
			&workload.PodSecurityContext{RunAsUser: ptr.To[int64](1000)}, &workload.SecurityContext{RunAsUser: ptr.To[int64](0)}, rules.ReasonContainerRunAsUser, ptr.To[int64](0)),
		Entry("should pass when the container overrides a root pod user",
			&workload.PodSecurityContext{RunAsUser: ptr.To[int64](0)}, &workload.SecurityContext{RunAsUser: ptr.To[int64](1000)}, "", nil),
		Entry("should fail when the pod runs as uid 0",
			&workload.PodSecurityContext{RunAsUser: ptr.To[int64](0)}, nil, rules.ReasonPodRunAsUser, ptr.To[int64](0)),
		Entry("should pass when the pod sets a non-root user",
			&workload.PodSecurityContext{RunAsUser: ptr.To[int64](1000)}, nil, "", nil),
		Entry("should pass when the container requires non-root",
			nil, &workload.SecurityContext{RunAsNonRoot: ptr.To(true)}, "", nil),
		Entry("should pass when the pod requires non-root",
			&workload.PodSecurityContext{RunAsNonRoot: ptr.To(true)}, &workload.SecurityContext{Privileged: ptr.To(false)}, "", nil),
		Entry("should fail when the container allows root",
			&workload.PodSecurityContext{RunAsNonRoot: ptr.To(true)}, &workload.SecurityContext{RunAsNonRoot: ptr.To(false)}, rules.ReasonContainerRunAsNonRoot, nil),
		Entry("should fail when the pod allows root",
			&workload.PodSecurityContext{RunAsNonRoot: ptr.To(false)}, nil, rules.ReasonPodRunAsNonRoot, nil),
		Entry("should fail when security contexts do not set the user",
			&workload.PodSecurityContext{SeccompProfile: ptr.To("RuntimeDefault")}, &workload.SecurityContext{Privileged: ptr.To(false)}, rules.ReasonNoUserSettings, nil),
	)
})
