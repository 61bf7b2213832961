// SPDX-FileCopyrightText: 2023 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package rule_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gardener/kube-scanner/pkg/rule"
	"github.com/gardener/kube-scanner/pkg/workload"
)

var _ = Describe("rule", func() {
	DescribeTable("#SeverityLevel.Less",
		func(s1, s2 rule.SeverityLevel, expectedResult bool) {
			Expect(s1.Less(s2)).To(Equal(expectedResult))
		},
		Entry("Low should be less than Medium", rule.SeverityLow, rule.SeverityMedium, true),
		Entry("High should be less than Critical", rule.SeverityHigh, rule.SeverityCritical, true),
		Entry("Critical should not be less than Low", rule.SeverityCritical, rule.SeverityLow, false),
		Entry("Medium should not be less than Medium", rule.SeverityMedium, rule.SeverityMedium, false),
	)

	Describe("SeverityIcon", func() {
		It("should not return white circle for supported severities", func() {
			for _, severity := range rule.Severities() {
				Expect(rule.SeverityIcon(severity)).To(Not(Equal('⚪')))
			}
		})

		It("should return white circle for unsupported severities", func() {
			var severity rule.SeverityLevel = "unsupportedSeverity"

			Expect(rule.SeverityIcon(severity)).To(Equal('⚪'))
		})
	})

	Describe("#ContainerRef", func() {
		It("should carry the init container flag", func() {
			pod := workload.Pod{Namespace: "foo", Name: "bar"}
			ref := rule.ContainerRef(pod, workload.Container{Name: "init", Init: true})

			Expect(ref).To(Equal(rule.WorkloadRef{Namespace: "foo", Pod: "bar", Container: "init", InitContainer: true}))
			Expect(rule.PodRef(pod)).To(Equal(rule.WorkloadRef{Namespace: "foo", Pod: "bar"}))
			Expect(rule.NamespaceRef("foo")).To(Equal(rule.WorkloadRef{Namespace: "foo"}))
		})
	})

	Describe("#SkipRule", func() {
		It("should keep its metadata", func() {
			r := rule.NewSkipRule("5.7.4", "default namespace", "accepted", rule.SeverityLow)

			Expect(r.ID()).To(Equal("5.7.4"))
			Expect(r.Name()).To(Equal("default namespace"))
			Expect(r.Severity()).To(Equal(rule.SeverityLow))
			Expect(r.Justification()).To(Equal("accepted"))
		})
	})
})
