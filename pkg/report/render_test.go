// SPDX-FileCopyrightText: 2024 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package report_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gardener/kube-scanner/pkg/metadata"
	"github.com/gardener/kube-scanner/pkg/report"
	"github.com/gardener/kube-scanner/pkg/rule"
)

var _ = Describe("render", func() {
	var (
		renderer   *report.HTMLRenderer
		ref        = rule.WorkloadRef{Namespace: "default", Pod: "nginx-pod", Container: "nginx"}
		violations = []rule.Violation{
			{Ref: ref, Category: rule.CategoryLatestTag, Severity: rule.SeverityMedium, Image: "nginx:latest"},
			metadata.Default().MustLookup("5.7.4").Violation(ref),
		}
	)

	BeforeEach(func() {
		var err error
		renderer, err = report.NewHTMLRenderer()
		Expect(err).ToNot(HaveOccurred())
	})

	It("should render a scan report", func() {
		r := report.New(violations,
			report.NamespacesScanned(1),
			report.Cancelled(true),
			report.Diagnostics{{Namespace: "kube-system", Kind: "Pod", Reason: report.ReasonForbidden, Message: "pods is forbidden"}},
		)

		buf := &bytes.Buffer{}
		Expect(renderer.Render(buf, r)).To(Succeed())
		Expect(buf.String()).To(ContainSubstring("nginx:latest"))
		Expect(buf.String()).To(ContainSubstring("5.7.4"))
		Expect(buf.String()).To(ContainSubstring("pods is forbidden"))
		Expect(buf.String()).To(ContainSubstring("The scan was cancelled"))
		Expect(buf.String()).To(ContainSubstring("1x Medium"))
	})

	It("should render a difference report", func() {
		diff, err := report.CreateDifference(*report.New(nil), *report.New(violations))
		Expect(err).ToNot(HaveOccurred())

		buf := &bytes.Buffer{}
		Expect(renderer.Render(buf, diff)).To(Succeed())
		Expect(buf.String()).To(ContainSubstring("Added findings (2)"))
		Expect(buf.String()).To(ContainSubstring("Resolved findings (0)"))
		Expect(buf.String()).To(ContainSubstring("no findings"))
	})

	It("should return error for unsupported types", func() {
		Expect(renderer.Render(&bytes.Buffer{}, "foo")).To(MatchError("unsupported report type: string"))
	})
})
