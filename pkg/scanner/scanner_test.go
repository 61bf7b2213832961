// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package scanner_test

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/onsi/gomega/gstruct"
	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/util/validation/field"
	"k8s.io/utils/ptr"
	"sigs.k8s.io/controller-runtime/pkg/client"
	fakeclient "sigs.k8s.io/controller-runtime/pkg/client/fake"
	"sigs.k8s.io/controller-runtime/pkg/client/interceptor"

	"github.com/gardener/kube-scanner/pkg/config"
	"github.com/gardener/kube-scanner/pkg/kubernetes/accessor"
	"github.com/gardener/kube-scanner/pkg/report"
	"github.com/gardener/kube-scanner/pkg/rule"
	"github.com/gardener/kube-scanner/pkg/ruleset"
	"github.com/gardener/kube-scanner/pkg/ruleset/antipatterns/rules"
	"github.com/gardener/kube-scanner/pkg/ruleset/builder"
	"github.com/gardener/kube-scanner/pkg/scanner"
)

type countingRuleset struct {
	ruleset.Ruleset
	calls atomic.Int32
}

func (r *countingRuleset) Rules() []rule.Rule {
	r.calls.Add(1)
	return r.Ruleset.Rules()
}

var _ = Describe("scanner", func() {
	var (
		ctx      context.Context
		rulesets []ruleset.Ruleset

		namespace = func(name string) *corev1.Namespace {
			return &corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: name}}
		}
		pod = func(namespace, name string, containers ...corev1.Container) *corev1.Pod {
			return &corev1.Pod{
				ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace},
				Spec:       corev1.PodSpec{Containers: containers},
			}
		}
		hardenedContainer = func(name, image string) corev1.Container {
			return corev1.Container{
				Name:  name,
				Image: image,
				SecurityContext: &corev1.SecurityContext{
					RunAsUser:                ptr.To[int64](1000),
					RunAsNonRoot:             ptr.To(true),
					AllowPrivilegeEscalation: ptr.To(false),
					Capabilities:             &corev1.Capabilities{Drop: []corev1.Capability{"ALL"}},
					SeccompProfile:           &corev1.SeccompProfile{Type: corev1.SeccompProfileTypeRuntimeDefault},
				},
			}
		}
		controlIDs = func(violations []report.CISViolation) []string {
			ids := make([]string, 0, len(violations))
			for _, v := range violations {
				ids = append(ids, v.ControlID)
			}
			return ids
		}
		newScanner = func(c client.Client, options ...scanner.CreateOption) *scanner.Scanner {
			s, err := scanner.New(accessor.New(c), rulesets, append([]scanner.CreateOption{scanner.WithLogger(testLogger)}, options...)...)
			Expect(err).ToNot(HaveOccurred())
			return s
		}
		forbiddenIn = func(ns string, isForbidden func(client.ObjectList) bool, resource string) interceptor.Funcs {
			return interceptor.Funcs{
				List: func(ctx context.Context, c client.WithWatch, list client.ObjectList, opts ...client.ListOption) error {
					listOptions := (&client.ListOptions{}).ApplyOptions(opts)
					if isForbidden(list) && listOptions.Namespace == ns {
						return apierrors.NewForbidden(schema.GroupResource{Resource: resource}, "", errors.New("access denied"))
					}
					return c.List(ctx, list, opts...)
				},
			}
		}
		podsForbiddenIn = func(ns string) interceptor.Funcs {
			return forbiddenIn(ns, func(list client.ObjectList) bool {
				_, ok := list.(*corev1.PodList)
				return ok
			}, "pods")
		}
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		rulesets, err = builder.RulesetsFromConfig(nil, field.NewPath("rulesets"))
		Expect(err).ToNot(HaveOccurred())
	})

	It("should report all findings of an insecure nginx pod", func() {
		fakeClient := fakeclient.NewClientBuilder().WithObjects(
			namespace("default"),
			pod("default", "nginx-pod", corev1.Container{Name: "nginx", Image: "nginx:latest"}),
		).Build()

		r, err := newScanner(fakeClient).RunScan(ctx)
		Expect(err).ToNot(HaveOccurred())

		Expect(r.Cancelled).To(BeFalse())
		Expect(r.Summary.NamespacesScanned).To(Equal(1))
		Expect(r.LatestTagContainers).To(ConsistOf(MatchFields(IgnoreExtras, Fields{
			"ContainerRef": Equal(report.ContainerRef{Namespace: "default", Pod: "nginx-pod", Container: "nginx"}),
			"Image":        Equal("nginx:latest"),
		})))
		Expect(r.RootContainers).To(ConsistOf(MatchFields(IgnoreExtras, Fields{
			"Reason": Equal(rules.ReasonNoSecurityContext),
		})))
		Expect(r.CISViolations).To(ContainElement(MatchFields(IgnoreExtras, Fields{
			"Control": MatchFields(IgnoreExtras, Fields{
				"ControlID": Equal("5.7.3"),
				"Severity":  Equal(rule.SeverityHigh),
				"Level":     Equal(rule.LevelOne),
			}),
		})))
		Expect(r.CISViolations).To(ContainElement(MatchFields(IgnoreExtras, Fields{
			"Control": MatchFields(IgnoreExtras, Fields{
				"ControlID": Equal("5.7.4"),
				"Severity":  Equal(rule.SeverityLow),
				"Level":     Equal(rule.LevelOne),
			}),
		})))
		Expect(r.NetworkPolicyViolations).To(HaveLen(1))
		Expect(r.Summary.TotalIssues).To(BeNumerically(">=", 4))
		Expect(r.Summary.TotalIssues).To(Equal(r.Summary.LatestTagIssues + r.Summary.RootUserIssues + r.Summary.CISViolations +
			r.Summary.NetworkPolicyViolations + r.Summary.ServiceAccountViolations))
		Expect(r.Benchmark).ToNot(BeNil())
		Expect(r.Benchmark.Version).To(Equal("v1.9.0"))
	})

	It("should not report hardened workloads", func() {
		web := pod("apps", "web", hardenedContainer("web", "nginx:1.27.0"))
		web.Spec.ServiceAccountName = "web"
		fakeClient := fakeclient.NewClientBuilder().WithObjects(
			namespace("apps"),
			web,
			&networkingv1.NetworkPolicy{ObjectMeta: metav1.ObjectMeta{Name: "deny-all", Namespace: "apps"}},
			&corev1.ServiceAccount{ObjectMeta: metav1.ObjectMeta{Name: "default", Namespace: "apps"}, AutomountServiceAccountToken: ptr.To(false)},
			&corev1.ServiceAccount{ObjectMeta: metav1.ObjectMeta{Name: "web", Namespace: "apps"}, AutomountServiceAccountToken: ptr.To(false)},
		).Build()

		r, err := newScanner(fakeClient).RunScan(ctx)
		Expect(err).ToNot(HaveOccurred())
		Expect(r.Summary).To(Equal(report.Summary{NamespacesScanned: 1}))
		Expect(r.Diagnostics).To(BeEmpty())
	})

	It("should report a single network policy violation per namespace", func() {
		fakeClient := fakeclient.NewClientBuilder().WithObjects(
			namespace("apps"),
			pod("apps", "a", hardenedContainer("a", "nginx:1.27.0")),
			pod("apps", "b", hardenedContainer("b", "nginx:1.27.0")),
			pod("apps", "c", hardenedContainer("c", "nginx:1.27.0")),
		).Build()

		r, err := newScanner(fakeClient).RunScan(ctx)
		Expect(err).ToNot(HaveOccurred())
		Expect(r.NetworkPolicyViolations).To(HaveLen(1))
		Expect(r.NetworkPolicyViolations[0].Namespace).To(Equal("apps"))
		Expect(r.NetworkPolicyViolations[0].ControlID).To(Equal("5.3.2"))
	})

	It("should accumulate violations of a single container", func() {
		container := hardenedContainer("net", "registry.example.com/net@sha256:4b8b4f9c8b1b3a0a3d1f3e0f0b4c4b7c5e6d3c2b1a0f9e8d7c6b5a4f3e2d1c0b")
		container.SecurityContext.Capabilities = &corev1.Capabilities{
			Add: []corev1.Capability{"NET_RAW", "SYS_ADMIN"},
		}
		fakeClient := fakeclient.NewClientBuilder().WithObjects(
			namespace("apps"),
			pod("apps", "net", container),
		).Build()

		r, err := newScanner(fakeClient).RunScan(ctx)
		Expect(err).ToNot(HaveOccurred())
		Expect(r.LatestTagContainers).To(BeEmpty())
		Expect(r.RootContainers).To(BeEmpty())
		Expect(controlIDs(r.CISViolations)).To(Equal([]string{"5.2.7", "5.2.8", "5.2.9", "5.2.9"}))
	})

	It("should evaluate init containers after regular containers", func() {
		p := pod("apps", "web", corev1.Container{Name: "web", Image: "nginx"})
		p.Spec.InitContainers = []corev1.Container{{Name: "setup", Image: "busybox:latest"}}
		fakeClient := fakeclient.NewClientBuilder().WithObjects(namespace("apps"), p).Build()

		r, err := newScanner(fakeClient).RunScan(ctx)
		Expect(err).ToNot(HaveOccurred())
		Expect(r.LatestTagContainers).To(Equal([]report.LatestTagContainer{
			{ContainerRef: report.ContainerRef{Namespace: "apps", Pod: "web", Container: "web"}, Image: "nginx:latest", Severity: rule.SeverityMedium},
			{ContainerRef: report.ContainerRef{Namespace: "apps", Pod: "web", Container: "setup", InitContainer: true}, Image: "busybox:latest", Severity: rule.SeverityMedium},
		}))
	})

	It("should report service accounts with automounted tokens", func() {
		fakeClient := fakeclient.NewClientBuilder().WithObjects(
			namespace("apps"),
			&corev1.ServiceAccount{ObjectMeta: metav1.ObjectMeta{Name: "default", Namespace: "apps"}},
			&corev1.ServiceAccount{ObjectMeta: metav1.ObjectMeta{Name: "robot", Namespace: "apps"}, AutomountServiceAccountToken: ptr.To(false)},
		).Build()

		r, err := newScanner(fakeClient).RunScan(ctx)
		Expect(err).ToNot(HaveOccurred())
		Expect(r.ServiceAccountViolations).To(ConsistOf(MatchFields(IgnoreExtras, Fields{
			"Namespace":      Equal("apps"),
			"ServiceAccount": Equal("default"),
		})))
	})

	It("should be idempotent", func() {
		fakeClient := fakeclient.NewClientBuilder().WithObjects(
			namespace("default"),
			namespace("apps"),
			pod("default", "nginx-pod", corev1.Container{Name: "nginx", Image: "nginx:latest"}),
			pod("apps", "web", corev1.Container{Name: "web", Image: "nginx"}),
		).Build()
		s := newScanner(fakeClient, scanner.WithNumberOfWorkers(2))

		first, err := s.RunScan(ctx)
		Expect(err).ToNot(HaveOccurred())
		second, err := s.RunScan(ctx)
		Expect(err).ToNot(HaveOccurred())

		Expect(second.ScanID).ToNot(Equal(first.ScanID))
		Expect(second.Findings).To(Equal(first.Findings))
		Expect(second.Summary).To(Equal(first.Summary))
	})

	It("should continue the scan when pods of a namespace cannot be listed", func() {
		fakeClient := fakeclient.NewClientBuilder().WithObjects(
			namespace("default"),
			namespace("kube-system"),
			pod("default", "nginx-pod", corev1.Container{Name: "nginx", Image: "nginx:latest"}),
			pod("kube-system", "coredns", corev1.Container{Name: "coredns", Image: "coredns:latest"}),
		).WithInterceptorFuncs(podsForbiddenIn("kube-system")).Build()

		r, err := newScanner(fakeClient).RunScan(ctx)
		Expect(err).ToNot(HaveOccurred())

		Expect(r.Summary.NamespacesScanned).To(Equal(1))
		Expect(r.Namespaces).To(Equal([]report.Namespace{{Name: "default"}}))
		Expect(r.Diagnostics).To(ConsistOf(MatchFields(IgnoreExtras, Fields{
			"Namespace": Equal("kube-system"),
			"Kind":      Equal("Pod"),
			"Reason":    Equal(report.ReasonForbidden),
		})))
		for _, c := range r.LatestTagContainers {
			Expect(c.Namespace).To(Equal("default"))
		}
		Expect(r.LatestTagContainers).To(HaveLen(1))
		Expect(r.NetworkPolicyViolations).To(HaveLen(2))
	})

	It("should report an explicit diagnostic when no namespace is accessible", func() {
		fakeClient := fakeclient.NewClientBuilder().WithObjects(
			namespace("kube-system"),
		).WithInterceptorFuncs(podsForbiddenIn("kube-system")).Build()

		r, err := newScanner(fakeClient).RunScan(ctx)
		Expect(err).ToNot(HaveOccurred())
		Expect(r.Summary.NamespacesScanned).To(Equal(0))
		Expect(r.Diagnostics).To(ContainElement(MatchFields(IgnoreExtras, Fields{
			"Kind":   Equal("Namespace"),
			"Reason": Equal(report.ReasonNoNamespaces),
		})))
	})

	It("should skip excluded namespaces", func() {
		fakeClient := fakeclient.NewClientBuilder().WithObjects(
			namespace("default"),
			namespace("kube-system"),
		).Build()

		r, err := newScanner(fakeClient, scanner.WithExcludedNamespaces("kube-system")).RunScan(ctx)
		Expect(err).ToNot(HaveOccurred())
		Expect(r.Summary.NamespacesScanned).To(Equal(1))
		Expect(r.NetworkPolicyViolations).To(ConsistOf(MatchFields(IgnoreExtras, Fields{"Namespace": Equal("default")})))
	})

	It("should report the pod security enforce level of scanned namespaces", func() {
		ns := namespace("apps")
		ns.Labels = map[string]string{"pod-security.kubernetes.io/enforce": "restricted"}
		fakeClient := fakeclient.NewClientBuilder().WithObjects(ns).Build()

		r, err := newScanner(fakeClient).RunScan(ctx)
		Expect(err).ToNot(HaveOccurred())
		Expect(r.Namespaces).To(Equal([]report.Namespace{{Name: "apps", PodSecurityEnforce: "restricted"}}))
	})

	It("should list skipped rules", func() {
		var err error
		rulesets, err = builder.RulesetsFromConfig([]config.RulesetConfig{
			{
				ID:   "cis-kubernetes",
				Args: map[string]any{"levels": []any{"L2"}},
				RuleOptions: []config.RuleOptionsConfig{
					{RuleID: "5.3.2", Skip: &config.RuleOptionSkipConfig{Enabled: true, Justification: "network policies are managed by the platform"}},
				},
			},
		}, field.NewPath("rulesets"))
		Expect(err).ToNot(HaveOccurred())

		fakeClient := fakeclient.NewClientBuilder().WithObjects(namespace("apps")).Build()
		r, err := newScanner(fakeClient).RunScan(ctx)
		Expect(err).ToNot(HaveOccurred())
		Expect(r.NetworkPolicyViolations).To(BeEmpty())
		Expect(r.SkippedRules).To(ContainElement(MatchFields(IgnoreExtras, Fields{
			"RulesetID":     Equal("cis-kubernetes"),
			"RuleID":        Equal("5.3.2"),
			"Severity":      Equal(rule.SeverityMedium),
			"Justification": Equal("network policies are managed by the platform"),
		})))
		Expect(r.SkippedRules).To(ContainElement(MatchFields(IgnoreExtras, Fields{
			"RuleID":        Equal("5.7.4"),
			"Justification": Equal("Level L1 is not selected."),
		})))
	})

	It("should return a fatal error when namespaces cannot be listed", func() {
		fakeClient := fakeclient.NewClientBuilder().WithInterceptorFuncs(interceptor.Funcs{
			List: func(_ context.Context, _ client.WithWatch, _ client.ObjectList, _ ...client.ListOption) error {
				return apierrors.NewUnauthorized("invalid token")
			},
		}).Build()

		r, err := newScanner(fakeClient).RunScan(ctx)
		Expect(r).To(BeNil())

		var scanErr *scanner.ScanError
		Expect(errors.As(err, &scanErr)).To(BeTrue())
		Expect(scanErr.Reason).To(Equal(report.ReasonUnauthorized))
		Expect(apierrors.IsUnauthorized(err)).To(BeTrue())
	})

	It("should return a cancelled report when the context is already cancelled", func() {
		fakeClient := fakeclient.NewClientBuilder().WithObjects(namespace("default")).Build()
		cancelledCtx, cancel := context.WithCancel(ctx)
		cancel()

		r, err := newScanner(fakeClient).RunScan(cancelledCtx)
		Expect(err).To(MatchError(context.Canceled))
		Expect(r).ToNot(BeNil())
		Expect(r.Cancelled).To(BeTrue())
		Expect(r.Summary.NamespacesScanned).To(Equal(0))
	})

	It("should discard namespaces which were not fully listed when the scan is cancelled", func() {
		scanCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		fakeClient := fakeclient.NewClientBuilder().WithObjects(
			namespace("a"),
			namespace("b"),
			namespace("c"),
			pod("a", "web", corev1.Container{Name: "web", Image: "nginx"}),
			pod("b", "web", corev1.Container{Name: "web", Image: "nginx"}),
		).WithInterceptorFuncs(interceptor.Funcs{
			List: func(ctx context.Context, c client.WithWatch, list client.ObjectList, opts ...client.ListOption) error {
				listOptions := (&client.ListOptions{}).ApplyOptions(opts)
				if _, ok := list.(*corev1.PodList); ok && listOptions.Namespace == "b" {
					cancel()
					return ctx.Err()
				}
				return c.List(ctx, list, opts...)
			},
		}).Build()

		r, err := newScanner(fakeClient, scanner.WithNumberOfWorkers(1)).RunScan(scanCtx)
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		Expect(r.Cancelled).To(BeTrue())
		Expect(r.Summary.NamespacesScanned).To(Equal(1))
		Expect(r.Namespaces).To(Equal([]report.Namespace{{Name: "a"}}))
		for _, c := range r.LatestTagContainers {
			Expect(c.Namespace).To(Equal("a"))
		}
		Expect(r.NetworkPolicyViolations).To(ConsistOf(MatchFields(IgnoreExtras, Fields{"Namespace": Equal("a")})))
	})

	It("should report a listing which exceeds the list timeout as a diagnostic", func() {
		fakeClient := fakeclient.NewClientBuilder().WithObjects(
			namespace("default"),
			namespace("slow"),
			pod("default", "nginx-pod", corev1.Container{Name: "nginx", Image: "nginx:latest"}),
		).WithInterceptorFuncs(interceptor.Funcs{
			List: func(ctx context.Context, c client.WithWatch, list client.ObjectList, opts ...client.ListOption) error {
				listOptions := (&client.ListOptions{}).ApplyOptions(opts)
				if _, ok := list.(*corev1.PodList); ok && listOptions.Namespace == "slow" {
					<-ctx.Done()
					return ctx.Err()
				}
				return c.List(ctx, list, opts...)
			},
		}).Build()

		r, err := newScanner(fakeClient, scanner.WithListTimeout(50*time.Millisecond)).RunScan(ctx)
		Expect(err).ToNot(HaveOccurred())
		Expect(r.Cancelled).To(BeFalse())
		Expect(r.Summary.NamespacesScanned).To(Equal(1))
		Expect(r.Namespaces).To(Equal([]report.Namespace{{Name: "default"}}))
		Expect(r.Diagnostics).To(ConsistOf(MatchFields(IgnoreExtras, Fields{
			"Namespace": Equal("slow"),
			"Kind":      Equal("Pod"),
			"Reason":    Equal(report.ReasonTimeout),
		})))
		Expect(r.NetworkPolicyViolations).To(HaveLen(2))
	})

	It("should not report missing network policies when they cannot be listed", func() {
		fakeClient := fakeclient.NewClientBuilder().WithObjects(
			namespace("default"),
			namespace("restricted"),
			pod("restricted", "web", corev1.Container{Name: "web", Image: "nginx:latest"}),
		).WithInterceptorFuncs(forbiddenIn("restricted", func(list client.ObjectList) bool {
			_, ok := list.(*networkingv1.NetworkPolicyList)
			return ok
		}, "networkpolicies")).Build()

		r, err := newScanner(fakeClient).RunScan(ctx)
		Expect(err).ToNot(HaveOccurred())
		Expect(r.Summary.NamespacesScanned).To(Equal(1))
		Expect(r.Diagnostics).To(ConsistOf(MatchFields(IgnoreExtras, Fields{
			"Namespace": Equal("restricted"),
			"Kind":      Equal("NetworkPolicy"),
			"Reason":    Equal(report.ReasonForbidden),
		})))
		Expect(r.NetworkPolicyViolations).To(ConsistOf(MatchFields(IgnoreExtras, Fields{"Namespace": Equal("default")})))
		Expect(r.LatestTagContainers).To(ConsistOf(MatchFields(IgnoreExtras, Fields{
			"ContainerRef": MatchFields(IgnoreExtras, Fields{"Namespace": Equal("restricted"), "Pod": Equal("web")}),
		})))
	})

	It("should keep pod findings when service accounts cannot be listed", func() {
		fakeClient := fakeclient.NewClientBuilder().WithObjects(
			namespace("restricted"),
			pod("restricted", "web", corev1.Container{Name: "web", Image: "nginx:latest"}),
			&corev1.ServiceAccount{ObjectMeta: metav1.ObjectMeta{Name: "builder", Namespace: "restricted"}},
		).WithInterceptorFuncs(forbiddenIn("restricted", func(list client.ObjectList) bool {
			_, ok := list.(*corev1.ServiceAccountList)
			return ok
		}, "serviceaccounts")).Build()

		r, err := newScanner(fakeClient).RunScan(ctx)
		Expect(err).ToNot(HaveOccurred())
		Expect(r.Summary.NamespacesScanned).To(Equal(0))
		Expect(r.Diagnostics).To(ContainElement(MatchFields(IgnoreExtras, Fields{
			"Namespace": Equal("restricted"),
			"Kind":      Equal("ServiceAccount"),
			"Reason":    Equal(report.ReasonForbidden),
		})))
		Expect(r.LatestTagContainers).To(HaveLen(1))
		Expect(r.RootContainers).To(HaveLen(1))
		Expect(r.NetworkPolicyViolations).To(HaveLen(1))
		Expect(r.ServiceAccountViolations).ToNot(ContainElement(MatchFields(IgnoreExtras, Fields{"ServiceAccount": Equal("builder")})))
	})

	It("should keep the default list timeout for non-positive timeouts", func() {
		fakeClient := fakeclient.NewClientBuilder().Build()

		Expect(newScanner(fakeClient, scanner.WithListTimeout(0)).ListTimeout()).To(Equal(scanner.DefaultListTimeout))
		Expect(newScanner(fakeClient, scanner.WithListTimeout(-time.Second)).ListTimeout()).To(Equal(scanner.DefaultListTimeout))
		Expect(newScanner(fakeClient, scanner.WithListTimeout(time.Second)).ListTimeout()).To(Equal(time.Second))
	})

	It("should resolve the rules of the rulesets once", func() {
		counting := make([]*countingRuleset, 0, len(rulesets))
		wrapped := make([]ruleset.Ruleset, 0, len(rulesets))
		for _, rs := range rulesets {
			c := &countingRuleset{Ruleset: rs}
			counting = append(counting, c)
			wrapped = append(wrapped, c)
		}
		fakeClient := fakeclient.NewClientBuilder().WithObjects(
			namespace("a"),
			namespace("b"),
			pod("a", "web", corev1.Container{Name: "web", Image: "nginx"}, corev1.Container{Name: "sidecar", Image: "envoy"}),
			pod("a", "api", corev1.Container{Name: "api", Image: "api"}),
			pod("b", "web", corev1.Container{Name: "web", Image: "nginx"}),
		).Build()

		s, err := scanner.New(accessor.New(fakeClient), wrapped, scanner.WithLogger(testLogger))
		Expect(err).ToNot(HaveOccurred())
		r, err := s.RunScan(ctx)
		Expect(err).ToNot(HaveOccurred())
		Expect(r.LatestTagContainers).To(HaveLen(4))

		for _, c := range counting {
			Expect(c.calls.Load()).To(BeNumerically("<=", 2))
		}
	})

	It("should not report inaccessible namespaces when the scan is cancelled", func() {
		scanCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		fakeClient := fakeclient.NewClientBuilder().WithObjects(
			namespace("a"),
		).WithInterceptorFuncs(interceptor.Funcs{
			List: func(ctx context.Context, c client.WithWatch, list client.ObjectList, opts ...client.ListOption) error {
				if _, ok := list.(*corev1.PodList); ok {
					cancel()
					return ctx.Err()
				}
				return c.List(ctx, list, opts...)
			},
		}).Build()

		r, err := newScanner(fakeClient).RunScan(scanCtx)
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		Expect(r.Cancelled).To(BeTrue())
		Expect(r.Summary.NamespacesScanned).To(Equal(0))
		Expect(r.Diagnostics).To(BeEmpty())
	})

	It("should fail to create a scanner without rulesets", func() {
		_, err := scanner.New(accessor.New(fakeclient.NewClientBuilder().Build()), nil)
		Expect(err).To(MatchError("no rulesets are registered in the scanner"))
	})
})
