// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package scanner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/gardener/kube-scanner/pkg/report"
	"github.com/gardener/kube-scanner/pkg/rule"
	"github.com/gardener/kube-scanner/pkg/ruleset"
	"github.com/gardener/kube-scanner/pkg/workload"
)

const (
	// DefaultNumberOfWorkers is the default number of namespaces evaluated concurrently.
	DefaultNumberOfWorkers = 5
	// DefaultListTimeout is the default timeout of a single listing.
	DefaultListTimeout = 30 * time.Second

	kindNamespace      = "Namespace"
	kindPod            = "Pod"
	kindNetworkPolicy  = "NetworkPolicy"
	kindServiceAccount = "ServiceAccount"
)

// ObjectAccessor lists the cluster objects evaluated by a Scanner.
type ObjectAccessor interface {
	ListNamespaces(ctx context.Context) ([]corev1.Namespace, error)
	ListPods(ctx context.Context, namespace string) ([]corev1.Pod, error)
	ListNetworkPolicies(ctx context.Context, namespace string) ([]networkingv1.NetworkPolicy, error)
	ListServiceAccounts(ctx context.Context, namespace string) ([]corev1.ServiceAccount, error)
}

// Scanner evaluates the rules of its rulesets against the objects of a cluster.
type Scanner struct {
	accessor           ObjectAccessor
	rulesets           []ruleset.Ruleset
	numWorkers         int
	listTimeout        time.Duration
	excludedNamespaces sets.Set[string]
	logger             *slog.Logger
	reportOptions      []report.ReportOption

	containerRules      []rule.ContainerRule
	podRules            []rule.PodRule
	namespaceRules      []rule.NamespaceRule
	serviceAccountRules []rule.ServiceAccountRule
}

// Evaluation is the outcome of a scan before it is aggregated into a report.
type Evaluation struct {
	// Violations are ordered by namespace listing order and traversal order within a namespace.
	Violations        []rule.Violation
	NamespacesScanned int
	Namespaces        []report.Namespace
	Diagnostics       []report.Diagnostic
	SkippedRules      []report.SkippedRule
	Cancelled         bool
}

// New creates a new Scanner.
func New(accessor ObjectAccessor, rulesets []ruleset.Ruleset, options ...CreateOption) (*Scanner, error) {
	if accessor == nil {
		return nil, errors.New("object accessor is not set")
	}
	if len(rulesets) == 0 {
		return nil, errors.New("no rulesets are registered in the scanner")
	}

	s := &Scanner{
		accessor:           accessor,
		rulesets:           slices.Clone(rulesets),
		numWorkers:         DefaultNumberOfWorkers,
		listTimeout:        DefaultListTimeout,
		excludedNamespaces: sets.New[string](),
	}

	for _, o := range options {
		o(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}

	for _, rs := range s.rulesets {
		for _, r := range rs.Rules() {
			if cr, ok := r.(rule.ContainerRule); ok {
				s.containerRules = append(s.containerRules, cr)
			}
			if pr, ok := r.(rule.PodRule); ok {
				s.podRules = append(s.podRules, pr)
			}
			if nr, ok := r.(rule.NamespaceRule); ok {
				s.namespaceRules = append(s.namespaceRules, nr)
			}
			if sr, ok := r.(rule.ServiceAccountRule); ok {
				s.serviceAccountRules = append(s.serviceAccountRules, sr)
			}
		}
	}

	return s, nil
}

// RunScan evaluates the cluster and aggregates the violations into a ScanReport.
// A cancelled scan returns the report of all fully scanned namespaces together with the cancellation error.
func (s *Scanner) RunScan(ctx context.Context) (*report.ScanReport, error) {
	evaluation, err := s.Evaluate(ctx)
	if err != nil && !evaluation.Cancelled {
		return nil, err
	}

	options := slices.Clone(s.reportOptions)
	options = append(options,
		report.NamespacesScanned(evaluation.NamespacesScanned),
		report.Namespaces(evaluation.Namespaces),
		report.Diagnostics(evaluation.Diagnostics),
		report.SkippedRules(evaluation.SkippedRules),
		report.Cancelled(evaluation.Cancelled),
	)
	for _, rs := range s.rulesets {
		if b, ok := rs.(ruleset.BenchmarkRuleset); ok {
			options = append(options, report.Benchmark(b.Benchmark()))
		}
	}

	return report.New(evaluation.Violations, options...), err
}

type namespaceResult struct {
	violations  []rule.Violation
	diagnostics []report.Diagnostic
	namespace   report.Namespace
	complete    bool
	discarded   bool
}

// Evaluate lists all namespaces and evaluates them with a bounded number of concurrent workers.
// Failing to list the namespaces is fatal. Failing to list the objects of a single kind
// in a namespace is recorded as a diagnostic and the scan continues.
func (s *Scanner) Evaluate(ctx context.Context) (Evaluation, error) {
	evaluation := Evaluation{
		SkippedRules: s.skippedRules(),
	}

	if err := ctx.Err(); err != nil {
		evaluation.Cancelled = true
		return evaluation, fmt.Errorf("scan cancelled: %w", err)
	}

	allNamespaces, err := list(ctx, s.listTimeout, s.accessor.ListNamespaces)
	if err != nil {
		if ctx.Err() != nil {
			evaluation.Cancelled = true
			return evaluation, fmt.Errorf("scan cancelled: %w", ctx.Err())
		}
		s.logger.Error("failed to list namespaces", "error", err)
		return Evaluation{}, &ScanError{Reason: ClassifyError(err), Err: err}
	}

	namespaces := slices.DeleteFunc(allNamespaces, func(ns corev1.Namespace) bool {
		return s.excludedNamespaces.Has(ns.Name)
	})

	workers := min(max(s.numWorkers, 1), max(len(namespaces), 1))
	s.logger.Info(fmt.Sprintf("scanner will evaluate %d namespaces with %d concurrent workers", len(namespaces), workers))

	results := make([]namespaceResult, len(namespaces))
	indexCh := make(chan int)
	wg := sync.WaitGroup{}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indexCh {
				results[idx] = s.evaluateNamespace(ctx, namespaces[idx])
			}
		}()
	}

	go func() {
		defer close(indexCh)
		for idx := range namespaces {
			select {
			case <-ctx.Done():
				for ; idx < len(namespaces); idx++ {
					results[idx].discarded = true
				}
				return
			case indexCh <- idx:
			}
		}
	}()

	wg.Wait()

	for _, res := range results {
		if res.discarded {
			continue
		}
		evaluation.Violations = append(evaluation.Violations, res.violations...)
		evaluation.Diagnostics = append(evaluation.Diagnostics, res.diagnostics...)
		if res.complete {
			evaluation.NamespacesScanned++
			evaluation.Namespaces = append(evaluation.Namespaces, res.namespace)
		}
	}

	if evaluation.NamespacesScanned == 0 && ctx.Err() == nil {
		message := "no namespace could be fully scanned"
		if len(namespaces) == 0 {
			message = "no namespaces were listed, check the namespace selector, the excluded namespaces and the RBAC permissions"
		}
		evaluation.Diagnostics = append(evaluation.Diagnostics, report.Diagnostic{
			Kind:    kindNamespace,
			Reason:  report.ReasonNoNamespaces,
			Message: message,
		})
	}

	if err := ctx.Err(); err != nil {
		evaluation.Cancelled = true
		s.logger.Info("scan cancelled", "namespacesScanned", evaluation.NamespacesScanned)
		return evaluation, fmt.Errorf("scan cancelled: %w", err)
	}

	s.logger.Info("scan finished", "namespacesScanned", evaluation.NamespacesScanned, "violations", len(evaluation.Violations), "diagnostics", len(evaluation.Diagnostics))
	return evaluation, nil
}

func (s *Scanner) evaluateNamespace(ctx context.Context, namespace corev1.Namespace) namespaceResult {
	log := s.logger.With("namespace", namespace.Name)
	if ctx.Err() != nil {
		return namespaceResult{discarded: true}
	}

	pods, podsErr := list(ctx, s.listTimeout, func(ctx context.Context) ([]corev1.Pod, error) {
		return s.accessor.ListPods(ctx, namespace.Name)
	})
	networkPolicies, networkPoliciesErr := list(ctx, s.listTimeout, func(ctx context.Context) ([]networkingv1.NetworkPolicy, error) {
		return s.accessor.ListNetworkPolicies(ctx, namespace.Name)
	})
	serviceAccounts, serviceAccountsErr := list(ctx, s.listTimeout, func(ctx context.Context) ([]corev1.ServiceAccount, error) {
		return s.accessor.ListServiceAccounts(ctx, namespace.Name)
	})

	failed := podsErr != nil || networkPoliciesErr != nil || serviceAccountsErr != nil
	if failed && ctx.Err() != nil {
		return namespaceResult{discarded: true}
	}

	res := namespaceResult{complete: !failed}
	for _, listing := range []struct {
		kind string
		err  error
	}{
		{kind: kindPod, err: podsErr},
		{kind: kindNetworkPolicy, err: networkPoliciesErr},
		{kind: kindServiceAccount, err: serviceAccountsErr},
	} {
		if listing.err == nil {
			continue
		}
		reason := ClassifyError(listing.err)
		log.Warn("failed to list objects", "kind", listing.kind, "reason", reason, "error", listing.err)
		res.diagnostics = append(res.diagnostics, report.Diagnostic{
			Namespace: namespace.Name,
			Kind:      listing.kind,
			Reason:    reason,
			Message:   listing.err.Error(),
		})
	}

	if podsErr == nil {
		for _, pod := range pods {
			res.violations = append(res.violations, s.evaluatePod(workload.FromPod(pod))...)
		}
	}

	ns := workload.FromNamespace(namespace, networkPolicies)
	if networkPoliciesErr == nil {
		res.violations = append(res.violations, s.evaluateNamespaceRules(ns)...)
	}

	if serviceAccountsErr == nil {
		for _, serviceAccount := range serviceAccounts {
			res.violations = append(res.violations, s.evaluateServiceAccount(workload.FromServiceAccount(serviceAccount))...)
		}
	}

	res.namespace = report.Namespace{Name: ns.Name, PodSecurityEnforce: ns.PodSecurityEnforce}
	log.Debug("namespace evaluated", "violations", len(res.violations), "complete", res.complete)
	return res
}

func (s *Scanner) evaluatePod(pod workload.Pod) []rule.Violation {
	var violations []rule.Violation
	for _, container := range pod.Containers {
		for _, cr := range s.containerRules {
			violations = append(violations, cr.CheckContainer(pod, container)...)
		}
	}
	for _, pr := range s.podRules {
		violations = append(violations, pr.CheckPod(pod)...)
	}
	return violations
}

func (s *Scanner) evaluateNamespaceRules(namespace workload.Namespace) []rule.Violation {
	var violations []rule.Violation
	for _, nr := range s.namespaceRules {
		violations = append(violations, nr.CheckNamespace(namespace)...)
	}
	return violations
}

func (s *Scanner) evaluateServiceAccount(serviceAccount workload.ServiceAccount) []rule.Violation {
	var violations []rule.Violation
	for _, sr := range s.serviceAccountRules {
		violations = append(violations, sr.CheckServiceAccount(serviceAccount)...)
	}
	return violations
}

func (s *Scanner) skippedRules() []report.SkippedRule {
	var skipped []report.SkippedRule
	for _, rs := range s.rulesets {
		for _, sr := range ruleset.SkippedRules(rs) {
			skipped = append(skipped, report.SkippedRule{
				RulesetID:     rs.ID(),
				RuleID:        sr.ID(),
				Name:          sr.Name(),
				Severity:      sr.Severity(),
				Justification: sr.Justification(),
			})
		}
	}
	return skipped
}

func list[T any](ctx context.Context, timeout time.Duration, listFunc func(context.Context) ([]T, error)) ([]T, error) {
	listCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return listFunc(listCtx)
}
