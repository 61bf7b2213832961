// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gardener/kube-scanner/pkg/report"
	"github.com/gardener/kube-scanner/pkg/rule"
)

const (
	metricsNamespace = "kube_scanner"

	scanResultSuccess   = "success"
	scanResultDegraded  = "degraded"
	scanResultCancelled = "cancelled"
	scanResultFailed    = "failed"
)

// Metrics holds the collectors of the server in a dedicated registry.
type Metrics struct {
	registry          *prometheus.Registry
	scans             *prometheus.CounterVec
	scanDuration      prometheus.Histogram
	lastScanIssues    *prometheus.GaugeVec
	namespacesScanned prometheus.Gauge
	degradedListings  *prometheus.CounterVec
}

// NewMetrics creates and registers the server collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		scans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "scan",
			Name:      "total",
			Help:      "number of scans by result",
		}, []string{"result"}),
		scanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "scan",
			Name:      "duration_seconds",
			Help:      "duration of scans in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		lastScanIssues: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "scan",
			Name:      "last_issues",
			Help:      "number of issues per category found by the last completed scan",
		}, []string{"category"}),
		namespacesScanned: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "scan",
			Name:      "last_namespaces_scanned",
			Help:      "number of namespaces fully scanned by the last completed scan",
		}),
		degradedListings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "scan",
			Name:      "degraded_listings_total",
			Help:      "number of failed listings by kind and reason",
		}, []string{"kind", "reason"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.scans,
		m.scanDuration,
		m.lastScanIssues,
		m.namespacesScanned,
		m.degradedListings,
	)
	return m
}

// Handler returns the http handler exposing the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) recordScan(r *report.ScanReport, err error, duration time.Duration) {
	m.scanDuration.Observe(duration.Seconds())

	switch {
	case r == nil:
		m.scans.With(prometheus.Labels{"result": scanResultFailed}).Inc()
		return
	case r.Cancelled:
		m.scans.With(prometheus.Labels{"result": scanResultCancelled}).Inc()
	case len(r.Diagnostics) > 0:
		m.scans.With(prometheus.Labels{"result": scanResultDegraded}).Inc()
	default:
		m.scans.With(prometheus.Labels{"result": scanResultSuccess}).Inc()
	}

	for _, d := range r.Diagnostics {
		m.degradedListings.With(prometheus.Labels{"kind": d.Kind, "reason": string(d.Reason)}).Inc()
	}

	if err != nil {
		return
	}

	issues := map[rule.Category]int{
		rule.CategoryLatestTag:      r.Summary.LatestTagIssues,
		rule.CategoryRootUser:       r.Summary.RootUserIssues,
		rule.CategoryCISCompliance:  r.Summary.CISViolations,
		rule.CategoryNetworkPolicy:  r.Summary.NetworkPolicyViolations,
		rule.CategoryServiceAccount: r.Summary.ServiceAccountViolations,
	}
	for _, category := range rule.Categories() {
		m.lastScanIssues.With(prometheus.Labels{"category": string(category)}).Set(float64(issues[category]))
	}
	m.namespacesScanned.Set(float64(r.Summary.NamespacesScanned))
}
