// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package scanner

import (
	"log/slog"
	"time"

	"github.com/gardener/kube-scanner/pkg/report"
)

// CreateOption is a function that acts on a [Scanner]
// and is used to construct such objects.
type CreateOption func(*Scanner)

// WithNumberOfWorkers sets the max number of namespaces evaluated concurrently.
func WithNumberOfWorkers(numWorkers int) CreateOption {
	return func(s *Scanner) {
		if numWorkers <= 0 {
			panic("number of workers should be a positive number")
		}
		s.numWorkers = numWorkers
	}
}

// WithListTimeout sets the timeout of a single listing.
// Non-positive timeouts are ignored and DefaultListTimeout is kept.
func WithListTimeout(timeout time.Duration) CreateOption {
	return func(s *Scanner) {
		if timeout > 0 {
			s.listTimeout = timeout
		}
	}
}

// WithExcludedNamespaces sets namespaces that are not evaluated.
func WithExcludedNamespaces(namespaces ...string) CreateOption {
	return func(s *Scanner) {
		s.excludedNamespaces.Insert(namespaces...)
	}
}

// WithLogger sets the logger of a [Scanner].
func WithLogger(logger *slog.Logger) CreateOption {
	return func(s *Scanner) {
		s.logger = logger
	}
}

// WithReportOptions sets options applied to every report created by a [Scanner].
func WithReportOptions(options ...report.ReportOption) CreateOption {
	return func(s *Scanner) {
		s.reportOptions = append(s.reportOptions, options...)
	}
}
