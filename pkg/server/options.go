// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"log/slog"

	"github.com/gardener/kube-scanner/pkg/metadata"
)

// CreateOption is a function that acts on a [Server]
// and is used to construct such objects.
type CreateOption func(*Server)

// WithAddress sets the listen address of a [Server].
func WithAddress(address string) CreateOption {
	return func(s *Server) {
		if len(address) > 0 {
			s.address = address
		}
	}
}

// WithCatalog sets the benchmark catalog served by a [Server].
func WithCatalog(catalog *metadata.Catalog) CreateOption {
	return func(s *Server) {
		s.catalog = catalog
	}
}

// WithMetrics sets the metrics of a [Server].
func WithMetrics(metrics *Metrics) CreateOption {
	return func(s *Server) {
		s.metrics = metrics
	}
}

// WithLogger sets the logger of a [Server].
func WithLogger(logger *slog.Logger) CreateOption {
	return func(s *Server) {
		s.logger = logger
	}
}
