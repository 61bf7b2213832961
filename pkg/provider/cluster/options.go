// SPDX-FileCopyrightText: 2024 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package cluster

import (
	"log/slog"

	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/rest"
	"sigs.k8s.io/controller-runtime/pkg/client"
)

// CreateOption is a function that acts on a [Provider]
// and is used to construct such objects.
type CreateOption func(*Provider)

// WithConfig sets the Config of a [Provider].
func WithConfig(config *rest.Config) CreateOption {
	return func(p *Provider) {
		p.Config = config
	}
}

// WithClient sets the client used to list objects.
func WithClient(c client.Client) CreateOption {
	return func(p *Provider) {
		p.client = c
	}
}

// WithDiscovery sets the client used to check the connectivity.
func WithDiscovery(d discovery.ServerVersionInterface) CreateOption {
	return func(p *Provider) {
		p.discovery = d
	}
}

// WithPageLimit sets the number of objects retrieved per listing page.
func WithPageLimit(limit int64) CreateOption {
	return func(p *Provider) {
		if limit > 0 {
			p.pageLimit = limit
		}
	}
}

// WithMaxRetries sets the max number of attempts of a listing.
func WithMaxRetries(maxRetries int) CreateOption {
	return func(p *Provider) {
		p.maxRetries = maxRetries
	}
}

// WithNamespaceSelector sets the selector of the scanned namespaces.
func WithNamespaceSelector(selector labels.Selector) CreateOption {
	return func(p *Provider) {
		p.namespaceSelector = selector
	}
}

// WithLogger sets the logger of a [Provider].
func WithLogger(logger *slog.Logger) CreateOption {
	return func(p *Provider) {
		p.logger = logger
	}
}
