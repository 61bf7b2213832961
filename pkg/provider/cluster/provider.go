// SPDX-FileCopyrightText: 2024 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package cluster

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/gardener/kube-scanner/pkg/config"
	"github.com/gardener/kube-scanner/pkg/kubernetes/accessor"
	kubeutils "github.com/gardener/kube-scanner/pkg/kubernetes/utils"
)

var (
	// ErrUnauthorized is returned when the cluster rejects the configured credentials.
	ErrUnauthorized = errors.New("unauthorized to access the cluster")
	// ErrForbidden is returned when the configured credentials lack permissions.
	ErrForbidden = errors.New("forbidden to access the cluster")

	inClusterConfigFunc = rest.InClusterConfig
)

// Provider connects to a single Kubernetes cluster.
type Provider struct {
	Config            *rest.Config
	client            client.Client
	discovery         discovery.ServerVersionInterface
	pageLimit         int64
	maxRetries        int
	namespaceSelector labels.Selector
	logger            *slog.Logger
}

// ServerInfo contains the version of the connected API server.
type ServerInfo struct {
	GitVersion string `json:"gitVersion"`
	Platform   string `json:"platform"`
}

// New creates a new Provider.
func New(options ...CreateOption) (*Provider, error) {
	p := &Provider{
		pageLimit:         accessor.DefaultPageLimit,
		maxRetries:        1,
		namespaceSelector: labels.Everything(),
	}
	for _, o := range options {
		o(p)
	}

	if p.Config == nil && (p.client == nil || p.discovery == nil) {
		return nil, errors.New("cluster config is nil")
	}

	if p.client == nil {
		c, err := client.New(p.Config, client.Options{})
		if err != nil {
			return nil, fmt.Errorf("failed to create client: %w", err)
		}
		p.client = c
	}

	if p.discovery == nil {
		clientset, err := kubernetes.NewForConfig(p.Config)
		if err != nil {
			return nil, fmt.Errorf("failed to create clientset: %w", err)
		}
		p.discovery = clientset.Discovery()
	}

	return p, nil
}

// FromConfig creates a Provider from the provider and scan configuration.
func FromConfig(providerConf config.ProviderConfig, scanConf config.ScanConfig) (*Provider, error) {
	restConfig, err := loadConfig(providerConf)
	if err != nil {
		return nil, err
	}

	if providerConf.QPS > 0 {
		restConfig.QPS = providerConf.QPS
	}
	if providerConf.Burst > 0 {
		restConfig.Burst = providerConf.Burst
	}

	selector, err := labels.Parse(scanConf.Namespaces.LabelSelector)
	if err != nil {
		return nil, fmt.Errorf("invalid namespace label selector: %w", err)
	}

	return New(
		WithConfig(restConfig),
		WithPageLimit(scanConf.PageLimit),
		WithMaxRetries(scanConf.MaxRetries),
		WithNamespaceSelector(selector),
	)
}

// Accessor returns the lister used to scan the cluster.
// Listings are retried on transient errors when more than one attempt is configured.
func (p *Provider) Accessor() accessor.Lister {
	a := accessor.New(p.client, accessor.WithPageLimit(p.pageLimit), accessor.WithNamespaceSelector(p.namespaceSelector))
	if p.maxRetries <= 1 {
		return a
	}

	return accessor.NewRetryableAccessor(
		accessor.WithBaseLister(a),
		accessor.WithMaxRetries(p.maxRetries),
		accessor.WithLogger(p.Logger()),
	)
}

// CheckConnectivity requests the version of the API server.
func (p *Provider) CheckConnectivity(ctx context.Context) (ServerInfo, error) {
	if err := ctx.Err(); err != nil {
		return ServerInfo{}, err
	}

	info, err := p.discovery.ServerVersion()
	switch {
	case err == nil:
		return ServerInfo{GitVersion: info.GitVersion, Platform: info.Platform}, nil
	case apierrors.IsUnauthorized(err):
		return ServerInfo{}, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	case apierrors.IsForbidden(err):
		return ServerInfo{}, fmt.Errorf("%w: %w", ErrForbidden, err)
	default:
		return ServerInfo{}, fmt.Errorf("failed to connect to the cluster: %w", err)
	}
}

// Logger returns the Provider's logger.
// If not set it set it to slog.Default().With("provider", "cluster") then return it.
func (p *Provider) Logger() *slog.Logger {
	if p.logger == nil {
		p.logger = slog.Default().With("provider", "cluster")
	}
	return p.logger
}

// loadConfig resolves the cluster configuration in the following order:
// the configured kubeconfig path, the in-cluster configuration and
// the default loading rules which respect the KUBECONFIG environment variable.
func loadConfig(providerConf config.ProviderConfig) (*rest.Config, error) {
	if len(providerConf.KubeconfigPath) > 0 {
		restConfig, err := kubeutils.RESTConfigFromFile(providerConf.KubeconfigPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load kubeconfig %s: %w", providerConf.KubeconfigPath, err)
		}
		return restConfig, nil
	}

	inClusterConfig, inClusterErr := inClusterConfigFunc()
	if inClusterErr == nil {
		return inClusterConfig, nil
	}

	loadingRules := clientcmd.NewDefaultClientConfigLoadingRules()
	restConfig, err := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(loadingRules, &clientcmd.ConfigOverrides{}).ClientConfig()
	if err != nil {
		return nil, errors.Join(
			fmt.Errorf("failed to load in-cluster configuration: %w", inClusterErr),
			fmt.Errorf("failed to load kubeconfig: %w", err),
		)
	}
	return restConfig, nil
}
