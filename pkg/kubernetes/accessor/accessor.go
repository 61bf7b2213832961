// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package accessor

import (
	"context"

	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	"k8s.io/apimachinery/pkg/labels"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/gardener/kube-scanner/pkg/kubernetes/utils"
)

// Lister lists the objects that are evaluated during a scan.
type Lister interface {
	ListNamespaces(ctx context.Context) ([]corev1.Namespace, error)
	ListPods(ctx context.Context, namespace string) ([]corev1.Pod, error)
	ListNetworkPolicies(ctx context.Context, namespace string) ([]networkingv1.NetworkPolicy, error)
	ListServiceAccounts(ctx context.Context, namespace string) ([]corev1.ServiceAccount, error)
}

var _ Lister = &Accessor{}

// Accessor lists cluster objects with a controller-runtime client.
type Accessor struct {
	Client            client.Client
	PageLimit         int64
	NamespaceSelector labels.Selector
}

// DefaultPageLimit is the default number of objects retrieved per listing page.
const DefaultPageLimit int64 = 300

// New creates a new Accessor.
func New(c client.Client, options ...AccessorOption) *Accessor {
	a := &Accessor{
		Client:            c,
		PageLimit:         DefaultPageLimit,
		NamespaceSelector: labels.Everything(),
	}

	for _, o := range options {
		o(a)
	}

	return a
}

// ListNamespaces lists all namespaces matching the namespace selector.
func (a *Accessor) ListNamespaces(ctx context.Context) ([]corev1.Namespace, error) {
	return utils.GetNamespaces(ctx, a.Client, a.NamespaceSelector, a.PageLimit)
}

// ListPods lists all pods of a namespace.
func (a *Accessor) ListPods(ctx context.Context, namespace string) ([]corev1.Pod, error) {
	return utils.GetPods(ctx, a.Client, namespace, labels.Everything(), a.PageLimit)
}

// ListNetworkPolicies lists all network policies of a namespace.
func (a *Accessor) ListNetworkPolicies(ctx context.Context, namespace string) ([]networkingv1.NetworkPolicy, error) {
	return utils.GetNetworkPolicies(ctx, a.Client, namespace, a.PageLimit)
}

// ListServiceAccounts lists all service accounts of a namespace.
func (a *Accessor) ListServiceAccounts(ctx context.Context, namespace string) ([]corev1.ServiceAccount, error) {
	return utils.GetServiceAccounts(ctx, a.Client, namespace, a.PageLimit)
}
