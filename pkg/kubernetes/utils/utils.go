// SPDX-FileCopyrightText: 2023 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"context"
	"os"
	"path/filepath"

	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"sigs.k8s.io/controller-runtime/pkg/client"
)

// GetNamespaces returns all namespaces matching the selector.
// It retrieves namespaces by portions set by limit.
func GetNamespaces(ctx context.Context, c client.Client, selector labels.Selector, limit int64) ([]corev1.Namespace, error) {
	namespaceList := &corev1.NamespaceList{}
	var namespaces []corev1.Namespace

	for {
		if err := c.List(ctx, namespaceList, client.Limit(limit), client.MatchingLabelsSelector{Selector: selector}, client.Continue(namespaceList.Continue)); err != nil {
			return nil, err
		}

		namespaces = append(namespaces, namespaceList.Items...)

		if len(namespaceList.Continue) == 0 {
			return namespaces, nil
		}
	}
}

// GetPods returns all pods for a given namespace, or all namespaces if it's set to empty string "".
// It retrieves pods by portions set by limit.
func GetPods(ctx context.Context, c client.Client, namespace string, selector labels.Selector, limit int64) ([]corev1.Pod, error) {
	podList := &corev1.PodList{}
	var pods []corev1.Pod

	for {
		if err := c.List(ctx, podList, client.InNamespace(namespace), client.Limit(limit), client.MatchingLabelsSelector{Selector: selector}, client.Continue(podList.Continue)); err != nil {
			return nil, err
		}

		pods = append(pods, podList.Items...)

		if len(podList.Continue) == 0 {
			return pods, nil
		}
	}
}

// GetNetworkPolicies returns all network policies for a given namespace, or all namespaces if it's set to empty string "".
// It retrieves network policies by portions set by limit.
func GetNetworkPolicies(ctx context.Context, c client.Client, namespace string, limit int64) ([]networkingv1.NetworkPolicy, error) {
	networkPolicyList := &networkingv1.NetworkPolicyList{}
	var networkPolicies []networkingv1.NetworkPolicy

	for {
		if err := c.List(ctx, networkPolicyList, client.InNamespace(namespace), client.Limit(limit), client.Continue(networkPolicyList.Continue)); err != nil {
			return nil, err
		}

		networkPolicies = append(networkPolicies, networkPolicyList.Items...)

		if len(networkPolicyList.Continue) == 0 {
			return networkPolicies, nil
		}
	}
}

// GetServiceAccounts returns all service accounts for a given namespace, or all namespaces if it's set to empty string "".
// It retrieves service accounts by portions set by limit.
func GetServiceAccounts(ctx context.Context, c client.Client, namespace string, limit int64) ([]corev1.ServiceAccount, error) {
	serviceAccountList := &corev1.ServiceAccountList{}
	var serviceAccounts []corev1.ServiceAccount

	for {
		if err := c.List(ctx, serviceAccountList, client.InNamespace(namespace), client.Limit(limit), client.Continue(serviceAccountList.Continue)); err != nil {
			return nil, err
		}

		serviceAccounts = append(serviceAccounts, serviceAccountList.Items...)

		if len(serviceAccountList.Continue) == 0 {
			return serviceAccounts, nil
		}
	}
}

// RESTConfigFromFile creates a [rest.Config] from a kubeconfig file.
func RESTConfigFromFile(filePath string) (*rest.Config, error) {
	data, err := os.ReadFile(filepath.Clean(filePath))
	if err != nil {
		return nil, err
	}
	config, err := clientcmd.RESTConfigFromKubeConfig(data)
	if err != nil {
		return nil, err
	}

	return config, nil
}
