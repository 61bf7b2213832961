// SPDX-FileCopyrightText: 2024 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package accessor

import (
	"context"
	"log/slog"
	"time"

	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
)

var _ Lister = &RetryableAccessor{}

// RetryableAccessor wraps a Lister, it allows listings to be retried when the RetryCondition is met.
type RetryableAccessor struct {
	BaseLister     Lister
	MaxRetries     int
	Backoff        time.Duration
	RetryCondition func(err error) bool
	Logger         *slog.Logger
}

// NewRetryableAccessor creates a new RetryableAccessor.
// By default a listing is attempted once and transient API errors are considered retryable.
func NewRetryableAccessor(options ...CreateOption) *RetryableAccessor {
	ra := &RetryableAccessor{
		MaxRetries:     1,
		Backoff:        time.Second,
		RetryCondition: IsTransientError,
	}

	for _, o := range options {
		o(ra)
	}

	if ra.Logger == nil {
		ra.Logger = slog.Default()
	}
	return ra
}

// ListNamespaces lists namespaces with the base Lister and retries when RetryCondition is met.
func (ra *RetryableAccessor) ListNamespaces(ctx context.Context) ([]corev1.Namespace, error) {
	return retry(ctx, ra, "Namespace", "", func() ([]corev1.Namespace, error) {
		return ra.BaseLister.ListNamespaces(ctx)
	})
}

// ListPods lists pods with the base Lister and retries when RetryCondition is met.
func (ra *RetryableAccessor) ListPods(ctx context.Context, namespace string) ([]corev1.Pod, error) {
	return retry(ctx, ra, "Pod", namespace, func() ([]corev1.Pod, error) {
		return ra.BaseLister.ListPods(ctx, namespace)
	})
}

// ListNetworkPolicies lists network policies with the base Lister and retries when RetryCondition is met.
func (ra *RetryableAccessor) ListNetworkPolicies(ctx context.Context, namespace string) ([]networkingv1.NetworkPolicy, error) {
	return retry(ctx, ra, "NetworkPolicy", namespace, func() ([]networkingv1.NetworkPolicy, error) {
		return ra.BaseLister.ListNetworkPolicies(ctx, namespace)
	})
}

// ListServiceAccounts lists service accounts with the base Lister and retries when RetryCondition is met.
func (ra *RetryableAccessor) ListServiceAccounts(ctx context.Context, namespace string) ([]corev1.ServiceAccount, error) {
	return retry(ctx, ra, "ServiceAccount", namespace, func() ([]corev1.ServiceAccount, error) {
		return ra.BaseLister.ListServiceAccounts(ctx, namespace)
	})
}

func retry[T any](ctx context.Context, ra *RetryableAccessor, kind, namespace string, list func() ([]T, error)) ([]T, error) {
	var (
		res      []T
		err      error
		attempts = max(ra.MaxRetries, 1)
	)
	for i := 1; i <= attempts; i++ {
		res, err = list()
		if err == nil || !ra.RetryCondition(err) {
			break
		}
		if i < attempts {
			ra.Logger.Info("retrying listing", "kind", kind, "namespace", namespace, "left_retries", attempts-i, "error", err)
			select {
			case <-ctx.Done():
				return nil, err
			case <-time.After(ra.Backoff):
			}
		}
	}
	return res, err
}

// IsTransientError reports whether the error is a transient API server error.
func IsTransientError(err error) bool {
	return apierrors.IsTooManyRequests(err) ||
		apierrors.IsServerTimeout(err) ||
		apierrors.IsServiceUnavailable(err) ||
		apierrors.IsInternalError(err) ||
		apierrors.IsTimeout(err)
}
