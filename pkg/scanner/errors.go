// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package scanner

import (
	"context"
	"errors"
	"fmt"
	"net"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	utilnet "k8s.io/apimachinery/pkg/util/net"

	"github.com/gardener/kube-scanner/pkg/report"
)

// ScanError is returned when the namespaces of the cluster could not be listed.
type ScanError struct {
	Reason report.FailureReason
	Err    error
}

// Error implements error.
func (e *ScanError) Error() string {
	return fmt.Sprintf("failed to list namespaces (%s): %s", e.Reason, e.Err)
}

// Unwrap returns the underlying error.
func (e *ScanError) Unwrap() error {
	return e.Err
}

// ClassifyError maps a listing error to a report.FailureReason.
func ClassifyError(err error) report.FailureReason {
	var opErr *net.OpError
	switch {
	case apierrors.IsForbidden(err):
		return report.ReasonForbidden
	case apierrors.IsUnauthorized(err):
		return report.ReasonUnauthorized
	case apierrors.IsNotFound(err):
		return report.ReasonNotFound
	case errors.Is(err, context.DeadlineExceeded), apierrors.IsTimeout(err), apierrors.IsServerTimeout(err):
		return report.ReasonTimeout
	case apierrors.IsServiceUnavailable(err), apierrors.IsTooManyRequests(err),
		utilnet.IsConnectionRefused(err), utilnet.IsConnectionReset(err), utilnet.IsProbableEOF(err),
		errors.As(err, &opErr):
		return report.ReasonUnavailable
	default:
		return report.ReasonError
	}
}
