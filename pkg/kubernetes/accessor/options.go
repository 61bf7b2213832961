// SPDX-FileCopyrightText: 2024 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package accessor

import (
	"log/slog"
	"time"

	"k8s.io/apimachinery/pkg/labels"
)

// AccessorOption is a function that acts on an [Accessor]
// and is used to construct such objects.
type AccessorOption func(*Accessor)

// WithPageLimit sets the PageLimit of an [Accessor].
func WithPageLimit(limit int64) AccessorOption {
	return func(a *Accessor) {
		if limit > 0 {
			a.PageLimit = limit
		}
	}
}

// WithNamespaceSelector sets the NamespaceSelector of an [Accessor].
func WithNamespaceSelector(selector labels.Selector) AccessorOption {
	return func(a *Accessor) {
		if selector != nil {
			a.NamespaceSelector = selector
		}
	}
}

// CreateOption is a function that acts on a [RetryableAccessor]
// and is used to construct such objects.
type CreateOption func(*RetryableAccessor)

// WithBaseLister sets the BaseLister of a [RetryableAccessor].
func WithBaseLister(baseLister Lister) CreateOption {
	return func(ra *RetryableAccessor) {
		ra.BaseLister = baseLister
	}
}

// WithMaxRetries sets the MaxRetries of a [RetryableAccessor].
func WithMaxRetries(maxRetries int) CreateOption {
	return func(ra *RetryableAccessor) {
		if maxRetries < 0 {
			panic("maxRetries should not be a negative number")
		}
		ra.MaxRetries = maxRetries
	}
}

// WithBackoff sets the wait time between two attempts of a [RetryableAccessor].
func WithBackoff(backoff time.Duration) CreateOption {
	return func(ra *RetryableAccessor) {
		ra.Backoff = backoff
	}
}

// WithRetryCondition sets the RetryCondition of a [RetryableAccessor].
func WithRetryCondition(retryCondition func(err error) bool) CreateOption {
	return func(ra *RetryableAccessor) {
		ra.RetryCondition = retryCondition
	}
}

// WithLogger the logger of a [RetryableAccessor].
func WithLogger(logger *slog.Logger) CreateOption {
	return func(ra *RetryableAccessor) {
		ra.Logger = logger
	}
}
