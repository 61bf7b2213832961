// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package rules contains the workload level controls of the CIS Kubernetes Benchmark.
package rules

import (
	"github.com/gardener/kube-scanner/pkg/metadata"
)

func control(catalog *metadata.Catalog, id string) metadata.Control {
	if catalog == nil {
		catalog = metadata.Default()
	}
	return catalog.MustLookup(id)
}
