// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"log"

	controllerruntime "sigs.k8s.io/controller-runtime"

	"github.com/gardener/kube-scanner/cmd/kube-scanner/app"
)

func main() {
	cmd := app.NewKubeScannerCommand()

	if err := cmd.ExecuteContext(controllerruntime.SetupSignalHandler()); err != nil {
		log.Fatal(err)
	}
}
