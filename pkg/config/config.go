// SPDX-FileCopyrightText: 2023 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"time"
)

// ScannerConfig is used to represent the scanner configuration file.
type ScannerConfig struct {
	// Provider describes how to connect to the scanned cluster.
	Provider ProviderConfig `yaml:"provider"`
	// Scan describes options related to the scan itself.
	Scan ScanConfig `yaml:"scan"`
	// Output describes options related to the scanner's output configuration.
	Output *OutputConfig `yaml:"output,omitempty"`
	// Server describes options related to the HTTP server.
	Server *ServerConfig `yaml:"server,omitempty"`
}

// ProviderConfig is used to configure the connection to a cluster.
type ProviderConfig struct {
	// KubeconfigPath is the path to a kubeconfig file.
	// If empty the in-cluster configuration and the KUBECONFIG environment variable are used.
	KubeconfigPath string `yaml:"kubeconfigPath,omitempty"`
	// QPS is the maximum queries per second towards the API server.
	QPS float32 `yaml:"qps,omitempty"`
	// Burst is the maximum burst towards the API server.
	Burst int `yaml:"burst,omitempty"`
}

// ScanConfig is used to configure a scan.
type ScanConfig struct {
	// Workers is the number of namespaces evaluated concurrently.
	Workers int `yaml:"workers,omitempty"`
	// ListTimeout is the timeout of a single listing call.
	ListTimeout time.Duration `yaml:"listTimeout,omitempty"`
	// PageLimit is the number of objects retrieved per listing page.
	PageLimit int64 `yaml:"pageLimit,omitempty"`
	// MaxRetries is the maximum number of attempts of a listing call that failed with a transient error.
	MaxRetries int `yaml:"maxRetries,omitempty"`
	// Namespaces selects the scanned namespaces.
	Namespaces NamespacesConfig `yaml:"namespaces,omitempty"`
	// Rulesets represents ruleset specific configurations.
	// All known rulesets in their latest version are used when empty.
	Rulesets []RulesetConfig `yaml:"rulesets,omitempty"`
}

// NamespacesConfig selects the scanned namespaces.
type NamespacesConfig struct {
	// LabelSelector restricts the scan to matching namespaces.
	LabelSelector string `yaml:"labelSelector,omitempty"`
	// Exclude lists namespaces that are never scanned.
	Exclude []string `yaml:"exclude,omitempty"`
}

// RulesetConfig is used to describe and configure a ruleset.
type RulesetConfig struct {
	// ID is the unique identifier of a ruleset.
	ID string `yaml:"id"`
	// Name is the user friendly name of a ruleset.
	Name string `yaml:"name,omitempty"`
	// Version is the ruleset's version.
	Version string `yaml:"version,omitempty"`
	// RuleOptions is used to provide per rule configurations.
	RuleOptions []RuleOptionsConfig `yaml:"ruleOptions,omitempty"`
	// Args are ruleset specific arguments that each ruleset should be able to parse.
	Args any `yaml:"args,omitempty"`
}

// RuleOptionsConfig represents per rule options.
type RuleOptionsConfig struct {
	// RuleID is the id of the rule.
	RuleID string `yaml:"ruleID"`
	// Skip is the rule's skip configuration.
	Skip *RuleOptionSkipConfig `yaml:"skip,omitempty"`
	// Args are rule specific arguments that each rule should be able to parse.
	Args any `yaml:"args,omitempty"`
}

// RuleOptionSkipConfig represents options allowing a rule skip.
type RuleOptionSkipConfig struct {
	// Enabled determines if a rule should be skipped or not.
	Enabled bool `yaml:"enabled"`
	// Justification represents the reason why a rule is skipped.
	Justification string `yaml:"justification"`
}

// OutputConfig represents output configurations.
type OutputConfig struct {
	// Path is the location which will be used to write a report.
	// The report is written to stdout when empty.
	Path string `yaml:"path,omitempty"`
	// Format is the report format, one of json or html.
	Format string `yaml:"format,omitempty"`
	// MinSeverity is the minimal severity that will be reported.
	MinSeverity string `yaml:"minSeverity,omitempty"`
}

// ServerConfig represents HTTP server configurations.
type ServerConfig struct {
	// Address is the address the server listens on.
	Address string `yaml:"address,omitempty"`
}
