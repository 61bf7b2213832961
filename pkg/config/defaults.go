// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultWorkers is the default number of concurrently scanned namespaces.
	DefaultWorkers = 5
	// DefaultListTimeout is the default timeout of a single listing call.
	DefaultListTimeout = 30 * time.Second
	// DefaultPageLimit is the default listing page size.
	DefaultPageLimit int64 = 300
	// DefaultMaxRetries is the default number of listing attempts.
	DefaultMaxRetries = 1
	// DefaultServerAddress is the default address of the HTTP server.
	DefaultServerAddress = ":5000"
	// FormatJSON writes reports as JSON.
	FormatJSON = "json"
	// FormatHTML writes reports as HTML.
	FormatHTML = "html"
)

// SetDefaults sets default values for unset fields.
func (c *ScannerConfig) SetDefaults() {
	if c.Scan.Workers == 0 {
		c.Scan.Workers = DefaultWorkers
	}
	if c.Scan.ListTimeout == 0 {
		c.Scan.ListTimeout = DefaultListTimeout
	}
	if c.Scan.PageLimit == 0 {
		c.Scan.PageLimit = DefaultPageLimit
	}
	if c.Scan.MaxRetries == 0 {
		c.Scan.MaxRetries = DefaultMaxRetries
	}
	if c.Output == nil {
		c.Output = &OutputConfig{}
	}
	if len(c.Output.Format) == 0 {
		c.Output.Format = FormatJSON
	}
	if c.Server == nil {
		c.Server = &ServerConfig{}
	}
	if len(c.Server.Address) == 0 {
		c.Server.Address = DefaultServerAddress
	}
}

// ReadFromFile reads a scanner configuration file.
// A missing path results in an empty configuration.
// Defaults are applied to the returned configuration.
func ReadFromFile(filePath string) (*ScannerConfig, error) {
	c := &ScannerConfig{}
	if len(filePath) > 0 {
		data, err := os.ReadFile(filepath.Clean(filePath))
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", filePath, err)
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file %s: %w", filePath, err)
		}
	}
	c.SetDefaults()
	return c, nil
}
