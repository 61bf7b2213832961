// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"k8s.io/apimachinery/pkg/util/validation/field"
	ctrllog "sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/gardener/kube-scanner/cmd/internal/slogr"
	"github.com/gardener/kube-scanner/pkg/config"
	"github.com/gardener/kube-scanner/pkg/metadata"
	"github.com/gardener/kube-scanner/pkg/provider/cluster"
	"github.com/gardener/kube-scanner/pkg/report"
	"github.com/gardener/kube-scanner/pkg/ruleset"
	"github.com/gardener/kube-scanner/pkg/ruleset/builder"
	"github.com/gardener/kube-scanner/pkg/scanner"
	"github.com/gardener/kube-scanner/pkg/server"
)

// NewKubeScannerCommand creates a new command that is used to start the kube-scanner.
func NewKubeScannerCommand() *cobra.Command {
	var logLevel string

	rootCmd := &cobra.Command{
		Use:   "kube-scanner",
		Short: "kube-scanner checks Kubernetes workloads for security anti-patterns and CIS benchmark violations.",
		Long: `kube-scanner lists the namespaces, pods, network policies and service accounts of a cluster
and evaluates them against common security anti-patterns and a subset of the CIS Kubernetes Benchmark.
It can run a single scan or serve scans over HTTP.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return setupLogger(os.Stderr, logLevel)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level, one of debug, info, warn or error.")

	var scanOpts scanOptions
	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan the cluster once.",
		Long:  `Scan evaluates all selected namespaces of the cluster and writes a report in json or html format.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScan(cmd.Context(), cmd, scanOpts)
		},
	}
	addScanFlags(scanCmd, &scanOpts)
	rootCmd.AddCommand(scanCmd)

	var serveOpts serveOptions
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve scans over HTTP.",
		Long:  `Serve starts an HTTP server which runs a scan on every request to /scan and exposes benchmark metadata and metrics.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cmd, serveOpts)
		},
	}
	addServeFlags(serveCmd, &serveOpts)
	rootCmd.AddCommand(serveCmd)

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show information about the supported benchmarks.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	var showOpts showOptions
	showControlsCmd := &cobra.Command{
		Use:   "controls [id]",
		Short: "Show the benchmark controls.",
		Long:  `Show the controls of a supported benchmark version in json format. A single control is shown when an id is provided.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return showControls(cmd.OutOrStdout(), args, showOpts)
		},
	}
	showControlsCmd.Flags().StringVar(&showOpts.benchmarkVersion, "benchmark-version", "", "Semantic version constraint of the benchmark, e.g. \"~1.9\". The latest supported version is used when empty.")
	showCmd.AddCommand(showControlsCmd)

	showBenchmarkCmd := &cobra.Command{
		Use:   "benchmark",
		Short: "Show the supported benchmark versions.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeJSON(cmd.OutOrStdout(), metadata.Detailed())
		},
	}
	showCmd.AddCommand(showBenchmarkCmd)
	rootCmd.AddCommand(showCmd)

	var reportOpts reportOptions
	reportCmd := &cobra.Command{
		Use:   "report [report] | --diff [old-report] [new-report]",
		Short: "Report converts report files.",
		Long:  `Report converts a json report into html, or creates the difference between two json reports.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd.OutOrStdout(), args, reportOpts)
		},
	}
	addReportFlags(reportCmd, &reportOpts)
	rootCmd.AddCommand(reportCmd)

	return rootCmd
}

type scanOptions struct {
	configFile        string
	kubeconfig        string
	outputPath        string
	format            string
	minSeverity       string
	workers           int
	namespaceSelector string
	excludeNamespaces []string
}

type serveOptions struct {
	configFile string
	kubeconfig string
	address    string
}

type showOptions struct {
	benchmarkVersion string
}

type reportOptions struct {
	output string
	diff   bool
}

func addScanFlags(cmd *cobra.Command, opts *scanOptions) {
	cmd.Flags().StringVar(&opts.configFile, "config", "", "Configuration file of the scanner. Defaults are used when empty.")
	cmd.Flags().StringVar(&opts.kubeconfig, "kubeconfig", "", "Path to the kubeconfig of the scanned cluster. Overrides provider.kubeconfigPath.")
	cmd.Flags().StringVar(&opts.outputPath, "output-path", "", "File the report is written to. The report is written to stdout when empty. Overrides output.path.")
	cmd.Flags().StringVar(&opts.format, "format", "", "Report format, one of json or html. Overrides output.format.")
	cmd.Flags().StringVar(&opts.minSeverity, "min-severity", "", "Minimal severity of reported findings. Overrides output.minSeverity.")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "Number of namespaces evaluated concurrently. Overrides scan.workers.")
	cmd.Flags().StringVar(&opts.namespaceSelector, "namespace-selector", "", "Label selector of the scanned namespaces. Overrides scan.namespaces.labelSelector.")
	cmd.Flags().StringSliceVar(&opts.excludeNamespaces, "exclude-namespace", nil, "Namespaces which are not scanned. Appended to scan.namespaces.exclude.")
}

func addServeFlags(cmd *cobra.Command, opts *serveOptions) {
	cmd.Flags().StringVar(&opts.configFile, "config", "", "Configuration file of the scanner. Defaults are used when empty.")
	cmd.Flags().StringVar(&opts.kubeconfig, "kubeconfig", "", "Path to the kubeconfig of the scanned cluster. Overrides provider.kubeconfigPath.")
	cmd.Flags().StringVar(&opts.address, "address", "", "Address the server listens on. Overrides server.address.")
}

func addReportFlags(cmd *cobra.Command, opts *reportOptions) {
	cmd.Flags().StringVar(&opts.output, "output", "html", "Output type, one of html or json.")
	cmd.Flags().BoolVar(&opts.diff, "diff", false, "Create the difference between an old and a new report.")
}

func setupLogger(w io.Writer, level string) error {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid log level %s: %w", level, err)
	}

	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: l}))
	slog.SetDefault(logger)
	ctrllog.SetLogger(slogr.NewLogr(logger))
	return nil
}

func runScan(ctx context.Context, cmd *cobra.Command, opts scanOptions) error {
	scannerConfig, err := config.ReadFromFile(opts.configFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("kubeconfig") {
		scannerConfig.Provider.KubeconfigPath = opts.kubeconfig
	}
	if flags.Changed("output-path") {
		scannerConfig.Output.Path = opts.outputPath
	}
	if flags.Changed("format") {
		scannerConfig.Output.Format = opts.format
	}
	if flags.Changed("min-severity") {
		scannerConfig.Output.MinSeverity = opts.minSeverity
	}
	if flags.Changed("workers") {
		scannerConfig.Scan.Workers = opts.workers
	}
	if flags.Changed("namespace-selector") {
		scannerConfig.Scan.Namespaces.LabelSelector = opts.namespaceSelector
	}
	scannerConfig.Scan.Namespaces.Exclude = append(scannerConfig.Scan.Namespaces.Exclude, opts.excludeNamespaces...)

	if err := validateConfig(scannerConfig); err != nil {
		return err
	}

	s, p, _, err := newScanner(scannerConfig)
	if err != nil {
		return err
	}

	info, err := p.CheckConnectivity(ctx)
	if err != nil {
		return err
	}
	slog.Info("connected to cluster", "version", info.GitVersion, "platform", info.Platform)

	rep, scanErr := s.RunScan(ctx)
	if rep == nil {
		return scanErr
	}
	slog.Info("scan finished", "scan_id", rep.ScanID, "namespaces_scanned", rep.Summary.NamespacesScanned, "total_issues", rep.Summary.TotalIssues, "cancelled", rep.Cancelled)

	return errors.Join(scanErr, writeReport(cmd.OutOrStdout(), rep, scannerConfig.Output))
}

func runServe(ctx context.Context, cmd *cobra.Command, opts serveOptions) error {
	scannerConfig, err := config.ReadFromFile(opts.configFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("kubeconfig") {
		scannerConfig.Provider.KubeconfigPath = opts.kubeconfig
	}
	if flags.Changed("address") {
		scannerConfig.Server.Address = opts.address
	}

	if err := validateConfig(scannerConfig); err != nil {
		return err
	}

	s, p, rulesets, err := newScanner(scannerConfig)
	if err != nil {
		return err
	}

	catalog, err := catalogOf(rulesets)
	if err != nil {
		return err
	}

	srv, err := server.New(s, p,
		server.WithAddress(scannerConfig.Server.Address),
		server.WithCatalog(catalog),
		server.WithLogger(slog.Default().With("component", "server")),
	)
	if err != nil {
		return err
	}

	return srv.Run(ctx)
}

func showControls(w io.Writer, args []string, opts showOptions) error {
	version, err := metadata.ResolveVersion(opts.benchmarkVersion)
	if err != nil {
		return err
	}

	catalog, err := metadata.New(version)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		return writeJSON(w, catalog.Controls())
	}

	control, ok := catalog.Lookup(args[0])
	if !ok {
		return fmt.Errorf("control %s is not part of benchmark version %s", args[0], version)
	}
	return writeJSON(w, control)
}

func runReport(w io.Writer, args []string, opts reportOptions) error {
	if opts.output != config.FormatHTML && opts.output != config.FormatJSON {
		return fmt.Errorf("unsupported output format: %s", opts.output)
	}

	var rep any
	if opts.diff {
		if len(args) != 2 {
			return errors.New("report --diff requires exactly two filepath arguments")
		}

		oldReport, err := report.ReadFromFile(args[0])
		if err != nil {
			return err
		}
		newReport, err := report.ReadFromFile(args[1])
		if err != nil {
			return err
		}

		difference, err := report.CreateDifference(*oldReport, *newReport)
		if err != nil {
			return fmt.Errorf("failed to create difference: %w", err)
		}
		rep = difference
	} else {
		if len(args) != 1 {
			return errors.New("report requires a single filepath argument")
		}

		scanReport, err := report.ReadFromFile(args[0])
		if err != nil {
			return err
		}
		rep = scanReport
	}

	if opts.output == config.FormatJSON {
		return writeJSON(w, rep)
	}

	htmlRenderer, err := report.NewHTMLRenderer()
	if err != nil {
		return fmt.Errorf("failed to initialize renderer: %w", err)
	}
	return htmlRenderer.Render(w, rep)
}

func validateConfig(c *config.ScannerConfig) error {
	if errs := c.Validate(); len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errs.ToAggregate())
	}
	return nil
}

func newScanner(c *config.ScannerConfig) (*scanner.Scanner, *cluster.Provider, []ruleset.Ruleset, error) {
	rulesets, err := builder.RulesetsFromConfig(c.Scan.Rulesets, field.NewPath("scan", "rulesets"))
	if err != nil {
		return nil, nil, nil, err
	}

	p, err := cluster.FromConfig(c.Provider, c.Scan)
	if err != nil {
		return nil, nil, nil, err
	}

	var reportOptions []report.ReportOption
	if len(c.Output.MinSeverity) > 0 {
		reportOptions = append(reportOptions, report.MinSeverity(c.Output.MinSeverity))
	}

	s, err := scanner.New(p.Accessor(), rulesets,
		scanner.WithNumberOfWorkers(c.Scan.Workers),
		scanner.WithListTimeout(c.Scan.ListTimeout),
		scanner.WithExcludedNamespaces(c.Scan.Namespaces.Exclude...),
		scanner.WithLogger(slog.Default().With("component", "scanner")),
		scanner.WithReportOptions(reportOptions...),
	)
	if err != nil {
		return nil, nil, nil, err
	}
	return s, p, rulesets, nil
}

// catalogOf returns the catalog of the benchmark version evaluated by the rulesets.
func catalogOf(rulesets []ruleset.Ruleset) (*metadata.Catalog, error) {
	for _, rs := range rulesets {
		if b, ok := rs.(ruleset.BenchmarkRuleset); ok {
			return metadata.New(b.Benchmark().Version)
		}
	}
	return metadata.Default(), nil
}

func writeReport(stdout io.Writer, rep *report.ScanReport, outputConfig *config.OutputConfig) error {
	if outputConfig.Format == config.FormatJSON && len(outputConfig.Path) > 0 {
		return rep.WriteToFile(outputConfig.Path)
	}

	w := stdout
	if len(outputConfig.Path) > 0 {
		f, err := os.OpenFile(filepath.Clean(outputConfig.Path), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to open output file %s: %w", outputConfig.Path, err)
		}
		defer f.Close()
		w = f
	}

	if outputConfig.Format == config.FormatHTML {
		htmlRenderer, err := report.NewHTMLRenderer()
		if err != nil {
			return fmt.Errorf("failed to initialize renderer: %w", err)
		}
		return htmlRenderer.Render(w, rep)
	}
	return writeJSON(w, rep)
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
