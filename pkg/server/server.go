// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"k8s.io/component-base/version"

	"github.com/gardener/kube-scanner/pkg/config"
	"github.com/gardener/kube-scanner/pkg/metadata"
	"github.com/gardener/kube-scanner/pkg/provider/cluster"
	"github.com/gardener/kube-scanner/pkg/report"
	"github.com/gardener/kube-scanner/pkg/scanner"
)

const (
	// ServiceName is the name reported by the status endpoints.
	ServiceName = "kube-scanner"

	shutdownTimeout = 10 * time.Second
)

// ScanRunner runs a single scan.
type ScanRunner interface {
	RunScan(ctx context.Context) (*report.ScanReport, error)
}

// ConnectivityChecker checks the connection to the scanned cluster.
type ConnectivityChecker interface {
	CheckConnectivity(ctx context.Context) (cluster.ServerInfo, error)
}

// Server exposes scans and the benchmark catalog over HTTP.
type Server struct {
	address      string
	scanner      ScanRunner
	connectivity ConnectivityChecker
	catalog      *metadata.Catalog
	metrics      *Metrics
	logger       *slog.Logger
}

// ErrorResponse is the body of all failed requests.
type ErrorResponse struct {
	Error     string `json:"error"`
	Detail    string `json:"detail"`
	Timestamp string `json:"timestamp"`
}

// StatusResponse is the body of the status endpoints.
type StatusResponse struct {
	Status     string `json:"status"`
	Service    string `json:"service"`
	Version    string `json:"version"`
	Kubernetes string `json:"kubernetes,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

// New creates a new Server.
func New(scanRunner ScanRunner, connectivity ConnectivityChecker, options ...CreateOption) (*Server, error) {
	if scanRunner == nil {
		return nil, errors.New("scan runner is not set")
	}
	if connectivity == nil {
		return nil, errors.New("connectivity checker is not set")
	}

	s := &Server{
		address:      config.DefaultServerAddress,
		scanner:      scanRunner,
		connectivity: connectivity,
	}
	for _, o := range options {
		o(s)
	}

	if s.catalog == nil {
		s.catalog = metadata.Default()
	}
	if s.metrics == nil {
		s.metrics = NewMetrics()
	}
	if s.logger == nil {
		s.logger = slog.Default().With("component", "server")
	}
	return s, nil
}

// Handler returns the http handler serving all routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /scan", s.handleScan)
	mux.HandleFunc("GET /controls", s.handleControls)
	mux.HandleFunc("GET /controls/{id}", s.handleControl)
	mux.Handle("GET /metrics", s.metrics.Handler())
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, http.StatusNotFound, "Not found", fmt.Sprintf("no route for %s %s", r.Method, r.URL.Path))
	})
	return mux
}

// Run serves requests until the context is cancelled and then shuts the server down.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "address", s.address)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, StatusResponse{
		Status:  "healthy",
		Service: ServiceName,
		Version: version.Get().GitVersion,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	info, err := s.connectivity.CheckConnectivity(r.Context())
	if err != nil {
		s.logger.Warn("cluster connectivity check failed", "error", err)
		s.writeJSON(w, http.StatusServiceUnavailable, StatusResponse{
			Status:     "unhealthy",
			Service:    ServiceName,
			Version:    version.Get().GitVersion,
			Kubernetes: "disconnected",
			Reason:     fmt.Sprintf("Kubernetes connectivity error: %s", err),
		})
		return
	}

	s.writeJSON(w, http.StatusOK, StatusResponse{
		Status:     "healthy",
		Service:    ServiceName,
		Version:    version.Get().GitVersion,
		Kubernetes: fmt.Sprintf("connected (%s)", info.GitVersion),
	})
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	scanReport, err := s.scanner.RunScan(r.Context())
	s.metrics.recordScan(scanReport, err, time.Since(start))

	if err != nil {
		status, title := statusForScanError(err)
		if scanReport != nil && scanReport.Cancelled {
			s.logger.Warn("scan cancelled", "status", status, "namespacesScanned", scanReport.Summary.NamespacesScanned, "error", err)
			s.writeJSON(w, status, scanReport)
			return
		}
		s.logger.Error("scan failed", "status", status, "error", err)
		s.writeError(w, status, title, err.Error())
		return
	}

	s.logger.Info("scan completed",
		"latestTagIssues", scanReport.Summary.LatestTagIssues,
		"rootUserIssues", scanReport.Summary.RootUserIssues,
		"totalIssues", scanReport.Summary.TotalIssues,
	)
	s.writeJSON(w, http.StatusOK, scanReport)
}

func (s *Server) handleControls(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, struct {
		Benchmark metadata.Benchmark `json:"benchmark"`
		Controls  []metadata.Control `json:"controls"`
	}{
		Benchmark: s.catalog.Benchmark(),
		Controls:  s.catalog.Controls(),
	})
}

func (s *Server) handleControl(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	control, ok := s.catalog.Lookup(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, "Control not found", fmt.Sprintf("control %s is not part of %s %s", id, s.catalog.Benchmark().Name, s.catalog.Benchmark().Version))
		return
	}
	s.writeJSON(w, http.StatusOK, control)
}

// statusForScanError maps a failed scan to a http status code and an error title.
func statusForScanError(err error) (int, string) {
	var scanErr *scanner.ScanError
	if errors.As(err, &scanErr) {
		switch scanErr.Reason {
		case report.ReasonForbidden:
			return http.StatusForbidden, "Insufficient permissions to scan cluster"
		case report.ReasonUnauthorized:
			return http.StatusUnauthorized, "Authentication failed"
		case report.ReasonTimeout, report.ReasonUnavailable:
			return http.StatusServiceUnavailable, "Cluster connectivity error"
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable, "Scan cancelled"
	}
	return http.StatusInternalServerError, "Internal scan error"
}

func (s *Server) writeError(w http.ResponseWriter, status int, title, detail string) {
	s.writeJSON(w, status, ErrorResponse{
		Error:     title,
		Detail:    detail,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		s.logger.Error("failed to marshal response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		s.logger.Warn("failed to write response", "error", err)
	}
}
