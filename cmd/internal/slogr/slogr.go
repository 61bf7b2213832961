// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package slogr

import (
	"context"
	"log/slog"

	"github.com/go-logr/logr"
)

var (
	_ logr.LogSink = &Slogr{}
)

// Slogr is a wrapper around [slog.Logger] to implement the [logr.LogSink] interface.
// logr verbosity levels are mapped below [slog.LevelInfo], e.g. V(4) is [slog.LevelDebug].
type Slogr struct {
	logger *slog.Logger
	name   string
}

// NewLogr creates a new [logr.Logger] from a [slog.Logger].
func NewLogr(logger *slog.Logger) logr.Logger {
	return logr.New(&Slogr{logger: logger})
}

// Enabled implements the [logr.LogSink] interface.
func (s *Slogr) Enabled(level int) bool {
	return s.logger.Enabled(context.Background(), toSlogLevel(level))
}

// Error logs an error message.
func (s *Slogr) Error(err error, msg string, keysAndValues ...any) {
	s.logger.Error(msg, append([]any{"error", err}, keysAndValues...)...)
}

// Info logs a message at the slog level matching the logr verbosity.
func (s *Slogr) Info(level int, msg string, keysAndValues ...any) {
	s.logger.Log(context.Background(), toSlogLevel(level), msg, keysAndValues...)
}

// Init implements the [logr.LogSink] interface.
func (s *Slogr) Init(_ logr.RuntimeInfo) {
}

// WithName returns a new [logr.LogSink] with the name appended to the logger name.
func (s *Slogr) WithName(name string) logr.LogSink {
	fullName := name
	if len(s.name) > 0 {
		fullName = s.name + "." + name
	}
	return &Slogr{
		logger: s.logger.With("logger", fullName),
		name:   fullName,
	}
}

// WithValues returns a new [logr.LogSink] with the specified key-value pairs.
func (s *Slogr) WithValues(keysAndValues ...any) logr.LogSink {
	return &Slogr{
		logger: s.logger.With(keysAndValues...),
		name:   s.name,
	}
}

func toSlogLevel(level int) slog.Level {
	return slog.LevelInfo - slog.Level(level)
}
