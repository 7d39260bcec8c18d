// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package telemetry implements structured logging, metrics and tracing
package telemetry

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger returns a logger writing to w at the given level ("debug", "info", "warn", "error", "none")
//  Writes are serialised; ranks running as goroutines may share the logger.
//  pretty selects the human readable console writer
func NewLogger(w io.Writer, level string, pretty bool) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	w = zerolog.SyncWriter(w)
	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).With().Timestamp().Logger().Level(ParseLevel(level))
}

// ParseLevel converts a verbosity name into a zerolog level
//  The verbosity names of input files ("low", "medium", "high", "extreme") are also accepted.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug", "high", "extreme":
		return zerolog.DebugLevel
	case "info", "medium", "":
		return zerolog.InfoLevel
	case "warn", "warning", "low":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "none", "off":
		return zerolog.Disabled
	}
	return zerolog.InfoLevel
}

// Component returns a child logger tagged with the name of a component; e.g. a process kernel
func Component(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

// Nop returns a logger that discards everything
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
