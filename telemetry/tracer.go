// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package telemetry

import (
	"context"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// instrumentation name of all spans
const tracerName = "github.com/a-hamm/ats"

// Tracer returns the tracer used by the engine; a no-op tracer unless SetupTracing was called
func Tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// SetupTracing installs a tracer provider exporting spans as JSON to w
//  The returned function flushes and stops the provider.
func SetupTracing(w io.Writer) (shutdown func(context.Context) error, err error) {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	otel.SetTracerProvider(provider)
	return provider.Shutdown, nil
}

// StartSpan starts a span named name with time attributes
func StartSpan(ctx context.Context, name string, tOld, tNew float64) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name, trace.WithAttributes(
		attribute.Float64("t_old", tOld),
		attribute.Float64("t_new", tNew),
	))
}

// EndSpan records err (if any) and ends the span
func EndSpan(span trace.Span, failed bool, err error) {
	span.SetAttributes(attribute.Bool("failed", failed))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
