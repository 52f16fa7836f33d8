/*
Package tracing provides lightweight request tracing.

# Overview

This package implements minimal span-based tracing for HTTP requests. It
follows OpenTelemetry concepts but with a small implementation tailored to a
single service: spans are collected on a buffered channel and emitted through
the structured logger.

# Usage

	// Create tracer
	tracer := tracing.New("backend", logger)

	// HTTP middleware
	router.Use(tracing.HTTPMiddleware(tracer))

	// Manual span creation
	span, ctx := tracer.StartSpan(ctx, "operation")
	defer func() {
		span.Finish()
		tracer.Submit(span)
	}()

	span.SetTag("key", "value")

# Trace Format

Traces use standard HTTP headers for propagation:
- X-Trace-ID: Unique identifier for the request flow
- X-Span-ID: Identifier for the current operation
*/
package tracing
