/*
Package monitoring provides Prometheus metrics collection.

# Overview

This package tracks HTTP traffic and guest code runs: request latency,
throughput and sizes on the HTTP side, and per-run outcome, duration, step
counts and in-flight occupancy on the run side.

# Usage

	// Create metrics collector
	metrics := monitoring.NewMetrics()

	// Add middleware to Gin router
	router.Use(monitoring.Middleware(metrics))

	// Record a finished run
	metrics.RecordRun(monitoring.OutcomeOK, elapsed, steps)

# Metrics Endpoint

Expose metrics via the standard Prometheus endpoint:

	import "github.com/prometheus/client_golang/prometheus/promhttp"
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
*/
package monitoring
