// Package main is the entry point for the step-trace execution service.
//
// The same binary plays two roles:
//
//	server (default)  HTTP API + static trace viewer
//	-worker           single-run sandbox child: guest code in on stdin,
//	                  JSON trace out on stdout
//
// The supervisor re-execs this binary with -worker for every run, so guest
// code never executes inside the serving process.
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//
// Usage:
//
//	# Serve the API
//	./server -port 8000
//
//	# Run one program as a worker (what the supervisor does internally)
//	echo 'print(1 + 1)' | ./server -worker
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
