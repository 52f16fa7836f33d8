// Package http contains the gin endpoint handlers. The API surface is small:
// POST /api/run executes guest code through the sandbox supervisor and
// returns the trace result; GET /health reports liveness. Malformed run
// payloads are rejected with 400 but still carry the full result shape so
// clients never need a second error format.
package http
