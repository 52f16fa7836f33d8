// Package sandbox isolates guest code execution. Run executes source under
// tracing inside the current process and is only ever called from the worker
// child (RunWorker); Supervisor is the host-side entry point that spawns one
// worker process per run, enforces the wall-clock budget with a forced kill,
// and normalizes every outcome into a single trace result.
package sandbox
