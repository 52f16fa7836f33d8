package sandbox

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stepscope/backend/internal/infrastructure/logging"
	"github.com/stepscope/backend/internal/infrastructure/monitoring"
	"github.com/stepscope/backend/internal/infrastructure/resilience"
	"github.com/stepscope/backend/internal/infrastructure/tracing"
	"github.com/stepscope/backend/internal/trace"
)

// WorkerFlag switches the binary into worker mode when passed as an argument.
const WorkerFlag = "-worker"

// Supervisor owns worker process lifecycles. One run is one child process:
// guest code never executes inside the host. Concurrency is bounded by a
// slot channel so a burst of requests cannot fork-bomb the host.
type Supervisor struct {
	cfg     Config
	logger  *logging.Logger
	metrics *monitoring.Metrics
	slots   chan struct{}
	breaker *resilience.Breaker

	// newCommand builds the worker command; tests substitute a stub.
	newCommand func(ctx context.Context) (*exec.Cmd, error)
}

// NewSupervisor creates a supervisor that re-execs the current binary in
// worker mode for each run.
func NewSupervisor(cfg Config, logger *logging.Logger) *Supervisor {
	s := &Supervisor{
		cfg:    cfg,
		logger: logger,
		slots:  make(chan struct{}, cfg.MaxConcurrent),
	}
	s.breaker = resilience.New("worker-spawn", resilience.Settings{
		Threshold: 5,
		Cooldown:  30 * time.Second,
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Warn("breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	s.newCommand = func(ctx context.Context) (*exec.Cmd, error) {
		exe, err := os.Executable()
		if err != nil {
			return nil, err
		}
		return exec.CommandContext(ctx, exe, WorkerFlag), nil
	}
	return s
}

// WithMetrics attaches run metrics.
func (s *Supervisor) WithMetrics(m *monitoring.Metrics) *Supervisor {
	s.metrics = m
	return s
}

// Stats reports current run occupancy.
type Stats struct {
	InFlight int `json:"in_flight"`
	Capacity int `json:"capacity"`
}

func (s *Supervisor) Stats() Stats {
	return Stats{InFlight: len(s.slots), Capacity: cap(s.slots)}
}

// Execute runs guest code in a fresh worker process and always returns a
// well-formed trace: success, guest error, truncation, timeout or silent
// child death all normalize into the same shape.
func (s *Supervisor) Execute(ctx context.Context, code string) *trace.Trace {
	select {
	case s.slots <- struct{}{}:
		defer func() { <-s.slots }()
	case <-ctx.Done():
		return timeoutTrace()
	}

	runID := uuid.New().String()
	start := time.Now()
	if s.metrics != nil {
		s.metrics.RunStarted()
		defer s.metrics.RunFinished()
	}

	if err := s.breaker.Allow(); err != nil {
		s.logger.Warn("run refused, worker spawning is unhealthy", zap.String("run_id", runID))
		return s.finish(ctx, runID, start, trace.Failure(noResultMessage))
	}

	runCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	cmd, err := s.newCommand(runCtx)
	if err != nil {
		s.logger.Error("failed to build worker command", zap.String("run_id", runID), zap.Error(err))
		s.breaker.Failure()
		return s.finish(ctx, runID, start, trace.Failure(noResultMessage))
	}
	cmd.Stdin = strings.NewReader(code)
	var out bytes.Buffer
	cmd.Stdout = &out

	runErr := cmd.Run() // CommandContext kills and reaps the child on expiry

	switch runCtx.Err() {
	case context.DeadlineExceeded:
		// a slow guest is a healthy worker
		s.breaker.Success()
		s.logger.Warn("worker killed on timeout",
			zap.String("run_id", runID),
			zap.Duration("budget", s.cfg.Timeout),
		)
		return s.finish(ctx, runID, start, timeoutTrace())
	case context.Canceled:
		// we killed the child on a client abort; that says nothing about
		// worker health, so the breaker sees neither success nor failure
		s.logger.Info("run canceled by caller", zap.String("run_id", runID))
		return s.finish(ctx, runID, start, trace.Failure(noResultMessage))
	}
	if runErr != nil {
		s.logger.Warn("worker exited abnormally", zap.String("run_id", runID), zap.Error(runErr))
	}

	result := trace.New()
	if out.Len() == 0 {
		s.breaker.Failure()
		return s.finish(ctx, runID, start, trace.Failure(noResultMessage))
	}
	if err := sonic.Unmarshal(out.Bytes(), result); err != nil {
		s.logger.Error("worker produced undecodable output",
			zap.String("run_id", runID),
			zap.Int("bytes", out.Len()),
			zap.Error(err),
		)
		s.breaker.Failure()
		return s.finish(ctx, runID, start, trace.Failure(noResultMessage))
	}
	s.breaker.Success()
	if result.Steps == nil {
		result.Steps = []trace.Step{}
	}
	return s.finish(ctx, runID, start, result)
}

func (s *Supervisor) finish(ctx context.Context, runID string, start time.Time, t *trace.Trace) *trace.Trace {
	elapsed := time.Since(start)
	outcome := outcomeFor(t)
	if s.metrics != nil {
		s.metrics.RecordRun(outcome, elapsed, len(t.Steps))
	}
	fields := []zap.Field{
		zap.String("run_id", runID),
		zap.String("outcome", outcome),
		zap.Int("steps", len(t.Steps)),
		zap.Duration("elapsed", elapsed),
	}
	if traceID := tracing.GetTraceID(ctx); traceID != "" {
		fields = append(fields, zap.String("trace_id", string(traceID)))
	}
	s.logger.Info("run finished", fields...)
	return t
}

func outcomeFor(t *trace.Trace) string {
	switch {
	case t.TimedOut:
		return monitoring.OutcomeTimeout
	case t.Truncated:
		return monitoring.OutcomeTruncated
	case t.Error != nil && *t.Error == noResultMessage:
		return monitoring.OutcomeNoResult
	case t.Error != nil:
		return monitoring.OutcomeError
	default:
		return monitoring.OutcomeOK
	}
}

func timeoutTrace() *trace.Trace {
	t := trace.Failure(timeoutMessage)
	t.TimedOut = true
	return t
}
