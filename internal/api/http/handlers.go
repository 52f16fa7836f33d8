package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stepscope/backend/internal/infrastructure/monitoring"
	"github.com/stepscope/backend/internal/sandbox"
	"github.com/stepscope/backend/internal/trace"
)

// Executor runs guest code to a terminal trace; satisfied by the sandbox
// supervisor, stubbed in tests.
type Executor interface {
	Execute(ctx context.Context, code string) *trace.Trace
	Stats() sandbox.Stats
}

// Handlers holds HTTP endpoint handlers
type Handlers struct {
	executor     Executor
	metrics      *monitoring.Metrics
	maxCodeBytes int
	startTime    time.Time
}

// NewHandlers creates the handler set
func NewHandlers(executor Executor, maxCodeBytes int) *Handlers {
	return &Handlers{
		executor:     executor,
		maxCodeBytes: maxCodeBytes,
		startTime:    time.Now(),
	}
}

// WithMetrics enables the JSON stats endpoint.
func (h *Handlers) WithMetrics(m *monitoring.Metrics) *Handlers {
	h.metrics = m
	return h
}

// runRequest is the body of POST /api/run. Code is a pointer so a missing
// field is distinguishable from an empty program.
type runRequest struct {
	Code *string `json:"code"`
}

// RunCode executes submitted guest code and responds with its trace.
// Every response, including rejections, uses the same result shape.
func (h *Handlers) RunCode(c *gin.Context) {
	var req runRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Code == nil {
		c.JSON(http.StatusBadRequest, trace.Failure("Invalid code payload"))
		return
	}
	if h.maxCodeBytes > 0 && len(*req.Code) > h.maxCodeBytes {
		c.JSON(http.StatusBadRequest, trace.Failure("Code too large"))
		return
	}

	result := h.executor.Execute(c.Request.Context(), *req.Code)
	c.JSON(http.StatusOK, result)
}

// Stats reports aggregate request and run counters as JSON, a lightweight
// alternative to scraping /metrics.
func (h *Handlers) Stats(c *gin.Context) {
	if h.metrics == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "stats not enabled"})
		return
	}
	snap := h.metrics.Snapshot()
	avgMs := 0.0
	if snap.RequestCount > 0 {
		avgMs = snap.TotalDuration / float64(snap.RequestCount) * 1000
	}
	c.JSON(http.StatusOK, gin.H{
		"requests": gin.H{
			"total":           snap.TotalRequests,
			"errors":          snap.TotalErrors,
			"avg_duration_ms": avgMs,
		},
		"runs": gin.H{
			"total":    snap.TotalRuns,
			"timeouts": snap.TotalTimeouts,
		},
		"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
	})
}

// Health reports service liveness and run occupancy
func (h *Handlers) Health(c *gin.Context) {
	stats := h.executor.Stats()
	c.JSON(http.StatusOK, gin.H{
		"status":         "healthy",
		"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
		"runs": gin.H{
			"in_flight": stats.InFlight,
			"capacity":  stats.Capacity,
		},
	})
}
