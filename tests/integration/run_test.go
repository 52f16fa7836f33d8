//go:build integration
// +build integration

package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apihttp "github.com/stepscope/backend/internal/api/http"
	"github.com/stepscope/backend/internal/sandbox"
	"github.com/stepscope/backend/internal/trace"
)

// inProcessExecutor runs guest code through the real tracing pipeline but in
// the test process, so the suite does not depend on a prebuilt worker binary.
type inProcessExecutor struct {
	cfg sandbox.Config
}

func (e *inProcessExecutor) Execute(_ context.Context, code string) *trace.Trace {
	done := make(chan *trace.Trace, 1)
	go func() { done <- sandbox.Run(code, e.cfg) }()
	select {
	case t := <-done:
		return t
	case <-time.After(e.cfg.Timeout):
		t := trace.Failure("Execution timed out")
		t.TimedOut = true
		return t
	}
}

func (e *inProcessExecutor) Stats() sandbox.Stats {
	return sandbox.Stats{InFlight: 0, Capacity: e.cfg.MaxConcurrent}
}

func newTestServer(t *testing.T, cfg sandbox.Config) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h := apihttp.NewHandlers(&inProcessExecutor{cfg: cfg}, 65536)
	r := gin.New()
	r.POST("/api/run", h.RunCode)
	r.GET("/health", h.Health)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func runCode(t *testing.T, srv *httptest.Server, code string) (int, *trace.Trace) {
	t.Helper()
	body, err := json.Marshal(map[string]string{"code": code})
	require.NoError(t, err)

	resp, err := http.Post(srv.URL+"/api/run", "application/json", strings.NewReader(string(body)))
	require.NoError(t, err)
	defer resp.Body.Close()

	var result trace.Trace
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	return resp.StatusCode, &result
}

func TestRunEndpointIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	srv := newTestServer(t, sandbox.DefaultConfig())

	t.Run("simple program", func(t *testing.T) {
		status, result := runCode(t, srv, "x = 1\ny = x + 1\nprint(y)\n")
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "2\n", result.Stdout)
		assert.Nil(t, result.Error)
		assert.False(t, result.Truncated)
		assert.False(t, result.TimedOut)
		require.NotEmpty(t, result.Steps)
		assert.Equal(t, "call", result.Steps[0].Event)
		assert.Equal(t, "return", result.Steps[len(result.Steps)-1].Event)
	})

	t.Run("guest error yields partial trace", func(t *testing.T) {
		status, result := runCode(t, srv, "print('a')\nx = 1 / 0\n")
		require.Equal(t, http.StatusOK, status)
		require.NotNil(t, result.Error)
		assert.Contains(t, *result.Error, "ZeroDivisionError: division by zero")
		assert.Contains(t, *result.Error, `File "<user_code>", line 2`)
		assert.Equal(t, "a\n", result.Stdout)
		assert.NotEmpty(t, result.Steps)
		assert.False(t, result.Truncated)
	})

	t.Run("syntax error yields empty trace", func(t *testing.T) {
		status, result := runCode(t, srv, "def f(:\n")
		require.Equal(t, http.StatusOK, status)
		require.NotNil(t, result.Error)
		assert.Contains(t, *result.Error, "SyntaxError")
		assert.Empty(t, result.Steps)
	})

	t.Run("step ceiling truncates", func(t *testing.T) {
		cfg := sandbox.DefaultConfig()
		cfg.MaxSteps = 200
		small := newTestServer(t, cfg)

		status, result := runCode(t, small, "while True:\n    x = 1\n")
		require.Equal(t, http.StatusOK, status)
		assert.True(t, result.Truncated)
		require.NotNil(t, result.Error)
		assert.Equal(t, "Visualization limited to 200 steps", *result.Error)
		assert.Len(t, result.Steps, 200)
	})

	t.Run("bad payload rejected", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/api/run", "application/json", strings.NewReader(`{"code": 42}`))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var result trace.Trace
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		require.NotNil(t, result.Error)
		assert.Equal(t, "Invalid code payload", *result.Error)
		assert.NotNil(t, result.Steps)
	})
}

func TestRunIsDeterministic(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	srv := newTestServer(t, sandbox.DefaultConfig())
	src := "xs = [1, 2]\nys = xs\nd = {'a': {1, 2, 3}}\nfor i in range(3):\n    xs.append(i)\nprint(xs)\n"

	_, first := runCode(t, srv, src)
	_, second := runCode(t, srv, src)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b), "identical programs must produce identical traces")
}

func TestHealthIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	srv := newTestServer(t, sandbox.DefaultConfig())
	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
}
