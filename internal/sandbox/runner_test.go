package sandbox

import (
	"strings"
	"testing"
	"time"
)

func testConfig() Config {
	return Config{MaxSteps: 2000, Timeout: 3 * time.Second, MaxConcurrent: 2}
}

func TestRunSimpleProgram(t *testing.T) {
	result := Run("x = 1\ny = x + 1\nprint(y)\n", testConfig())

	if result.Stdout != "2\n" {
		t.Errorf("stdout = %q, want %q", result.Stdout, "2\n")
	}
	if result.Error != nil {
		t.Errorf("error = %q, want nil", *result.Error)
	}
	if result.Truncated || result.TimedOut {
		t.Error("flags should be clear on success")
	}
	lines := 0
	for _, s := range result.Steps {
		if s.Event == "line" {
			lines++
		}
	}
	if lines < 3 {
		t.Errorf("got %d line events, want at least 3", lines)
	}
}

func TestRunStepCeiling(t *testing.T) {
	cfg := testConfig()
	cfg.MaxSteps = 100
	result := Run("while True:\n    x = 1\n", cfg)

	if !result.Truncated {
		t.Fatal("expected truncated result")
	}
	if result.Error == nil || *result.Error != "Visualization limited to 100 steps" {
		t.Errorf("error = %v", result.Error)
	}
	if len(result.Steps) != 100 {
		t.Errorf("trace has %d steps, want 100", len(result.Steps))
	}
	if result.TimedOut {
		t.Error("step ceiling must not be reported as a timeout")
	}
}

func TestRunGuestError(t *testing.T) {
	result := Run("def f():\n    return 1 / 0\nprint('before')\nf()\n", testConfig())

	if result.Error == nil {
		t.Fatal("expected an error")
	}
	want := "Traceback (most recent call last):\n  File \"<user_code>\", line 2, in f\nZeroDivisionError: division by zero"
	if *result.Error != want {
		t.Errorf("error = %q, want %q", *result.Error, want)
	}
	if result.Stdout != "before\n" {
		t.Errorf("stdout before the error should survive: %q", result.Stdout)
	}
	if len(result.Steps) == 0 {
		t.Error("partial trace should not be empty")
	}
	if result.Truncated || result.TimedOut {
		t.Error("flags should be clear on a guest error")
	}
	last := result.Steps[len(result.Steps)-1]
	if last.Event != "exception" {
		t.Errorf("last event = %q, want exception", last.Event)
	}
}

func TestRunSyntaxError(t *testing.T) {
	result := Run("def f(:\n    pass\n", testConfig())

	if result.Error == nil {
		t.Fatal("expected an error")
	}
	if !strings.HasPrefix(*result.Error, "  File \"<user_code>\", line 1\nSyntaxError: ") {
		t.Errorf("error = %q", *result.Error)
	}
	if len(result.Steps) != 0 {
		t.Errorf("trace should be empty, has %d steps", len(result.Steps))
	}
	if result.Steps == nil {
		t.Error("trace should be an empty slice, not nil")
	}
}

func TestRunCaughtExceptionIsClean(t *testing.T) {
	src := "try:\n    x = 1 / 0\nexcept ZeroDivisionError:\n    x = -1\nprint(x)\n"
	result := Run(src, testConfig())

	if result.Error != nil {
		t.Errorf("handled exception should not set error: %q", *result.Error)
	}
	if result.Stdout != "-1\n" {
		t.Errorf("stdout = %q", result.Stdout)
	}
}

func TestRunEmptySource(t *testing.T) {
	result := Run("", testConfig())

	if result.Error != nil {
		t.Errorf("empty program should succeed: %q", *result.Error)
	}
	if result.Stdout != "" {
		t.Errorf("stdout = %q", result.Stdout)
	}
}
