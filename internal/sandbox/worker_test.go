package sandbox

import (
	"bytes"
	"strings"
	"testing"

	"github.com/bytedance/sonic"

	"github.com/stepscope/backend/internal/trace"
)

func TestRunWorkerRoundTrip(t *testing.T) {
	var out bytes.Buffer
	err := RunWorker(strings.NewReader("print(1 + 1)\n"), &out, testConfig())
	if err != nil {
		t.Fatal(err)
	}

	var result trace.Trace
	if err := sonic.Unmarshal(out.Bytes(), &result); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if result.Stdout != "2\n" {
		t.Errorf("stdout = %q", result.Stdout)
	}
	if result.Error != nil {
		t.Errorf("error = %v", result.Error)
	}
	if len(result.Steps) == 0 {
		t.Error("trace is empty")
	}
}

func TestRunWorkerReportsSyntaxError(t *testing.T) {
	var out bytes.Buffer
	if err := RunWorker(strings.NewReader("def (:\n"), &out, testConfig()); err != nil {
		t.Fatal(err)
	}

	var result trace.Trace
	if err := sonic.Unmarshal(out.Bytes(), &result); err != nil {
		t.Fatal(err)
	}
	if result.Error == nil || !strings.Contains(*result.Error, "SyntaxError") {
		t.Errorf("error = %v", result.Error)
	}
}
