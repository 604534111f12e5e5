package isolate

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestProcessRunnerSuccess(t *testing.T) {
	runner := newHelperRunner()

	if err := runner.Run(context.Background(), "ok", testConfig(t)); err != nil {
		t.Fatalf("Expected success, got: %v", err)
	}
}

func TestProcessRunnerFailure(t *testing.T) {
	runner := newHelperRunner()

	err := runner.Run(context.Background(), "fail", testConfig(t))
	if err == nil {
		t.Fatal("Expected failure, got nil")
	}

	var probeErr *ProbeError
	if !errors.As(err, &probeErr) {
		t.Fatalf("Expected *ProbeError, got %T: %v", err, err)
	}
	if !strings.Contains(probeErr.Cause, "illegal memory access") {
		t.Errorf("Expected cause to carry the worker error, got: %s", probeErr.Cause)
	}
}

func TestProcessRunnerPanicIsContained(t *testing.T) {
	runner := newHelperRunner()

	err := runner.Run(context.Background(), "panic", testConfig(t))
	var probeErr *ProbeError
	if !errors.As(err, &probeErr) {
		t.Fatalf("Expected *ProbeError, got %T: %v", err, err)
	}
	if !strings.Contains(probeErr.Cause, "panic") {
		t.Errorf("Expected cause to mention the panic, got: %s", probeErr.Cause)
	}
}

func TestProcessRunnerHardCrashIsContained(t *testing.T) {
	runner := newHelperRunner()

	// The hard-exit entry kills the worker before any envelope is written.
	// The parent must observe an ordinary failure and keep running.
	err := runner.Run(context.Background(), "hard-exit", testConfig(t))
	var probeErr *ProbeError
	if !errors.As(err, &probeErr) {
		t.Fatalf("Expected *ProbeError, got %T: %v", err, err)
	}
	if !strings.Contains(probeErr.Cause, "worker terminated abnormally") {
		t.Errorf("Expected abnormal-termination cause, got: %s", probeErr.Cause)
	}
	if !strings.Contains(probeErr.Cause, "137") {
		t.Errorf("Expected exit state in cause, got: %s", probeErr.Cause)
	}

	// A second attempt after the crash still works.
	if err := runner.Run(context.Background(), "ok", testConfig(t)); err != nil {
		t.Fatalf("Expected the runner to survive a crashed attempt, got: %v", err)
	}
}

func TestProcessRunnerUnknownEntry(t *testing.T) {
	runner := newHelperRunner()

	err := runner.Run(context.Background(), "does-not-exist", testConfig(t))
	var probeErr *ProbeError
	if !errors.As(err, &probeErr) {
		t.Fatalf("Expected *ProbeError, got %T: %v", err, err)
	}
	if !strings.Contains(probeErr.Cause, "unknown entry point") {
		t.Errorf("Expected unknown-entry cause, got: %s", probeErr.Cause)
	}
}
