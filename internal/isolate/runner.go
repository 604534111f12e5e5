package isolate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/gpuscale/autotune/pkg/config"
)

// Runner executes one probe attempt for a named entry point against a
// snapshot of cfg. A nil return means the attempt completed normally; any
// failure, ordinary or fatal to the attempt's execution context, comes back
// as a *ProbeError. Exactly one attempt per call, no retries.
type Runner interface {
	Run(ctx context.Context, entry string, cfg *config.Config) error
}

// ProcessRunner executes each probe attempt in a freshly spawned copy of the
// current binary running the worker command. A fresh process per attempt is
// what keeps accelerator faults from reaching the orchestrator, and it also
// guarantees the attempt starts with uninitialized device state.
type ProcessRunner struct {
	// WorkerArgs are the arguments that put the spawned binary into worker
	// mode. Defaults to {"probe-worker"}.
	WorkerArgs []string

	// Env is appended to the parent environment for the worker process.
	Env []string

	// Stderr receives the worker's stderr (worker logs and trainer output).
	// Defaults to os.Stderr.
	Stderr io.Writer
}

func (r *ProcessRunner) Run(ctx context.Context, entry string, cfg *config.Config) error {
	request, err := encodeRequest(entry, cfg.Clone())
	if err != nil {
		return &ProbeError{Cause: err.Error()}
	}

	exe, err := os.Executable()
	if err != nil {
		return &ProbeError{Cause: fmt.Sprintf("cannot locate own executable: %v", err)}
	}

	args := r.WorkerArgs
	if len(args) == 0 {
		args = []string{"probe-worker"}
	}

	cmd := exec.CommandContext(ctx, exe, args...)
	cmd.Stdin = bytes.NewReader(request)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if r.Stderr != nil {
		cmd.Stderr = r.Stderr
	} else {
		cmd.Stderr = os.Stderr
	}
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}

	runErr := cmd.Run()
	if runErr == nil {
		outcome, err := decodeOutcome(stdout.Bytes())
		if err != nil {
			return &ProbeError{Cause: fmt.Sprintf("malformed outcome from worker: %v", err)}
		}
		return outcome.Err()
	}

	// The worker died. Prefer its own report when a complete envelope made
	// it out before the end; otherwise the exit state is the cause.
	if outcome, err := decodeOutcome(stdout.Bytes()); err == nil && !outcome.OK {
		return outcome.Err()
	}
	return &ProbeError{Cause: describeExit(runErr)}
}

// describeExit renders the worker's abnormal termination. For a process
// killed by a fault this includes the signal, e.g. "signal: segmentation
// fault"; for a spawn failure it is the exec error itself.
func describeExit(err error) string {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ProcessState != nil {
		return "worker terminated abnormally: " + exitErr.ProcessState.String()
	}
	return err.Error()
}
