package isolate

import (
	"fmt"
	"io"

	"github.com/gpuscale/autotune/pkg/logger"
)

// RunWorker executes one probe attempt inside the current process. It is the
// body of the hidden worker command that ProcessRunner spawns: it reads a
// probe request from stdin, runs the named entry point against the decoded
// configuration snapshot, and writes the outcome envelope to stdout.
//
// Every failure mode of the attempt itself (unknown entry, decode error,
// entry error, panic) is reported as a failure outcome rather than an error,
// so the worker exits zero whenever it stays alive long enough to report.
// The returned error covers only I/O on the channel itself.
func RunWorker(stdin io.Reader, stdout io.Writer) error {
	data, err := io.ReadAll(stdin)
	if err != nil {
		return fmt.Errorf("failed to read probe request: %w", err)
	}

	out, err := encodeOutcome(runAttempt(data))
	if err != nil {
		return err
	}
	if _, err := stdout.Write(out); err != nil {
		return fmt.Errorf("failed to write probe outcome: %w", err)
	}
	return nil
}

func runAttempt(request []byte) (outcome Outcome) {
	// A panicking entry point must still produce a failure envelope; a hard
	// crash bypasses this and is handled by the parent from the exit state.
	defer func() {
		if r := recover(); r != nil {
			outcome = Outcome{Cause: fmt.Sprintf("panic: %v", r)}
		}
	}()

	entry, cfg, err := decodeRequest(request)
	if err != nil {
		return Outcome{Cause: err.Error()}
	}

	fn, ok := lookup(entry)
	if !ok {
		return Outcome{Cause: fmt.Sprintf("unknown entry point %q", entry)}
	}

	logger.Debug("worker running entry point", "entry", entry,
		"num_envs", cfg.Trainer.NumEnvs, "train_batch_size", cfg.Trainer.TrainBatchSize)

	if err := fn(cfg, false); err != nil {
		return Outcome{Cause: err.Error()}
	}
	return Outcome{OK: true}
}
