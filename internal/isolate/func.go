package isolate

import (
	"context"
	"fmt"

	"github.com/gpuscale/autotune/pkg/config"
)

// FuncRunner executes the registered entry point in-process with panic
// recovery. It cannot survive a hard fault the way ProcessRunner can, so it
// is only suitable for tests and for jobs known not to crash the process.
type FuncRunner struct{}

func (r *FuncRunner) Run(ctx context.Context, entry string, cfg *config.Config) (err error) {
	fn, ok := lookup(entry)
	if !ok {
		return &ProbeError{Cause: fmt.Sprintf("unknown entry point %q", entry)}
	}

	defer func() {
		if rec := recover(); rec != nil {
			err = &ProbeError{Cause: fmt.Sprintf("panic: %v", rec)}
		}
	}()

	if runErr := fn(cfg.Clone(), false); runErr != nil {
		return &ProbeError{Cause: runErr.Error()}
	}
	return nil
}
