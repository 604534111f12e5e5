package isolate

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/gpuscale/autotune/pkg/config"
)

// ConfigPlaceholder in a CommandRunner argument is replaced with the path of
// the trial configuration file.
const ConfigPlaceholder = "{config}"

// CommandRunner probes an external trainer command instead of an entry point
// compiled into this binary. Each attempt writes the trial configuration to
// a temporary YAML file, substitutes its path for the {config} placeholder
// in Args (appending "--config <path>" when no placeholder is present), and
// runs the command. A zero exit is success; anything else, including death
// by signal, is a failed probe. The entry name passed to Run is ignored.
type CommandRunner struct {
	Path string
	Args []string

	// Dir is the working directory for the trainer command. Empty means
	// inherit the parent's.
	Dir string

	// Env is appended to the parent environment for the trainer command.
	Env []string

	// Stdout and Stderr receive the trainer's output. Both default to
	// os.Stderr so the parent's stdout stays clean.
	Stdout io.Writer
	Stderr io.Writer
}

func (r *CommandRunner) Run(ctx context.Context, entry string, cfg *config.Config) error {
	dir, err := os.MkdirTemp("", "autotune-")
	if err != nil {
		return &ProbeError{Cause: "cannot create trial config dir: " + err.Error()}
	}
	defer os.RemoveAll(dir)

	cfgPath := filepath.Join(dir, "config.yaml")
	if err := config.WriteConfig(cfgPath, cfg.Clone()); err != nil {
		return &ProbeError{Cause: err.Error()}
	}

	args := make([]string, 0, len(r.Args)+2)
	substituted := false
	for _, a := range r.Args {
		if a == ConfigPlaceholder {
			args = append(args, cfgPath)
			substituted = true
		} else {
			args = append(args, a)
		}
	}
	if !substituted {
		args = append(args, "--config", cfgPath)
	}

	cmd := exec.CommandContext(ctx, r.Path, args...)
	cmd.Dir = r.Dir
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}
	if r.Stdout != nil {
		cmd.Stdout = r.Stdout
	} else {
		cmd.Stdout = os.Stderr
	}
	if r.Stderr != nil {
		cmd.Stderr = r.Stderr
	} else {
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ProcessState != nil {
			return &ProbeError{Cause: "trainer command failed: " + exitErr.ProcessState.String()}
		}
		return &ProbeError{Cause: err.Error()}
	}
	return nil
}
