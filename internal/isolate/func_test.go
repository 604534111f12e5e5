package isolate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/gpuscale/autotune/pkg/config"
)

func TestFuncRunner(t *testing.T) {
	registerTestEntries()
	runner := &FuncRunner{}

	if err := runner.Run(context.Background(), "ok", testConfig(t)); err != nil {
		t.Errorf("Expected success, got: %v", err)
	}

	err := runner.Run(context.Background(), "fail", testConfig(t))
	var probeErr *ProbeError
	if !errors.As(err, &probeErr) {
		t.Fatalf("Expected *ProbeError, got %T: %v", err, err)
	}

	err = runner.Run(context.Background(), "panic", testConfig(t))
	if !errors.As(err, &probeErr) {
		t.Fatalf("Expected panic to be recovered into *ProbeError, got %T: %v", err, err)
	}
	if !strings.Contains(probeErr.Cause, "panic") {
		t.Errorf("Expected panic cause, got: %s", probeErr.Cause)
	}

	if err := runner.Run(context.Background(), "missing", testConfig(t)); err == nil {
		t.Error("Expected failure for unknown entry point")
	}
}

func TestFuncRunnerPassesSnapshot(t *testing.T) {
	var seen *config.Config
	Register("snapshot-check", func(cfg *config.Config, saveResults bool) error {
		if saveResults {
			return errors.New("saving must be disabled during probes")
		}
		seen = cfg
		return nil
	})

	cfg := testConfig(t)
	runner := &FuncRunner{}
	if err := runner.Run(context.Background(), "snapshot-check", cfg); err != nil {
		t.Fatalf("Expected success, got: %v", err)
	}
	if seen == cfg {
		t.Error("Expected the entry point to receive a snapshot, not the live config")
	}
	if seen.Trainer.NumEnvs != cfg.Trainer.NumEnvs {
		t.Errorf("Expected snapshot to carry num_envs %d, got %d", cfg.Trainer.NumEnvs, seen.Trainer.NumEnvs)
	}
}
