//go:build integration
// +build integration

package integration_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gpuscale/autotune/internal/isolate"
	"github.com/gpuscale/autotune/internal/tuner"
	"github.com/gpuscale/autotune/pkg/config"
)

// TestIntegrationWorkerHelper is not a test: it is the worker-mode body of
// the re-executed test binary. The synthetic trainer it registers reads its
// own failure boundaries from the trial config's trainer params, so the
// boundaries survive the trip across the process boundary along with
// everything else.
func TestIntegrationWorkerHelper(t *testing.T) {
	if os.Getenv("AUTOTUNE_INTEGRATION_WORKER") != "1" {
		return
	}

	isolate.Register("synthetic-trainer", func(cfg *config.Config, saveResults bool) error {
		maxEnvs := paramInt(cfg.Trainer.Params, "max_envs")
		maxBatchPerEnv := paramInt(cfg.Trainer.Params, "max_batch_per_env")

		if cfg.Trainer.NumEnvs > maxEnvs {
			// Model the hard fault: the process dies without reporting.
			os.Exit(139)
		}
		if cfg.Trainer.TrainBatchSize > maxBatchPerEnv*cfg.Trainer.NumEnvs {
			return errors.New("CUDA out of memory")
		}
		return nil
	})

	if err := isolate.RunWorker(os.Stdin, os.Stdout); err != nil {
		os.Exit(1)
	}
	os.Exit(0)
}

func paramInt(params map[string]any, key string) int {
	switch v := params[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}

func integrationConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.ParseConfigYAMLString(`
trainer:
  num_envs: 10
  train_batch_size: 10
  num_episodes: 2000
  params:
    max_envs: 48
    max_batch_per_env: 6
env:
  episode_length: 100
saving:
  use_wandb: true
`)
	if err != nil {
		t.Fatalf("failed to build integration config: %v", err)
	}
	return cfg
}

func integrationRunner() *isolate.ProcessRunner {
	return &isolate.ProcessRunner{
		WorkerArgs: []string{"-test.run=TestIntegrationWorkerHelper$"},
		Env:        []string{"AUTOTUNE_INTEGRATION_WORKER=1"},
		Stderr:     os.Stderr,
	}
}

func TestIntegration_TuneWithProcessIsolation(t *testing.T) {
	cfg := integrationConfig(t)
	tn := tuner.New(tuner.Options{Runner: integrationRunner()})

	tuned, err := tn.Tune(context.Background(), "synthetic-trainer", cfg)
	if err != nil {
		t.Fatalf("Tune failed: %v", err)
	}

	if tuned.Trainer.NumEnvs < 47 || tuned.Trainer.NumEnvs > 48 {
		t.Errorf("Expected num_envs in [47, 48], got %d", tuned.Trainer.NumEnvs)
	}
	lo, hi := tuned.Trainer.NumEnvs*5, tuned.Trainer.NumEnvs*6
	if tuned.Trainer.TrainBatchSize < lo || tuned.Trainer.TrainBatchSize > hi {
		t.Errorf("Expected train_batch_size in [%d, %d], got %d", lo, hi, tuned.Trainer.TrainBatchSize)
	}

	if tuned.Trainer.NumEpisodes != 2000 {
		t.Errorf("Expected num_episodes restored to 2000, got %v", tuned.Trainer.NumEpisodes)
	}
	if !tuned.Saving.UseWandb {
		t.Error("Expected use_wandb restored to true")
	}
}

func TestIntegration_TuneNoViableValueWithProcessIsolation(t *testing.T) {
	cfg := integrationConfig(t)
	cfg.Trainer.Params["max_envs"] = 0

	tn := tuner.New(tuner.Options{Runner: integrationRunner()})
	if _, err := tn.Tune(context.Background(), "synthetic-trainer", cfg); err == nil {
		t.Fatal("Expected tuning to fail when every candidate crashes")
	}

	if !cfg.Saving.UseWandb {
		t.Error("Expected use_wandb restored after a failed run")
	}
}

func TestIntegration_ExampleConfigSmoke(t *testing.T) {
	cfgPath := filepath.Join("..", "..", "config", "config.yaml")

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		t.Fatalf("LoadConfig(%s) failed: %v", cfgPath, err)
	}
	if cfg.Trainer.NumEnvs <= 0 {
		t.Fatal("Expected example config to carry a positive num_envs seed")
	}
	if cfg.Env.EpisodeLength <= 0 {
		t.Fatal("Expected example config to carry a positive episode_length")
	}
}
