package tuner

import (
	"context"
	"fmt"

	"github.com/gpuscale/autotune/internal/isolate"
	"github.com/gpuscale/autotune/internal/search"
	"github.com/gpuscale/autotune/pkg/config"
	"github.com/gpuscale/autotune/pkg/logger"
	"github.com/gpuscale/autotune/pkg/utils"
)

const (
	// DefaultNumIters is the number of training iterations each probe runs.
	DefaultNumIters = 2
	// DefaultMargin is the search tolerance for both stages.
	DefaultMargin = 1
)

// Options configures a Tuner. Zero values select the defaults; Runner
// defaults to a ProcessRunner so probes are crash-isolated.
type Options struct {
	NumIters int
	Margin   int
	Runner   isolate.Runner
}

// Tuner finds the largest workable values of the two coupled training
// parameters: the number of parallel environment replicas and the training
// batch size. The two searches run strictly in sequence because every probe
// needs the accelerator to itself.
type Tuner struct {
	runner   isolate.Runner
	numIters int
	margin   int
}

// New creates a Tuner from opts.
func New(opts Options) *Tuner {
	t := &Tuner{
		runner:   opts.Runner,
		numIters: opts.NumIters,
		margin:   opts.Margin,
	}
	if t.runner == nil {
		t.runner = &isolate.ProcessRunner{}
	}
	if t.numIters <= 0 {
		t.numIters = DefaultNumIters
	}
	if t.margin <= 0 {
		t.margin = DefaultMargin
	}
	return t
}

// Tune probes the entry point at candidate parameter values and commits the
// best ones into cfg, which is mutated in place and returned.
//
// Stage A searches num_envs, seeded at the config's current value, with
// train_batch_size pinned to num_envs so each replica contributes one batch
// item. Stage B searches the per-env batch size with the Stage-A result
// fixed. Before each probe num_episodes is derived so the job runs for only
// a few iterations, and use_wandb is forced off for the whole run so probes
// produce no remote side effects; both fields are restored on return on
// every path.
//
// If Stage A finds no viable value at all, Tune returns an error wrapping
// search.ErrNoViableValue and num_envs/train_batch_size are left at their
// last attempted values.
func (t *Tuner) Tune(ctx context.Context, entry string, cfg *config.Config) (*config.Config, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	runID := utils.GenerateRunID()
	log := logger.With("run_id", runID)

	origNumEpisodes := cfg.Trainer.NumEpisodes
	origUseWandb := cfg.Saving.UseWandb
	cfg.Saving.UseWandb = false
	defer func() {
		cfg.Trainer.NumEpisodes = origNumEpisodes
		cfg.Saving.UseWandb = origUseWandb
	}()

	log.Info("determining the maximum number of environment replicas to run in parallel",
		"seed", cfg.Trainer.NumEnvs)

	attempt := 0
	maxEnvs, err := search.Find(cfg.Trainer.NumEnvs, t.margin, func(numEnvs int) error {
		attempt++
		log.Debug("probing num_envs", "attempt_id", utils.GenerateAttemptID("num_envs", attempt))
		cfg.Trainer.NumEnvs = numEnvs
		// One timestep of the simulation per replica per batch.
		cfg.Trainer.TrainBatchSize = numEnvs
		t.deriveNumEpisodes(cfg)
		return t.runner.Run(ctx, entry, cfg)
	})
	if err != nil {
		return nil, fmt.Errorf("num_envs search failed: %w", err)
	}
	cfg.Trainer.NumEnvs = maxEnvs
	log.Info("maximum number of environment replicas found", "num_envs", maxEnvs)

	log.Info("determining the maximum training batch size", "num_envs", maxEnvs)

	attempt = 0
	maxBatchPerEnv, err := search.Find(1, t.margin, func(batchPerEnv int) error {
		attempt++
		log.Debug("probing train_batch_size", "attempt_id", utils.GenerateAttemptID("train_batch_size", attempt))
		cfg.Trainer.TrainBatchSize = batchPerEnv * maxEnvs
		t.deriveNumEpisodes(cfg)
		return t.runner.Run(ctx, entry, cfg)
	})
	if err != nil {
		return nil, fmt.Errorf("train_batch_size search failed: %w", err)
	}
	cfg.Trainer.TrainBatchSize = maxBatchPerEnv * maxEnvs
	log.Info("maximum training batch size found",
		"train_batch_size", cfg.Trainer.TrainBatchSize, "batch_per_env", maxBatchPerEnv)

	return cfg, nil
}

// deriveNumEpisodes sets num_episodes so the probed job performs exactly
// numIters training iterations at the trial batch size.
func (t *Tuner) deriveNumEpisodes(cfg *config.Config) {
	cfg.Trainer.NumEpisodes = float64(t.numIters) * float64(cfg.Trainer.TrainBatchSize) / cfg.Env.EpisodeLength
}
