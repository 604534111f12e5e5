package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gpuscale/autotune/internal/isolate"
	"github.com/gpuscale/autotune/internal/tuner"
	"github.com/gpuscale/autotune/pkg/config"
	"github.com/gpuscale/autotune/pkg/logger"
)

var (
	cfgPath   string
	outPath   string
	margin    int
	numIters  int
	logLevel  string
	entryName string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "autotune",
	Short: "Crash-safe auto-tuning of training-run resource parameters",
	Long: `autotune finds the largest workable values of two coupled training
parameters, num_envs and train_batch_size, by repeatedly running the training
job at candidate values and bisecting on the success/failure boundary.

Each probe runs in a freshly spawned process, so a candidate that makes the
job fault hard (illegal device memory access, out-of-memory abort) is
observed as an ordinary failure and the search continues.

Pass a trainer command after --; the trial configuration path replaces the
{config} placeholder in its arguments:

  autotune tune --config run.yaml -- ./trainer --config {config}`,
}

// tuneCmd drives the two-stage search and writes back the tuned config
var tuneCmd = &cobra.Command{
	Use:   "tune [flags] -- trainer-command [args...]",
	Short: "Tune num_envs and train_batch_size for a training job",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.SetDefault(logger.NewText(logLevel, os.Stderr))

		cfg, err := config.LoadConfig(cfgPath)
		if err != nil {
			return err
		}
		if cfg.LogLevel != "" && !cmd.Flags().Changed("log-level") {
			logger.SetDefault(logger.NewText(cfg.LogLevel, os.Stderr))
		}

		var runner isolate.Runner
		switch {
		case len(args) > 0:
			runner = &isolate.CommandRunner{Path: args[0], Args: args[1:]}
		case entryName != "":
			if !isolate.Registered(entryName) {
				return fmt.Errorf("no entry point registered under %q", entryName)
			}
			runner = &isolate.ProcessRunner{}
		default:
			return fmt.Errorf("a trainer command or --entry is required")
		}

		t := tuner.New(tuner.Options{
			NumIters: numIters,
			Margin:   margin,
			Runner:   runner,
		})
		tuned, err := t.Tune(cmd.Context(), entryName, cfg)
		if err != nil {
			return err
		}

		out := outPath
		if out == "" {
			out = cfgPath
		}
		if err := config.WriteConfig(out, tuned); err != nil {
			return err
		}
		logger.Info("tuned configuration written", "path", out,
			"num_envs", tuned.Trainer.NumEnvs, "train_batch_size", tuned.Trainer.TrainBatchSize)
		return nil
	},
}

// probeWorkerCmd is the isolated execution context. ProcessRunner spawns the
// current binary with this command; it reads one probe request from stdin,
// runs the registered entry point, and writes the outcome to stdout.
var probeWorkerCmd = &cobra.Command{
	Use:    "probe-worker",
	Hidden: true,
	Short:  "Run one probe attempt (spawned internally)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return isolate.RunWorker(os.Stdin, os.Stdout)
	},
}

func init() {
	tuneCmd.Flags().StringVarP(&cfgPath, "config", "c", "config/config.yaml", "training configuration file")
	tuneCmd.Flags().StringVarP(&outPath, "out", "o", "", "write the tuned configuration here (defaults to --config)")
	tuneCmd.Flags().IntVar(&margin, "margin", tuner.DefaultMargin, "search tolerance for both parameters")
	tuneCmd.Flags().IntVar(&numIters, "iters", tuner.DefaultNumIters, "training iterations per probe")
	tuneCmd.Flags().StringVar(&entryName, "entry", "", "registered entry point to probe instead of a trainer command")
	tuneCmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(tuneCmd)
	rootCmd.AddCommand(probeWorkerCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Error("autotune failed", "error", err)
		os.Exit(1)
	}
}
