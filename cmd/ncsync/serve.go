package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/phaus/ncsync/internal/executor"
	"github.com/phaus/ncsync/internal/progress"
	"github.com/phaus/ncsync/internal/store"
)

var serveInterval time.Duration

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run sync passes on a fixed interval until interrupted",
	Long: "serve repeatedly drives the same single-pass sync as `ncsync sync`, " +
		"spaced by --interval, with no filesystem watch: each pass is a discrete, " +
		"complete pass over every pair, exactly like a standalone `sync` invocation.",
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().DurationVar(&serveInterval, "interval", 5*time.Minute, "time between sync passes")
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := ensureStateDir(); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	st, err := store.Open(cmd.Context(), statePath)
	if err != nil {
		return fmt.Errorf("open state store: %w", err)
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Infof("serving sync passes every %s (ctrl-c to stop)", serveInterval)

	runPass := func() {
		tracker := progress.NewCombinedProgressTracker(progress.DefaultConfig())
		var recorder executor.ProgressRecorder = tracker

		o, err := buildOrchestrator(ctx, st, recorder)
		if err != nil {
			log.WithError(err).Error("failed to build orchestrator for this pass")
			return
		}
		defer o.Client.Close()

		if err := o.Sync(ctx); err != nil {
			log.WithError(err).Error("sync pass failed")
			return
		}
		tracker.PrintSummary()
	}

	runPass()
	ticker := time.NewTicker(serveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("shutting down")
			return nil
		case <-ticker.C:
			runPass()
		}
	}
}
