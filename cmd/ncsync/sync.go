package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phaus/ncsync/internal/auth"
	"github.com/phaus/ncsync/internal/config"
	"github.com/phaus/ncsync/internal/executor"
	"github.com/phaus/ncsync/internal/orchestrator"
	"github.com/phaus/ncsync/internal/progress"
	"github.com/phaus/ncsync/internal/store"
	"github.com/phaus/ncsync/internal/utils"
	"github.com/phaus/ncsync/internal/webdav"
)

var showProgress bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one sync pass across every configured pair",
	Args:  cobra.NoArgs,
	RunE:  runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&showProgress, "progress", true, "print a progress bar and summary statistics")
}

// decryptServerPassword recovers the plaintext app password for server. The
// caller is responsible for zeroing the returned string when done with it.
func decryptServerPassword(server config.Server) (string, error) {
	password, err := config.DecryptPassword(server.AppPassword)
	if err != nil {
		return "", fmt.Errorf("decrypt stored app password: %w", err)
	}
	return password, nil
}

// buildOrchestrator assembles an Orchestrator from the named credential
// profile and the open state store.
func buildOrchestrator(ctx context.Context, st *store.Store, tracker executor.ProgressRecorder) (*orchestrator.Orchestrator, error) {
	cfg, server, err := loadConfigAndServer(serverName)
	if err != nil {
		return nil, err
	}

	authProvider, err := auth.NewAppPasswordAuthFromConfig(server)
	if err != nil {
		return nil, fmt.Errorf("build authenticator: %w", err)
	}

	client, err := webdav.NewClient(authProvider)
	if err != nil {
		return nil, fmt.Errorf("build webdav client: %w", err)
	}
	if cfg.GlobalSettings.MaxRetries > 0 {
		retryConfig := utils.DefaultRetryConfig()
		retryConfig.MaxRetries = cfg.GlobalSettings.MaxRetries
		client.SetRetryConfig(retryConfig)
	}

	return &orchestrator.Orchestrator{
		Client:   client,
		BaseURL:  server.URL,
		Username: server.Username,
		Store:    st,
		Tracker:  tracker,
		Log:      log,
	}, nil
}

func runSync(cmd *cobra.Command, args []string) error {
	if err := ensureStateDir(); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	st, err := store.Open(cmd.Context(), statePath)
	if err != nil {
		return fmt.Errorf("open state store: %w", err)
	}
	defer st.Close()

	var tracker *progress.CombinedProgressTracker
	var recorder executor.ProgressRecorder
	if showProgress {
		tracker = progress.NewCombinedProgressTracker(progress.DefaultConfig())
		recorder = tracker
	}

	o, err := buildOrchestrator(cmd.Context(), st, recorder)
	if err != nil {
		return err
	}
	defer o.Client.Close()

	if err := o.Sync(cmd.Context()); err != nil {
		return fmt.Errorf("sync: %w", err)
	}

	if tracker != nil {
		tracker.PrintSummary()
	}
	return nil
}
