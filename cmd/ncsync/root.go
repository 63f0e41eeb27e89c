package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/phaus/ncsync/internal/config"
	"github.com/phaus/ncsync/internal/snapshot"
)

var (
	configPath string
	statePath  string
	serverName string
	verbose    bool

	log = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:     "ncsync",
	Short:   "Bidirectional WebDAV/Nextcloud file synchronizer",
	Version: version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			log.SetLevel(logrus.DebugLevel)
		} else {
			log.SetLevel(logrus.InfoLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.GetDefaultConfigPath(), "path to the credential config file")
	rootCmd.PersistentFlags().StringVar(&statePath, "db", defaultStatePath(), "path to the sync state store")
	rootCmd.PersistentFlags().StringVar(&serverName, "server", "default", "name of the configured server profile to use")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(pairCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(serveCmd)
}

// defaultStatePath resolves §6's state store location: the user's config
// directory, under a fixed "nextcloud-dav-sync" subdirectory.
func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "nextcloud-dav-sync", snapshot.StateStoreFileName)
	}
	return filepath.Join(dir, "nextcloud-dav-sync", snapshot.StateStoreFileName)
}

// loadConfigAndServer loads the credential config and the named server
// profile from it.
func loadConfigAndServer(name string) (*config.Config, config.Server, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, config.Server{}, fmt.Errorf("load config %s: %w", configPath, err)
	}
	server, ok := cfg.Servers[name]
	if !ok {
		return nil, config.Server{}, fmt.Errorf("no server profile named %q in %s", name, configPath)
	}
	return cfg, server, nil
}

// loadServer loads just the named server profile from the credential config.
func loadServer(name string) (config.Server, error) {
	_, server, err := loadConfigAndServer(name)
	return server, err
}

func ensureStateDir() error {
	return os.MkdirAll(filepath.Dir(statePath), 0o755)
}
