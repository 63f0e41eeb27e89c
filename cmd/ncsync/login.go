package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phaus/ncsync/internal/auth"
	"github.com/phaus/ncsync/internal/config"
	"github.com/phaus/ncsync/internal/registry"
	"github.com/phaus/ncsync/internal/utils"
	"github.com/phaus/ncsync/internal/webdav"
)

var (
	loginURL      string
	loginUser     string
	loginPassword string
	loginQR       string
	loginName     string
	loginSkipTest bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store a Nextcloud app-password credential profile",
	Long: "Stores a server URL, username and app password as an encrypted profile " +
		"in the credential config. Credentials can be given directly via flags or " +
		"decoded from a Nextcloud app-password QR payload (--qr).",
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVar(&loginURL, "url", "", "Nextcloud server URL")
	loginCmd.Flags().StringVar(&loginUser, "username", "", "Nextcloud username")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Nextcloud app password")
	loginCmd.Flags().StringVar(&loginQR, "qr", "", "nc://login/... payload, in place of --url/--username/--password")
	loginCmd.Flags().StringVar(&loginName, "name", "default", "name to store this profile under")
	loginCmd.Flags().BoolVar(&loginSkipTest, "skip-test", false, "skip the live connectivity/credential check")
}

func runLogin(cmd *cobra.Command, args []string) error {
	url, username, password := loginURL, loginUser, loginPassword
	if loginQR != "" {
		creds, err := registry.ParseQRPayload(loginQR)
		if err != nil {
			return fmt.Errorf("parse qr payload: %w", err)
		}
		url, username, password = creds.Server, creds.Username, creds.Password
	}
	if url == "" || username == "" || password == "" {
		return fmt.Errorf("--url, --username and --password (or --qr) are all required")
	}

	// --url accepts either a bare server URL or a pasted Nextcloud "files
	// app" browser URL (https://host/apps/files/files/USER_ID?dir=/path);
	// the latter is reduced to its base URL, the former just normalized.
	if nc, err := utils.ParseNextcloudURL(url); err == nil {
		url = nc.BaseURL
	} else if normalized, err := utils.NormalizeURL(url); err == nil {
		url = normalized
	}

	if !loginSkipTest {
		authProvider, err := auth.NewAppPasswordAuth(url, username, password)
		if err != nil {
			return fmt.Errorf("build authenticator: %w", err)
		}
		client, err := webdav.NewClient(authProvider)
		if err != nil {
			return fmt.Errorf("build webdav client: %w", err)
		}
		defer client.Close()

		validator := auth.NewCredentialValidator()
		result, err := validator.ValidateCredentials(cmd.Context(), client, url, username)
		if err != nil {
			return fmt.Errorf("validate credentials: %w", err)
		}
		for _, w := range result.Warnings {
			log.Warn(w)
		}
		if !result.Valid {
			for _, e := range result.Errors {
				log.Error(e)
			}
			return fmt.Errorf("credential validation failed for %s", url)
		}
		log.Infof("validated against %s", url)
	}

	manager := auth.NewAppPasswordManager()
	server, err := manager.CreateServerConfig(url, username, password)
	if err != nil {
		return fmt.Errorf("encrypt credentials: %w", err)
	}

	cfg, err := config.LoadOrCreateConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.Servers[loginName] = server
	if err := config.SaveConfig(cfg, configPath); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	log.Infof("stored credential profile %q in %s", loginName, configPath)
	return nil
}
