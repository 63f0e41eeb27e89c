package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phaus/ncsync/internal/auth"
	"github.com/phaus/ncsync/internal/config"
	"github.com/phaus/ncsync/internal/model"
	"github.com/phaus/ncsync/internal/registry"
	"github.com/phaus/ncsync/internal/store"
	"github.com/phaus/ncsync/internal/webdav"
	"github.com/phaus/ncsync/pkg/exclude"
)

var pairCmd = &cobra.Command{
	Use:   "pair",
	Short: "Manage sync pairs (a remote root paired with a local root)",
}

var (
	pairExtensions []string
	pairExcludes   []string
	pairValidate   bool
)

var pairAddCmd = &cobra.Command{
	Use:   "add <remote-root> <local-root>",
	Short: "Register a new sync pair",
	Args:  cobra.ExactArgs(2),
	RunE:  runPairAdd,
}

var pairListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured sync pairs",
	Args:  cobra.NoArgs,
	RunE:  runPairList,
}

var pairRemoveCmd = &cobra.Command{
	Use:   "remove <uuid>",
	Short: "Remove a sync pair and its stored state",
	Args:  cobra.ExactArgs(1),
	RunE:  runPairRemove,
}

func init() {
	pairAddCmd.Flags().StringSliceVar(&pairExtensions, "ext", []string{model.WildcardExtension}, "allowed file extensions (e.g. .txt,.md); default is every extension")
	pairAddCmd.Flags().StringSliceVar(&pairExcludes, "exclude", nil, "gitignore-style exclude patterns")
	pairAddCmd.Flags().BoolVar(&pairValidate, "validate", false, "validate credentials against the server profile before adding")

	pairCmd.AddCommand(pairAddCmd, pairListCmd, pairRemoveCmd)
}

func runPairAdd(cmd *cobra.Command, args []string) error {
	remoteRoot, localRoot := args[0], args[1]

	if pairValidate {
		server, err := loadServer(serverName)
		if err != nil {
			return err
		}
		password, err := decryptServerPassword(server)
		if err != nil {
			return err
		}
		authProvider, err := auth.NewAppPasswordAuth(server.URL, server.Username, password)
		config.ZeroString(&password)
		if err != nil {
			return fmt.Errorf("build authenticator: %w", err)
		}
		client, err := webdav.NewClient(authProvider)
		if err != nil {
			return fmt.Errorf("build webdav client: %w", err)
		}
		defer client.Close()

		validator := auth.NewCredentialValidator()
		result, err := validator.ValidateCredentials(cmd.Context(), client, server.URL, server.Username)
		if err != nil {
			return fmt.Errorf("validate credentials: %w", err)
		}
		if !result.Valid {
			return fmt.Errorf("credential validation failed for server profile %q: %s", serverName, strings.Join(result.Errors, "; "))
		}
	}

	if err := ensureStateDir(); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	st, err := store.Open(cmd.Context(), statePath)
	if err != nil {
		return fmt.Errorf("open state store: %w", err)
	}
	defer st.Close()

	reg := registry.New(st)
	normalized := make([]string, len(pairExtensions))
	for i, ext := range pairExtensions {
		normalized[i] = strings.ToLower(ext)
	}

	excludes := append([]string{}, pairExcludes...)
	if ignored, err := exclude.LoadFromFile(localRoot); err != nil {
		return fmt.Errorf("read .nextcloudignore: %w", err)
	} else {
		for _, p := range ignored.GetPatterns() {
			excludes = append(excludes, p.Raw)
		}
	}

	pair, err := reg.AddPair(cmd.Context(), remoteRoot, localRoot, normalized, excludes)
	if err != nil {
		return fmt.Errorf("add pair: %w", err)
	}

	log.Infof("added pair %s: %s <-> %s", pair.UUID, pair.RemoteRoot, pair.LocalRoot)
	return nil
}

func runPairList(cmd *cobra.Command, args []string) error {
	st, err := store.Open(cmd.Context(), statePath)
	if err != nil {
		return fmt.Errorf("open state store: %w", err)
	}
	defer st.Close()

	pairs, err := registry.New(st).ListPairs(cmd.Context())
	if err != nil {
		return fmt.Errorf("list pairs: %w", err)
	}
	if len(pairs) == 0 {
		fmt.Println("no sync pairs configured")
		return nil
	}
	for _, p := range pairs {
		fmt.Printf("%s\n  remote:  %s\n  local:   %s\n  ext:     %s\n  exclude: %s\n",
			p.UUID, p.RemoteRoot, p.LocalRoot,
			strings.Join(p.AllowedExtensions, ","), strings.Join(p.ExcludePatterns, ","))
	}
	return nil
}

func runPairRemove(cmd *cobra.Command, args []string) error {
	st, err := store.Open(cmd.Context(), statePath)
	if err != nil {
		return fmt.Errorf("open state store: %w", err)
	}
	defer st.Close()

	if err := registry.New(st).RemovePair(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("remove pair: %w", err)
	}
	log.Infof("removed pair %s", args[0])
	return nil
}
