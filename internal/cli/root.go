package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arcvault/uups-cli/internal/app"
	"github.com/arcvault/uups-cli/internal/config"
	domainconfig "github.com/arcvault/uups-cli/internal/domain/config"
)

// contextKey is the type for context keys
type contextKey string

const (
	// appKey is the context key for the app instance
	appKey contextKey = "app"
	// cancelKey is the context key for the command timeout's cancel func
	cancelKey contextKey = "cancel"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "uups",
		Short: "Deploy, resolve and verify ERC-1967 UUPS proxies",
		Long: `uups deploys an upgradeable contract behind an ERC-1967 proxy, initialized
in the same transaction, reads the implementation a proxy points at, and
verifies that implementation on a block explorer.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Skip for help/version commands
			if skipsApp(cmd) {
				return nil
			}

			projectRoot, err := config.FindProjectRoot()
			if err != nil {
				return err
			}

			v, err := config.SetupViper(projectRoot, cmd)
			if err != nil {
				return err
			}

			appInstance, err := app.InitApp(v)
			if err != nil {
				return err
			}

			ctx := context.WithValue(cmd.Context(), appKey, appInstance)

			if appInstance.Config.Timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, appInstance.Config.Timeout)
				ctx = context.WithValue(ctx, cancelKey, cancel)
			}

			cmd.SetContext(ctx)
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringP("network", "n", "", "Network to use (e.g., mainnet, sepolia)")
	rootCmd.PersistentFlags().StringP("output", "o", string(domainconfig.OutputText), "Output format: text, json or yaml")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug output")
	rootCmd.PersistentFlags().Bool("non-interactive", false, "Disable interactive prompts")
	rootCmd.PersistentFlags().Duration("timeout", 0, "Overall timeout for the command (default 10m)")
	rootCmd.PersistentFlags().String("config", "", "Path to uups.toml")

	rootCmd.AddGroup(&cobra.Group{
		ID:    "main",
		Title: "Main Commands",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "management",
		Title: "Management Commands",
	})

	deployCmd := NewDeployCmd()
	deployCmd.GroupID = "main"
	rootCmd.AddCommand(deployCmd)

	resolveCmd := NewResolveCmd()
	resolveCmd.GroupID = "main"
	rootCmd.AddCommand(resolveCmd)

	verifyCmd := NewVerifyCmd()
	verifyCmd.GroupID = "main"
	rootCmd.AddCommand(verifyCmd)

	networksCmd := NewNetworksCmd()
	networksCmd.GroupID = "management"
	rootCmd.AddCommand(networksCmd)

	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// Execute runs root under ctx and releases the command timeout on every exit path
func Execute(ctx context.Context, root *cobra.Command) error {
	cmd, err := root.ExecuteContextC(ctx)
	if cmd != nil && cmd.Context() != nil {
		if cancel, ok := cmd.Context().Value(cancelKey).(context.CancelFunc); ok {
			cancel()
		}
	}
	return err
}

// skipsApp reports whether cmd runs without project configuration
func skipsApp(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "version", "help", "completion", "__complete":
		return true
	}
	return false
}

// getApp retrieves the app instance from the command context
func getApp(cmd *cobra.Command) (*app.App, error) {
	appInstance := cmd.Context().Value(appKey)
	if appInstance == nil {
		return nil, fmt.Errorf("app not initialized")
	}

	app, ok := appInstance.(*app.App)
	if !ok {
		return nil, fmt.Errorf("invalid app instance")
	}

	return app, nil
}

// executionContext returns the chain context for cmd. Without a configured
// network an interactive session picks one from the configured list.
func executionContext(cmd *cobra.Command, a *app.App) (domainconfig.ExecutionContext, error) {
	if a.Config.Network != nil {
		return a.Config.ExecutionContext(), nil
	}

	ctx := cmd.Context()
	name, err := a.Selector.SelectNetwork(ctx, a.Networks.GetNetworks(ctx))
	if err != nil {
		return domainconfig.ExecutionContext{}, err
	}
	network, err := a.Networks.ResolveNetwork(ctx, name)
	if err != nil {
		return domainconfig.ExecutionContext{}, err
	}
	return a.ExecutionContext(network), nil
}
