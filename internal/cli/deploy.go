package cli

import (
	"github.com/spf13/cobra"

	"github.com/arcvault/uups-cli/internal/cli/render"
	"github.com/arcvault/uups-cli/internal/config"
	"github.com/arcvault/uups-cli/internal/usecase"
)

// NewDeployCmd creates the deploy command
func NewDeployCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy the logic contract behind an initialized ERC-1967 proxy",
		Long: `Deploy the logic contract, then an ERC-1967 proxy whose constructor calls
initialize(name, symbol, baseURI, royaltyReceiver, royaltyFeeBps, admin).
A reverting initializer reverts the proxy deployment.

Values come from flags, then environment (NFT_NAME, NFT_SYMBOL, BASE_URI,
ROYALTY_RECEIVER, ROYALTY_FEE, ADMIN), then [deploy] in uups.toml. Royalty
receiver and admin default to the deployer.

Examples:
  uups deploy --network sepolia
  uups deploy --network sepolia --name "Test NFT" --symbol TST --royalty-fee 250
  uups deploy --network sepolia --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			// Reject bad input before prompting for a network
			if err := app.Config.Deploy.Validate(); err != nil {
				return err
			}

			execCtx, err := executionContext(cmd, app)
			if err != nil {
				return err
			}

			renderer := render.NewDeployRenderer(cmd.OutOrStdout(), app.Config.Output)
			result, err := app.DeployProxy.Run(cmd.Context(), execCtx, usecase.DeployProxyParams{
				Overrides: app.Config.Deploy,
				DryRun:    app.Config.DryRun,
				AssumeYes: app.Config.AssumeYes,
				Preview:   renderer.RenderPlan,
			})
			if err != nil {
				return err
			}

			return renderer.Render(result)
		},
	}

	cmd.Flags().String("name", "", "Collection name (default \"ArcVault Contribution NFT\")")
	cmd.Flags().String("symbol", "", "Collection symbol (default \"ARCV\")")
	cmd.Flags().String("base-uri", "", "Token base URI (default \"ipfs://\")")
	cmd.Flags().String("royalty-receiver", "", "Royalty receiver address (default: deployer)")
	cmd.Flags().String("royalty-fee", "", "Royalty fee in basis points, 0-10000 (default 500)")
	cmd.Flags().String("admin", "", "Admin address passed to initialize (default: deployer)")
	cmd.Flags().Bool("allow-zero-receiver", false, "Allow the zero address as royalty receiver")
	cmd.Flags().Bool("dry-run", false, "Resolve and print the deployment without sending transactions")
	cmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")

	config.AnnotateViperKey(cmd.Flags(), "name", "nft_name")
	config.AnnotateViperKey(cmd.Flags(), "symbol", "nft_symbol")

	return cmd
}
