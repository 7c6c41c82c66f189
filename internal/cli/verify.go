package cli

import (
	"github.com/spf13/cobra"

	"github.com/arcvault/uups-cli/internal/cli/render"
	"github.com/arcvault/uups-cli/internal/domain"
	"github.com/arcvault/uups-cli/internal/usecase"
)

// NewVerifyCmd creates the verify command
func NewVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "verify <proxy>",
		Aliases: []string{"verify-impl"},
		Short:   "Verify the implementation behind a proxy on a block explorer",
		Long: `Resolve the implementation a proxy currently points at and submit its
source for verification with empty constructor arguments. The proxy itself
is never submitted. A contract that is already verified is not an error.

The backend is chosen by [verify] backend in uups.toml: etherscan submits
standard JSON input over the Etherscan v2 API, forge runs forge verify-contract.

Examples:
  uups verify 0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512 --network sepolia`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			proxy, err := domain.ParseAddress("proxy", args[0])
			if err != nil {
				return err
			}

			execCtx, err := executionContext(cmd, app)
			if err != nil {
				return err
			}

			result, err := app.VerifyImplementation.Run(cmd.Context(), execCtx, usecase.VerifyImplementationParams{Proxy: proxy})
			if err != nil {
				return err
			}

			return render.NewVerifyRenderer(cmd.OutOrStdout(), app.Config.Output).Render(result)
		},
	}

	return cmd
}
