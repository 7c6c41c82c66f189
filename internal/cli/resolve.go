package cli

import (
	"github.com/spf13/cobra"

	"github.com/arcvault/uups-cli/internal/cli/render"
	"github.com/arcvault/uups-cli/internal/domain"
	"github.com/arcvault/uups-cli/internal/usecase"
)

// NewResolveCmd creates the resolve command
func NewResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "resolve <proxy>",
		Aliases: []string{"print-impl"},
		Short:   "Print the implementation and admin behind a proxy",
		Long: `Read the ERC-1967 implementation, admin and beacon slots of a proxy.
Nothing is cached: every call reads the chain.

Examples:
  uups resolve 0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512 --network sepolia
  uups resolve 0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512 -n sepolia -o json`,
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

			record, err := app.ResolveProxy.Run(cmd.Context(), execCtx, usecase.ResolveProxyParams{Proxy: proxy})
			if err != nil {
				return err
			}

			return render.NewProxyRenderer(cmd.OutOrStdout(), app.Config.Output).Render(record)
		},
	}

	return cmd
}
