package cli

import (
	"github.com/spf13/cobra"

	"github.com/arcvault/uups-cli/internal/cli/render"
	"github.com/arcvault/uups-cli/internal/usecase"
)

// NewNetworksCmd creates the networks command
func NewNetworksCmd() *cobra.Command {
	var probe bool

	cmd := &cobra.Command{
		Use:   "networks",
		Short: "List available networks",
		Long: `List the networks configured in uups.toml [networks] and foundry.toml
[rpc_endpoints]. When neither has any, RPC_URL is listed as "default".

With --probe each endpoint is dialed to read its live chain ID.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.ListNetworks.Run(cmd.Context(), app.Config.ExecutionContext(), usecase.ListNetworksParams{Probe: probe})
			if err != nil {
				return err
			}

			return render.NewNetworksRenderer(cmd.OutOrStdout(), app.Config.Output).Render(result)
		},
	}

	cmd.Flags().BoolVar(&probe, "probe", false, "Dial each network and read its chain ID")

	return cmd
}
