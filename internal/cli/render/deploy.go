package render

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/arcvault/uups-cli/internal/domain"
	"github.com/arcvault/uups-cli/internal/domain/config"
)

// DeployRenderer renders the deployment plan and its outcome
type DeployRenderer struct {
	out    io.Writer
	format config.OutputFormat
}

// NewDeployRenderer creates a new deploy renderer
func NewDeployRenderer(out io.Writer, format config.OutputFormat) *DeployRenderer {
	return &DeployRenderer{out: out, format: format}
}

// RenderPlan prints the resolved configuration before any transaction is sent
func (r *DeployRenderer) RenderPlan(plan *domain.DeploymentPlan) {
	if isStructured(r.format) {
		return
	}

	cfg := plan.Config
	color.New(color.FgCyan, color.Bold).Fprintf(r.out, "Deploying %s behind %s\n", plan.LogicContract, plan.ProxyContract)
	fmt.Fprintln(r.out, kvTable([][2]string{
		{"Network", fmt.Sprintf("%s (chain %d)", plan.Network, plan.ChainID)},
		{"Deployer", plan.Deployer.Hex()},
		{"Name", cfg.Name},
		{"Symbol", cfg.Symbol},
		{"Base URI", cfg.BaseURI},
		{"Royalty receiver", cfg.RoyaltyReceiver.Hex()},
		{"Royalty fee", FormatBasisPoints(cfg.RoyaltyFeeBasisPoints)},
		{"Admin", cfg.Admin.Hex()},
	}))
	fmt.Fprintln(r.out)
}

// Render prints the deployment result
func (r *DeployRenderer) Render(result *domain.DeployResult) error {
	if isStructured(r.format) {
		return RenderStructured(r.out, r.format, result)
	}

	if result.DryRun {
		fmt.Fprintln(r.out, FormatWarning("Dry run: no transactions were sent"))
		return nil
	}

	fmt.Fprintln(r.out, FormatSuccess("Proxy deployed and initialized"))
	fmt.Fprintln(r.out)

	record := result.Record
	fmt.Fprintln(r.out, kvTable([][2]string{
		{"Proxy", record.Proxy.Hex()},
		{"Implementation", record.Implementation.Hex()},
		{"Admin (slot)", FormatOptionalAddress(record.Admin)},
		{"Logic tx", result.Logic.TxHash.Hex()},
		{"Proxy tx", result.Proxy.TxHash.Hex()},
		{"Block", fmt.Sprintf("%d", result.Proxy.BlockNumber)},
	}))

	network := result.Plan.Network
	proxy := record.Proxy.Hex()
	fmt.Fprintln(r.out)
	color.New(color.Bold).Fprintln(r.out, "Next:")
	fmt.Fprintf(r.out, "  uups resolve %s --network %s\n", proxy, network)
	fmt.Fprintf(r.out, "  uups verify %s --network %s\n", proxy, network)
	return nil
}
