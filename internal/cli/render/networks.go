package render

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/arcvault/uups-cli/internal/domain/config"
	"github.com/arcvault/uups-cli/internal/usecase"
)

// NetworksRenderer renders network lists
type NetworksRenderer struct {
	out    io.Writer
	format config.OutputFormat
}

// NewNetworksRenderer creates a new networks renderer
func NewNetworksRenderer(out io.Writer, format config.OutputFormat) *NetworksRenderer {
	return &NetworksRenderer{out: out, format: format}
}

type networkView struct {
	Name    string `json:"name" yaml:"name"`
	ChainID uint64 `json:"chainId,omitempty" yaml:"chainId,omitempty"`
	RPCURL  string `json:"rpcUrl,omitempty" yaml:"rpcUrl,omitempty"`
	Source  string `json:"source,omitempty" yaml:"source,omitempty"`
	Current bool   `json:"current,omitempty" yaml:"current,omitempty"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Render renders the list of networks
func (r *NetworksRenderer) Render(result *usecase.ListNetworksResult) error {
	if isStructured(r.format) {
		views := make([]networkView, 0, len(result.Networks))
		for _, n := range result.Networks {
			view := networkView{Name: n.Name, ChainID: n.ChainID, RPCURL: n.RPCURL, Source: n.Source, Current: n.Name == result.Current}
			if n.Error != nil {
				view.Error = n.Error.Error()
			}
			views = append(views, view)
		}
		return RenderStructured(r.out, r.format, views)
	}

	if len(result.Networks) == 0 {
		fmt.Fprintln(r.out, "No networks configured. Add [networks.<name>] to uups.toml, [rpc_endpoints] to foundry.toml, or set RPC_URL.")
		return nil
	}

	fmt.Fprintln(r.out, "🌐 Available Networks:")
	fmt.Fprintln(r.out)

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.Style().Options.DrawBorder = false
	t.Style().Options.SeparateColumns = false
	t.Style().Options.SeparateRows = false
	t.AppendHeader(table.Row{"", "Network", "Chain ID", "Source", "Status"})

	for _, n := range result.Networks {
		marker := ""
		if n.Name == result.Current {
			marker = "*"
		}
		chainID := "-"
		if n.ChainID != 0 {
			chainID = fmt.Sprintf("%d", n.ChainID)
		}
		status := color.New(color.FgGreen).Sprint("ok")
		if n.Error != nil {
			status = color.New(color.FgRed).Sprint(n.Error.Error())
		}
		t.AppendRow(table.Row{marker, n.Name, chainID, n.Source, status})
	}

	fmt.Fprintln(r.out, t.Render())
	return nil
}

var _ Renderer[*usecase.ListNetworksResult] = (*NetworksRenderer)(nil)
