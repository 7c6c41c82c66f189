package render

import (
	"fmt"
	"io"

	"github.com/arcvault/uups-cli/internal/domain"
	"github.com/arcvault/uups-cli/internal/domain/config"
)

// ProxyRenderer renders a resolved proxy
type ProxyRenderer struct {
	out    io.Writer
	format config.OutputFormat
}

// NewProxyRenderer creates a new proxy renderer
func NewProxyRenderer(out io.Writer, format config.OutputFormat) *ProxyRenderer {
	return &ProxyRenderer{out: out, format: format}
}

// Render prints proxy, implementation and admin slot
func (r *ProxyRenderer) Render(record *domain.ProxyRecord) error {
	if isStructured(r.format) {
		return RenderStructured(r.out, r.format, record)
	}

	rows := [][2]string{
		{"Proxy", record.Proxy.Hex()},
		{"Implementation", record.Implementation.Hex()},
		{"Admin (slot)", FormatOptionalAddress(record.Admin)},
	}
	if record.Beacon != nil {
		rows = append(rows, [2]string{"Beacon", record.Beacon.Hex()})
	}
	if record.BlockNumber > 0 {
		rows = append(rows, [2]string{"Block", fmt.Sprintf("%d", record.BlockNumber)})
	}
	fmt.Fprintln(r.out, kvTable(rows))

	if !record.HasImplementation() {
		fmt.Fprintln(r.out, FormatWarning("Implementation slot is empty: this address is not an initialized ERC-1967 proxy"))
	}
	return nil
}

var _ Renderer[*domain.ProxyRecord] = (*ProxyRenderer)(nil)
