package render

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/arcvault/uups-cli/internal/domain"
	"github.com/arcvault/uups-cli/internal/domain/config"
)

// VerifyRenderer handles rendering of verification results
type VerifyRenderer struct {
	out    io.Writer
	format config.OutputFormat
}

// NewVerifyRenderer creates a new verify renderer
func NewVerifyRenderer(out io.Writer, format config.OutputFormat) *VerifyRenderer {
	return &VerifyRenderer{out: out, format: format}
}

// Render prints the verification outcome. Already verified is informational.
func (r *VerifyRenderer) Render(result *domain.VerificationResult) error {
	if isStructured(r.format) {
		return RenderStructured(r.out, r.format, result)
	}

	if result.AlreadyVerified() {
		color.New(color.FgYellow).Fprintf(r.out, "ℹ️  Implementation %s is already verified\n", result.Implementation.Hex())
	} else {
		fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Implementation %s verified", result.Implementation.Hex())))
	}

	rows := [][2]string{
		{"Proxy", result.Proxy.Hex()},
		{"Implementation", result.Implementation.Hex()},
		{"Status", Title(string(result.Status))},
		{"Verifier", Title(result.Verifier)},
	}
	if result.GUID != "" {
		rows = append(rows, [2]string{"GUID", result.GUID})
	}
	if result.ExplorerURL != "" {
		rows = append(rows, [2]string{"Explorer", result.ExplorerURL})
	}
	fmt.Fprintln(r.out, kvTable(rows))
	return nil
}

var _ Renderer[*domain.VerificationResult] = (*VerifyRenderer)(nil)
