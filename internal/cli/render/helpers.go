package render

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FormatWarning formats a warning message with the warning icon
func FormatWarning(message string) string {
	return color.New(color.FgYellow).Sprintf("⚠️  %s", message)
}

// FormatError formats an error message with the error icon
func FormatError(message string) string {
	if len(message) > 0 {
		message = strings.ToUpper(message[:1]) + message[1:]
	}
	return color.New(color.FgRed).Sprintf("❌ %s", message)
}

// FormatSuccess formats a success message with the success icon
func FormatSuccess(message string) string {
	return color.New(color.FgGreen).Sprintf("✅ %s", message)
}

// Title capitalizes each word, "already verified" -> "Already Verified"
func Title(s string) string {
	return cases.Title(language.English).String(s)
}

// FormatBasisPoints shows basis points with their percentage, 250 -> "250 bps (2.5%)"
func FormatBasisPoints(bps uint16) string {
	pct := decimal.NewFromInt(int64(bps)).Shift(-2)
	return fmt.Sprintf("%d bps (%s%%)", bps, pct.String())
}

// FormatOptionalAddress renders a slot value that may be empty
func FormatOptionalAddress(addr *common.Address) string {
	if addr == nil {
		return color.New(color.Faint).Sprint("(empty)")
	}
	return addr.Hex()
}

// kvTable renders label/value rows as an unbordered two column table
func kvTable(rows [][2]string) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.Style().Options.DrawBorder = false
	t.Style().Options.SeparateColumns = false
	t.Style().Options.SeparateHeader = false
	t.Style().Options.SeparateRows = false
	t.Style().Box = table.BoxStyle{
		PaddingLeft:  "  ",
		PaddingRight: "  ",
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
		{Number: 2, Align: text.AlignLeft},
	})

	for _, row := range rows {
		t.AppendRow(table.Row{color.New(color.Bold).Sprint(row[0]), row[1]})
	}
	return t.Render()
}
