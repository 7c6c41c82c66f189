package progress

import (
	"bytes"
	"context"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/arcvault/uups-cli/internal/domain/config"
	"github.com/arcvault/uups-cli/internal/usecase"
)

func TestSpinnerSink_NonInteractive(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	var buf bytes.Buffer
	sink := NewSpinnerSink(&buf, false)
	ctx := context.Background()

	sink.OnProgress(ctx, usecase.ProgressEvent{Stage: "logic", Message: "Deploying ContributionNFTUpgradeable", Spinner: true})
	sink.Info("Implementation: 0x5FbDB2315678afecb367f032d93F642f64180aa3")
	sink.OnProgress(ctx, usecase.ProgressEvent{Stage: "proxy", Message: "Deploying ERC1967Proxy and initializing", Spinner: true})
	sink.OnProgress(ctx, usecase.ProgressEvent{Stage: "done"})
	sink.Error("boom")

	assert.Equal(t,
		"Deploying ContributionNFTUpgradeable...\n"+
			"Implementation: 0x5FbDB2315678afecb367f032d93F642f64180aa3\n"+
			"Deploying ERC1967Proxy and initializing...\n"+
			"boom\n",
		buf.String())
	assert.False(t, sink.spinner.Active())
}

func TestNewSink(t *testing.T) {
	_, ok := NewSink(&config.RuntimeConfig{Output: config.OutputJSON}).(*NopSink)
	assert.True(t, ok)

	_, ok = NewSink(&config.RuntimeConfig{Output: config.OutputText}).(*SpinnerSink)
	assert.True(t, ok)
}
