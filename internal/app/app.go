package app

import (
	"log/slog"

	"github.com/arcvault/uups-cli/internal/domain/config"
	"github.com/arcvault/uups-cli/internal/usecase"
)

// App is the main application container that holds all use cases
type App struct {
	// Configuration
	Config *config.RuntimeConfig
	Log    *slog.Logger

	// Shared dependencies
	Networks usecase.NetworkResolver
	Selector usecase.NetworkSelector

	// Use cases
	ResolveProxy         *usecase.ResolveProxy
	DeployProxy          *usecase.DeployProxy
	VerifyImplementation *usecase.VerifyImplementation
	ListNetworks         *usecase.ListNetworks
}

// NewApp creates a new application instance with all use cases
func NewApp(
	cfg *config.RuntimeConfig,
	log *slog.Logger,
	networks usecase.NetworkResolver,
	selector usecase.NetworkSelector,
	resolveProxy *usecase.ResolveProxy,
	deployProxy *usecase.DeployProxy,
	verifyImplementation *usecase.VerifyImplementation,
	listNetworks *usecase.ListNetworks,
) (*App, error) {
	return &App{
		Config:               cfg,
		Log:                  log,
		Networks:             networks,
		Selector:             selector,
		ResolveProxy:         resolveProxy,
		DeployProxy:          deployProxy,
		VerifyImplementation: verifyImplementation,
		ListNetworks:         listNetworks,
	}, nil
}

// ExecutionContext returns the chain context for network, falling back to the configured one
func (a *App) ExecutionContext(network *config.Network) config.ExecutionContext {
	execCtx := a.Config.ExecutionContext()
	if network != nil {
		execCtx.Network = network
	}
	return execCtx
}
