//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"github.com/spf13/viper"

	"github.com/arcvault/uups-cli/internal/adapters"
	"github.com/arcvault/uups-cli/internal/config"
	"github.com/arcvault/uups-cli/internal/logging"
	"github.com/arcvault/uups-cli/internal/usecase"
)

// InitApp creates a fully wired App instance
func InitApp(v *viper.Viper) (*App, error) {
	wire.Build(
		// Configuration
		config.Provider,
		logging.LoggingSet,

		// Adapters
		adapters.AllAdapters,

		// Use cases
		usecase.NewResolveProxy,
		usecase.NewDeployProxy,
		usecase.NewVerifyImplementation,
		usecase.NewListNetworks,

		// App
		NewApp,
	)
	return nil, nil
}
