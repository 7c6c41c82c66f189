package adapters

import (
	"github.com/google/wire"

	"github.com/arcvault/uups-cli/internal/adapters/abi"
	"github.com/arcvault/uups-cli/internal/adapters/artifacts"
	"github.com/arcvault/uups-cli/internal/adapters/blockchain"
	"github.com/arcvault/uups-cli/internal/adapters/interactive"
	"github.com/arcvault/uups-cli/internal/adapters/progress"
	"github.com/arcvault/uups-cli/internal/adapters/verification"
	"github.com/arcvault/uups-cli/internal/config"
	"github.com/arcvault/uups-cli/internal/usecase"
)

// BlockchainSet provides RPC-backed chain access
var BlockchainSet = wire.NewSet(
	blockchain.NewDialer,
	wire.Bind(new(usecase.ChainDialer), new(*blockchain.Dialer)),
)

// ArtifactSet provides compiled contract loading from the forge out directory
var ArtifactSet = wire.NewSet(
	artifacts.NewLoader,
	wire.Bind(new(usecase.ArtifactLoader), new(*artifacts.Loader)),
)

// ABISet provides initializer encoding and proxy event decoding
var ABISet = wire.NewSet(
	abi.NewCalldataEncoder,
	wire.Bind(new(usecase.CalldataEncoder), new(*abi.CalldataEncoder)),

	abi.NewEventParser,
	wire.Bind(new(usecase.ProxyEventParser), new(*abi.EventParser)),
)

// VerificationSet provides the configured source verifier
var VerificationSet = wire.NewSet(
	verification.NewVerifier,
)

// InteractiveSet provides interactive implementations
var InteractiveSet = wire.NewSet(
	interactive.NewSelectorAdapter,
	wire.Bind(new(usecase.NetworkSelector), new(*interactive.SelectorAdapter)),
	wire.Bind(new(usecase.Confirmer), new(*interactive.SelectorAdapter)),
)

// ProgressSet provides the progress sink matching the output mode
var ProgressSet = wire.NewSet(
	progress.NewSink,
)

// ConfigSet provides configuration-based implementations
var ConfigSet = wire.NewSet(
	config.ProvideNetworkResolver,
	wire.Bind(new(usecase.NetworkResolver), new(*config.NetworkResolver)),
)

// AllAdapters includes all adapter sets
var AllAdapters = wire.NewSet(
	BlockchainSet,
	ArtifactSet,
	ABISet,
	VerificationSet,
	InteractiveSet,
	ProgressSet,
	ConfigSet,
)
