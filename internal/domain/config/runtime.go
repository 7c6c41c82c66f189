package config

import (
	"time"

	"github.com/arcvault/uups-cli/internal/domain"
)

// OutputFormat selects how command results are printed
type OutputFormat string

const (
	OutputText OutputFormat = "text"
	OutputJSON OutputFormat = "json"
	OutputYAML OutputFormat = "yaml"
)

// RuntimeConfig represents the complete runtime configuration
// This is injected into adapters and contains all resolved settings
type RuntimeConfig struct {
	// Core settings
	ProjectRoot string
	ConfigFile  string // uups.toml path, empty if none was found

	// Context settings
	NetworkName string   // requested network, may be empty
	Network     *Network // nil if not specified or not resolvable
	Signer      SignerConfig
	Fallback    NetworkFallback

	// Execution settings
	Debug          bool
	NonInteractive bool
	Output         OutputFormat
	Timeout        time.Duration
	LogLevel       string

	// Command-specific settings (only populated for relevant commands)
	Deploy    domain.DeploymentOverrides
	DryRun    bool
	AssumeYes bool

	// Resolved configurations
	Project       *ProjectConfig
	FoundryConfig *FoundryConfig
}

// ExecutionContext returns the explicit per-invocation chain context
func (c *RuntimeConfig) ExecutionContext() ExecutionContext {
	return ExecutionContext{
		Network: c.Network,
		Signer:  c.Signer,
	}
}

// ExecutionContext carries the network and signing identity of one operation.
// Use cases receive it as an argument instead of reading process-wide state.
type ExecutionContext struct {
	Network *Network
	Signer  SignerConfig
}

// Network represents network configuration
type Network struct {
	ChainID        uint64 `json:"chainId" yaml:"chainId"`
	Name           string `json:"name" yaml:"name"`
	RPCURL         string `json:"rpcUrl" yaml:"rpcUrl"`
	ExplorerURL    string `json:"explorerUrl,omitempty" yaml:"explorerUrl,omitempty"`
	ExplorerAPIURL string `json:"explorerApiUrl,omitempty" yaml:"explorerApiUrl,omitempty"`
	ExplorerAPIKey string `json:"-" yaml:"-"`
	Source         string `json:"source" yaml:"source"` // uups.toml, foundry.toml or env
}

// IsLocal reports whether the network is a local development chain
func (n *Network) IsLocal() bool {
	return n.ChainID == 31337 || n.ChainID == 1337
}

// NetworkFallback holds the RPC_URL and ETHERSCAN_API_KEY values used
// when a network is not configured in uups.toml or foundry.toml
type NetworkFallback struct {
	RPCURL          string
	EtherscanAPIKey string
}

// SignerConfig holds the hex private keys available for signing.
// The first key is the default signing identity.
type SignerConfig struct {
	PrivateKeys []string `mapstructure:"private_keys" json:"-" yaml:"-"`
}

// HasSigner reports whether at least one key is configured
func (s SignerConfig) HasSigner() bool {
	return len(s.PrivateKeys) > 0
}
