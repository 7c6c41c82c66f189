package config

import "time"

const (
	DefaultLogicContract = "ContributionNFTUpgradeable"
	DefaultProxyContract = "ERC1967Proxy"
	DefaultInitializer   = "initialize(string,string,string,address,uint96,address)"
)

// ProjectConfig is the content of uups.toml
type ProjectConfig struct {
	// Network is the default network when none is given on the command line
	Network   string                   `mapstructure:"network"`
	Contracts ContractsConfig          `mapstructure:"contracts"`
	Verify    VerifyConfig             `mapstructure:"verify"`
	Networks  map[string]NetworkConfig `mapstructure:"networks"`
	Signer    SignerConfig             `mapstructure:"signer"`
}

// ContractsConfig names the artifacts to deploy
type ContractsConfig struct {
	// Artifacts is the build output directory; out/ and artifacts/ are searched when empty
	Artifacts   string `mapstructure:"artifacts"`
	Logic       string `mapstructure:"logic"`
	Proxy       string `mapstructure:"proxy"`
	Initializer string `mapstructure:"initializer"`
}

// VerifierBackend selects how verification is submitted
type VerifierBackend string

const (
	VerifierAuto      VerifierBackend = "auto"
	VerifierEtherscan VerifierBackend = "etherscan"
	VerifierForge     VerifierBackend = "forge"
)

// VerifyConfig configures source verification
type VerifyConfig struct {
	Backend         VerifierBackend `mapstructure:"backend"`
	CompilerVersion string          `mapstructure:"compiler_version"`
	StandardJSON    string          `mapstructure:"standard_json"`
	PollInterval    time.Duration   `mapstructure:"poll_interval"`
	MaxPolls        int             `mapstructure:"max_polls"`
	ForgePath       string          `mapstructure:"forge_path"`
}

// NetworkConfig is a [networks.<name>] table
type NetworkConfig struct {
	RPCURL         string `mapstructure:"rpc_url"`
	ChainID        uint64 `mapstructure:"chain_id"`
	ExplorerURL    string `mapstructure:"explorer_url"`
	ExplorerAPIURL string `mapstructure:"explorer_api_url"`
	ExplorerAPIKey string `mapstructure:"explorer_api_key"`
}

// WithDefaults fills unset contract and verification settings
func (p *ProjectConfig) WithDefaults() *ProjectConfig {
	if p.Contracts.Logic == "" {
		p.Contracts.Logic = DefaultLogicContract
	}
	if p.Contracts.Proxy == "" {
		p.Contracts.Proxy = DefaultProxyContract
	}
	if p.Contracts.Initializer == "" {
		p.Contracts.Initializer = DefaultInitializer
	}
	if p.Verify.Backend == "" {
		p.Verify.Backend = VerifierAuto
	}
	if p.Verify.PollInterval <= 0 {
		p.Verify.PollInterval = 5 * time.Second
	}
	if p.Verify.MaxPolls <= 0 {
		p.Verify.MaxPolls = 30
	}
	if p.Verify.ForgePath == "" {
		p.Verify.ForgePath = "forge"
	}
	return p
}

// ResolvedBackend returns the concrete backend for VerifierAuto
func (v VerifyConfig) ResolvedBackend() VerifierBackend {
	if v.Backend != VerifierAuto && v.Backend != "" {
		return v.Backend
	}
	if v.StandardJSON != "" {
		return VerifierEtherscan
	}
	return VerifierForge
}
