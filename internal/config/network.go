package config

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/samber/lo"

	"github.com/arcvault/uups-cli/internal/domain"
	"github.com/arcvault/uups-cli/internal/domain/config"
	"github.com/arcvault/uups-cli/internal/usecase"
)

const (
	SourceProject = "uups.toml"
	SourceFoundry = "foundry.toml"
	SourceEnv     = "env"

	// EnvNetworkName names the network built from RPC_URL alone
	EnvNetworkName = "default"
)

// knownChainIDs maps conventional network names to chain IDs so that
// explorers can be derived without asking the RPC
var knownChainIDs = map[string]uint64{
	"mainnet":          1,
	"ethereum":         1,
	"sepolia":          11155111,
	"holesky":          17000,
	"optimism":         10,
	"optimism-sepolia": 11155420,
	"polygon":          137,
	"polygon-amoy":     80002,
	"base":             8453,
	"base-sepolia":     84532,
	"arbitrum":         42161,
	"arbitrum-sepolia": 421614,
	"avalanche":        43114,
	"bsc":              56,
	"celo":             42220,
	"anvil":            31337,
	"localhost":        31337,
}

// NetworkResolver resolves network names from uups.toml, foundry.toml and the
// RPC_URL fallback, in that order. Nothing is cached between calls.
type NetworkResolver struct {
	project  *config.ProjectConfig
	foundry  *config.FoundryConfig
	fallback config.NetworkFallback
}

// NewNetworkResolver creates a new network resolver
func NewNetworkResolver(project *config.ProjectConfig, foundry *config.FoundryConfig, fallback config.NetworkFallback) *NetworkResolver {
	return &NetworkResolver{
		project:  project,
		foundry:  foundry,
		fallback: fallback,
	}
}

// ProvideNetworkResolver creates a NetworkResolver for Wire dependency injection
func ProvideNetworkResolver(cfg *config.RuntimeConfig) *NetworkResolver {
	return NewNetworkResolver(cfg.Project, cfg.FoundryConfig, cfg.Fallback)
}

// GetNetworks returns the sorted names of every configured network
func (r *NetworkResolver) GetNetworks(ctx context.Context) []string {
	var names []string
	if r.project != nil {
		names = append(names, lo.Keys(r.project.Networks)...)
	}
	if r.foundry != nil {
		names = append(names, lo.Keys(r.foundry.RpcEndpoints)...)
	}
	if len(names) == 0 && r.fallback.RPCURL != "" {
		names = append(names, EnvNetworkName)
	}
	names = lo.Uniq(names)
	sort.Strings(names)
	return names
}

// ResolveNetwork resolves a network name to its configuration
func (r *NetworkResolver) ResolveNetwork(ctx context.Context, name string) (*config.Network, error) {
	name = strings.TrimSpace(name)

	if r.project != nil {
		if nc, ok := r.project.Networks[name]; ok {
			return r.fromProject(name, nc)
		}
	}

	if r.foundry != nil {
		if rpcURL, ok := r.foundry.RpcEndpoints[name]; ok {
			return r.fromFoundry(name, rpcURL)
		}
	}

	if r.fallback.RPCURL != "" {
		network := &config.Network{
			Name:    name,
			RPCURL:  r.fallback.RPCURL,
			ChainID: knownChainIDs[name],
			Source:  SourceEnv,
		}
		if network.Name == "" {
			network.Name = EnvNetworkName
		}
		r.fillExplorer(network, "", "", "")
		return network, nil
	}

	return nil, r.unknownNetwork(name)
}

func (r *NetworkResolver) fromProject(name string, nc config.NetworkConfig) (*config.Network, error) {
	if nc.RPCURL == "" {
		return nil, &domain.ConfigError{Field: fmt.Sprintf("networks.%s.rpc_url", name), Err: fmt.Errorf("rpc_url is required")}
	}
	network := &config.Network{
		Name:    name,
		RPCURL:  nc.RPCURL,
		ChainID: nc.ChainID,
		Source:  SourceProject,
	}
	if network.ChainID == 0 {
		network.ChainID = knownChainIDs[name]
	}
	r.fillExplorer(network, nc.ExplorerURL, nc.ExplorerAPIURL, nc.ExplorerAPIKey)
	return network, nil
}

func (r *NetworkResolver) fromFoundry(name, rpcURL string) (*config.Network, error) {
	if rpcURL == "" {
		return nil, &domain.ConfigError{
			Field: fmt.Sprintf("rpc_endpoints.%s", name),
			Err:   fmt.Errorf("endpoint is empty (is its environment variable set?)"),
		}
	}
	network := &config.Network{
		Name:    name,
		RPCURL:  rpcURL,
		ChainID: knownChainIDs[name],
		Source:  SourceFoundry,
	}
	r.fillExplorer(network, "", "", "")
	return network, nil
}

// fillExplorer applies explicit explorer settings, then foundry's [etherscan]
// table, then the ETHERSCAN_API_KEY fallback and the chain's public explorer
func (r *NetworkResolver) fillExplorer(network *config.Network, url, apiURL, apiKey string) {
	if r.foundry != nil {
		if es, ok := r.foundry.Etherscan[network.Name]; ok {
			apiURL = lo.Ternary(apiURL != "", apiURL, es.URL)
			apiKey = lo.Ternary(apiKey != "", apiKey, es.Key)
		}
	}
	if apiKey == "" {
		apiKey = r.fallback.EtherscanAPIKey
	}
	if url == "" {
		url = ExplorerURL(network.ChainID)
	}

	network.ExplorerURL = strings.TrimRight(url, "/")
	network.ExplorerAPIURL = apiURL
	network.ExplorerAPIKey = apiKey
}

func (r *NetworkResolver) unknownNetwork(name string) error {
	if name == "" {
		return &domain.ConfigError{Field: "network", Err: fmt.Errorf("%w: pass --network or set RPC_URL", domain.ErrNoNetwork)}
	}

	available := r.GetNetworks(context.Background())
	msg := fmt.Errorf("%w: %q is not configured", domain.ErrNoNetwork, name)
	if matches := fuzzy.Find(name, available); len(matches) > 0 {
		msg = fmt.Errorf("%w: %q is not configured, did you mean %q?", domain.ErrNoNetwork, name, matches[0].Str)
	} else if len(available) > 0 {
		msg = fmt.Errorf("%w: %q is not configured (available: %s)", domain.ErrNoNetwork, name, strings.Join(available, ", "))
	}
	return &domain.ConfigError{Field: "network", Value: name, Err: msg}
}

// ExplorerURL returns the public block explorer for well known chains
func ExplorerURL(chainID uint64) string {
	switch chainID {
	case 1:
		return "https://etherscan.io"
	case 11155111:
		return "https://sepolia.etherscan.io"
	case 17000:
		return "https://holesky.etherscan.io"
	case 10:
		return "https://optimistic.etherscan.io"
	case 11155420:
		return "https://sepolia-optimism.etherscan.io"
	case 137:
		return "https://polygonscan.com"
	case 80002:
		return "https://amoy.polygonscan.com"
	case 8453:
		return "https://basescan.org"
	case 84532:
		return "https://sepolia.basescan.org"
	case 42161:
		return "https://arbiscan.io"
	case 421614:
		return "https://sepolia.arbiscan.io"
	case 43114:
		return "https://snowtrace.io"
	case 56:
		return "https://bscscan.com"
	case 42220:
		return "https://celoscan.io"
	default:
		return ""
	}
}

var _ usecase.NetworkResolver = (*NetworkResolver)(nil)
