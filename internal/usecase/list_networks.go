package usecase

import (
	"context"

	"github.com/arcvault/uups-cli/internal/domain/config"
)

// ListNetworksParams contains parameters for listing networks
type ListNetworksParams struct {
	// Probe dials each network to read its live chain ID
	Probe bool
}

// ListNetworksResult contains the result of listing networks
type ListNetworksResult struct {
	Networks []NetworkStatus
	Current  string
}

// NetworkStatus represents the status of a network
type NetworkStatus struct {
	Name    string
	ChainID uint64
	RPCURL  string
	Source  string
	Error   error
}

// ListNetworks is a use case for listing available networks
type ListNetworks struct {
	resolver NetworkResolver
	dialer   ChainDialer
}

// NewListNetworks creates a new ListNetworks use case
func NewListNetworks(resolver NetworkResolver, dialer ChainDialer) *ListNetworks {
	return &ListNetworks{
		resolver: resolver,
		dialer:   dialer,
	}
}

// Run executes the use case
func (uc *ListNetworks) Run(ctx context.Context, execCtx config.ExecutionContext, params ListNetworksParams) (*ListNetworksResult, error) {
	networkNames := uc.resolver.GetNetworks(ctx)

	result := &ListNetworksResult{
		Networks: make([]NetworkStatus, 0, len(networkNames)),
	}
	if execCtx.Network != nil {
		result.Current = execCtx.Network.Name
	}

	for _, name := range networkNames {
		status := NetworkStatus{Name: name}

		network, err := uc.resolver.ResolveNetwork(ctx, name)
		if err != nil {
			status.Error = err
			result.Networks = append(result.Networks, status)
			continue
		}
		status.ChainID = network.ChainID
		status.RPCURL = network.RPCURL
		status.Source = network.Source

		if params.Probe {
			status.ChainID, status.Error = uc.probe(ctx, network)
		}

		result.Networks = append(result.Networks, status)
	}

	return result, nil
}

func (uc *ListNetworks) probe(ctx context.Context, network *config.Network) (uint64, error) {
	client, err := uc.dialer.Dial(ctx, config.ExecutionContext{Network: network})
	if err != nil {
		return network.ChainID, err
	}
	defer client.Close()
	return client.ChainID(ctx)
}
