package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/arcvault/uups-cli/internal/domain"
	"github.com/arcvault/uups-cli/internal/domain/config"
)

// ResolveProxyParams contains parameters for resolving a proxy
type ResolveProxyParams struct {
	Proxy common.Address
}

// ResolveProxy reads the ERC-1967 slots of a proxy
type ResolveProxy struct {
	dialer ChainDialer
	log    *slog.Logger
}

// NewResolveProxy creates a new ResolveProxy use case
func NewResolveProxy(dialer ChainDialer, log *slog.Logger) *ResolveProxy {
	return &ResolveProxy{
		dialer: dialer,
		log:    log.With("component", "ResolveProxy"),
	}
}

// Run dials the network and reads the proxy's slots. Every call goes to the chain.
func (uc *ResolveProxy) Run(ctx context.Context, execCtx config.ExecutionContext, params ResolveProxyParams) (*domain.ProxyRecord, error) {
	if execCtx.Network == nil {
		return nil, &domain.ConfigError{Field: "network", Err: domain.ErrNoNetwork}
	}

	client, err := uc.dialer.Dial(ctx, execCtx)
	if err != nil {
		if domain.IsConfigError(err) {
			return nil, err
		}
		return nil, &domain.ResolutionError{Address: params.Proxy, Err: rpcError(err)}
	}
	defer client.Close()

	record, err := ReadProxyRecord(ctx, client, params.Proxy)
	if err != nil {
		return nil, err
	}

	uc.log.Debug("resolved proxy",
		"proxy", record.Proxy.Hex(),
		"implementation", record.Implementation.Hex(),
		"block", record.BlockNumber,
	)
	return record, nil
}

// ReadProxyRecord reads the code and ERC-1967 slots of proxy over an open
// connection, all pinned to the same block.
func ReadProxyRecord(ctx context.Context, reader ChainReader, proxy common.Address) (*domain.ProxyRecord, error) {
	block, err := reader.BlockNumber(ctx)
	if err != nil {
		return nil, &domain.ResolutionError{Address: proxy, Err: rpcError(err)}
	}
	at := new(big.Int).SetUint64(block)

	code, err := reader.CodeAt(ctx, proxy, at)
	if err != nil {
		return nil, &domain.ResolutionError{Address: proxy, Err: rpcError(err)}
	}
	if len(code) == 0 {
		return nil, &domain.ResolutionError{Address: proxy, Err: domain.ErrNotContract}
	}

	slots := make(map[common.Hash]common.Hash, 3)
	for _, slot := range []common.Hash{domain.ImplementationSlot, domain.AdminSlot, domain.BeaconSlot} {
		word, err := reader.StorageAt(ctx, proxy, slot, at)
		if err != nil {
			return nil, &domain.ResolutionError{Address: proxy, Err: rpcError(err)}
		}
		slots[slot] = word
	}

	record := &domain.ProxyRecord{
		Proxy:       proxy,
		Admin:       domain.SlotAddress(slots[domain.AdminSlot]),
		Beacon:      domain.SlotAddress(slots[domain.BeaconSlot]),
		BlockNumber: block,
	}
	if impl := domain.SlotAddress(slots[domain.ImplementationSlot]); impl != nil {
		record.Implementation = *impl
	}
	return record, nil
}

// rpcError tags transport failures with ErrRPCUnavailable unless already classified
func rpcError(err error) error {
	if errors.Is(err, domain.ErrRPCUnavailable) || errors.Is(err, domain.ErrNetworkMismatch) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrRPCUnavailable, err)
}
