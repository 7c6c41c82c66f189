package blockchain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/arcvault/uups-cli/internal/domain"
	"github.com/arcvault/uups-cli/internal/domain/config"
	"github.com/arcvault/uups-cli/internal/usecase"
)

// Dialer opens ethclient connections for an execution context
type Dialer struct {
	log *slog.Logger
}

// NewDialer creates a new Dialer
func NewDialer(log *slog.Logger) *Dialer {
	return &Dialer{log: log.With("component", "blockchain")}
}

// Dial connects to the context's network and loads its signing keys.
// Keys are parsed before any network traffic.
func (d *Dialer) Dial(ctx context.Context, execCtx config.ExecutionContext) (usecase.ChainClient, error) {
	network := execCtx.Network
	if network == nil {
		return nil, &domain.ConfigError{Field: "network", Err: domain.ErrNoNetwork}
	}
	if network.RPCURL == "" {
		return nil, &domain.ConfigError{Field: "network", Value: network.Name, Err: fmt.Errorf("no rpc url configured")}
	}

	keys, err := ParsePrivateKeys(execCtx.Signer.PrivateKeys)
	if err != nil {
		return nil, err
	}

	d.log.Debug("dialing", "network", network.Name, "chainId", network.ChainID)
	ec, err := ethclient.DialContext(ctx, network.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %w", domain.ErrRPCUnavailable, network.Name, err)
	}

	client, err := NewClient(ctx, ec, keys, network.ChainID,
		WithCloser(ec.Close),
		WithLogger(d.log),
	)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// ParsePrivateKeys parses hex private keys, with or without 0x prefix
func ParsePrivateKeys(raw []string) ([]*ecdsa.PrivateKey, error) {
	keys := make([]*ecdsa.PrivateKey, 0, len(raw))
	for i, v := range raw {
		v = strings.TrimPrefix(strings.TrimSpace(v), "0x")
		if v == "" {
			continue
		}
		key, err := crypto.HexToECDSA(v)
		if err != nil {
			return nil, &domain.ConfigError{Field: fmt.Sprintf("signer.private_keys[%d]", i), Err: fmt.Errorf("invalid private key: %w", err)}
		}
		keys = append(keys, key)
	}
	return keys, nil
}

var _ usecase.ChainDialer = (*Dialer)(nil)
