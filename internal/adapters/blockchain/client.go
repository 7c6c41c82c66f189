package blockchain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/arcvault/uups-cli/internal/domain"
	"github.com/arcvault/uups-cli/internal/usecase"
)

const (
	// DefaultPollInterval is how often a pending receipt is polled
	DefaultPollInterval = 2 * time.Second

	// gas estimates are scaled by gasMarginPercent
	gasMarginPercent = 120
)

// Backend is the RPC surface used by Client. *ethclient.Client and the
// simulated backend client both satisfy it.
type Backend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	BlockNumber(ctx context.Context) (uint64, error)
	CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error)
	StorageAt(ctx context.Context, account common.Address, key common.Hash, blockNumber *big.Int) ([]byte, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// Client implements usecase.ChainClient on top of a Backend
type Client struct {
	backend      Backend
	closer       func()
	keys         []*ecdsa.PrivateKey
	accounts     []common.Address
	chainID      *big.Int
	pollInterval time.Duration
	log          *slog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithCloser sets the function run on Close
func WithCloser(closer func()) Option {
	return func(c *Client) { c.closer = closer }
}

// WithPollInterval sets the receipt polling interval
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// WithLogger sets the client logger
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// NewClient reads the chain ID from backend and checks it against expectedChainID (0 skips the check)
func NewClient(ctx context.Context, backend Backend, keys []*ecdsa.PrivateKey, expectedChainID uint64, opts ...Option) (*Client, error) {
	c := &Client{
		backend:      backend,
		keys:         keys,
		accounts:     make([]common.Address, 0, len(keys)),
		pollInterval: DefaultPollInterval,
		log:          slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	for _, key := range keys {
		c.accounts = append(c.accounts, crypto.PubkeyToAddress(key.PublicKey))
	}

	chainID, err := backend.ChainID(ctx)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("%w: get chain ID: %w", domain.ErrRPCUnavailable, err)
	}
	if expectedChainID != 0 && chainID.Uint64() != expectedChainID {
		c.Close()
		return nil, fmt.Errorf("%w: expected chain %d, endpoint reports %d", domain.ErrNetworkMismatch, expectedChainID, chainID.Uint64())
	}
	c.chainID = chainID

	return c, nil
}

// ChainID returns the chain ID read at connection time
func (c *Client) ChainID(ctx context.Context) (uint64, error) {
	return c.chainID.Uint64(), nil
}

// BlockNumber returns the latest block number
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	return c.backend.BlockNumber(ctx)
}

// CodeAt returns the runtime code at address as of block, nil meaning latest
func (c *Client) CodeAt(ctx context.Context, address common.Address, block *big.Int) ([]byte, error) {
	return c.backend.CodeAt(ctx, address, block)
}

// StorageAt returns a single storage word of address as of block, nil meaning latest
func (c *Client) StorageAt(ctx context.Context, address common.Address, slot common.Hash, block *big.Int) (common.Hash, error) {
	word, err := c.backend.StorageAt(ctx, address, slot, block)
	if err != nil {
		return common.Hash{}, err
	}
	return common.BytesToHash(word), nil
}

// Accounts returns the signing identities, default first
func (c *Client) Accounts() []common.Address {
	return c.accounts
}

// CreateContract signs and sends a creation transaction from the default account and waits for it
func (c *Client) CreateContract(ctx context.Context, initCode []byte) (*domain.TxReceipt, error) {
	if len(c.keys) == 0 {
		return nil, domain.ErrNoSigner
	}
	key, from := c.keys[0], c.accounts[0]

	nonce, err := c.backend.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("get nonce: %w", err)
	}

	gas, err := c.backend.EstimateGas(ctx, ethereum.CallMsg{From: from, Data: initCode})
	if err != nil {
		if isRevert(err) {
			return nil, fmt.Errorf("%w: estimate gas: %v", domain.ErrTransactionReverted, err)
		}
		return nil, fmt.Errorf("estimate gas: %w", err)
	}
	gas = gas * gasMarginPercent / 100

	tx, err := c.newTx(ctx, nonce, gas, initCode)
	if err != nil {
		return nil, err
	}

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(c.chainID), key)
	if err != nil {
		return nil, fmt.Errorf("sign tx: %w", err)
	}
	if err := c.backend.SendTransaction(ctx, signed); err != nil {
		return nil, fmt.Errorf("send tx: %w", err)
	}
	c.log.Debug("sent creation tx", "tx", signed.Hash().Hex(), "from", from.Hex(), "nonce", nonce, "gas", gas)

	receipt, err := c.WaitForReceipt(ctx, signed.Hash())
	if err != nil {
		return nil, fmt.Errorf("wait for %s: %w", signed.Hash().Hex(), err)
	}

	out := &domain.TxReceipt{
		TxHash:          receipt.TxHash,
		ContractAddress: receipt.ContractAddress,
		GasUsed:         receipt.GasUsed,
		Status:          receipt.Status,
		Logs:            receipt.Logs,
	}
	if receipt.BlockNumber != nil {
		out.BlockNumber = receipt.BlockNumber.Uint64()
	}
	return out, nil
}

// WaitForReceipt polls until the transaction is mined or ctx is done
func (c *Client) WaitForReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := c.backend.TransactionReceipt(ctx, txHash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Close releases the underlying connection
func (c *Client) Close() {
	if c.closer != nil {
		c.closer()
	}
}

// newTx builds an EIP-1559 transaction, or a legacy one on chains without a base fee
func (c *Client) newTx(ctx context.Context, nonce, gas uint64, data []byte) (*types.Transaction, error) {
	head, err := c.backend.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("get latest header: %w", err)
	}

	if head.BaseFee == nil {
		gasPrice, err := c.backend.SuggestGasPrice(ctx)
		if err != nil {
			return nil, fmt.Errorf("suggest gas price: %w", err)
		}
		return types.NewTx(&types.LegacyTx{
			Nonce:    nonce,
			GasPrice: gasPrice,
			Gas:      gas,
			Data:     data,
		}), nil
	}

	tip, err := c.backend.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, fmt.Errorf("suggest gas tip: %w", err)
	}
	feeCap := new(big.Int).Add(tip, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))

	return types.NewTx(&types.DynamicFeeTx{
		ChainID:   c.chainID,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       gas,
		Data:      data,
	}), nil
}

func isRevert(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "revert") || strings.Contains(msg, "invalid opcode")
}

var _ usecase.ChainClient = (*Client)(nil)
