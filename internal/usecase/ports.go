package usecase

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/arcvault/uups-cli/internal/domain"
	"github.com/arcvault/uups-cli/internal/domain/config"
)

// ChainDialer opens a chain connection for one operation
type ChainDialer interface {
	Dial(ctx context.Context, execCtx config.ExecutionContext) (ChainClient, error)
}

// ChainReader reads contract state. A nil block reads at the latest block.
type ChainReader interface {
	ChainID(ctx context.Context) (uint64, error)
	BlockNumber(ctx context.Context) (uint64, error)
	CodeAt(ctx context.Context, address common.Address, block *big.Int) ([]byte, error)
	StorageAt(ctx context.Context, address common.Address, slot common.Hash, block *big.Int) (common.Hash, error)
}

// ContractCreator sends contract creation transactions from the default signing identity
type ContractCreator interface {
	// Accounts lists the signing identities, the first is the default
	Accounts() []common.Address
	// CreateContract sends initCode as a creation transaction and blocks until it is mined
	CreateContract(ctx context.Context, initCode []byte) (*domain.TxReceipt, error)
}

// ChainClient is a connection to a single network
type ChainClient interface {
	ChainReader
	ContractCreator
	Close()
}

// ArtifactLoader loads compiled contracts
type ArtifactLoader interface {
	LoadArtifact(ctx context.Context, name string) (*domain.Artifact, error)
}

// CalldataEncoder builds the proxy constructor input
type CalldataEncoder interface {
	EncodeInitializer(params domain.InitParams) ([]byte, error)
	EncodeProxyConstructor(implementation common.Address, initData []byte) ([]byte, error)
}

// ProxyEventParser extracts ERC-1967 events from receipt logs
type ProxyEventParser interface {
	ParseProxyEvents(receipt *domain.TxReceipt) ([]domain.ProxyEvent, error)
}

// ContractVerifier submits source verification for a deployed contract
type ContractVerifier interface {
	Name() string
	Verify(ctx context.Context, req *domain.VerificationRequest) (*domain.VerificationResult, error)
}

// NetworkResolver resolves configured network names
type NetworkResolver interface {
	GetNetworks(ctx context.Context) []string
	ResolveNetwork(ctx context.Context, name string) (*config.Network, error)
}

// NetworkSelector asks the user to pick a network
type NetworkSelector interface {
	SelectNetwork(ctx context.Context, networks []string) (string, error)
}

// Confirmer asks the user for a yes/no confirmation
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// Progress tracking interfaces

// ProgressEvent represents a progress update
type ProgressEvent struct {
	Stage    string
	Message  string
	Spinner  bool
	Metadata interface{}
}

// ProgressSink receives progress events
type ProgressSink interface {
	OnProgress(ctx context.Context, event ProgressEvent)
	Info(message string)
	Error(message string)
}

// NopProgress is a no-op implementation of ProgressSink
type NopProgress struct{}

func (NopProgress) OnProgress(context.Context, ProgressEvent) {}
func (NopProgress) Info(string)                               {}
func (NopProgress) Error(string)                              {}
