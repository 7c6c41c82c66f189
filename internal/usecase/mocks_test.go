package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/arcvault/uups-cli/internal/domain"
	"github.com/arcvault/uups-cli/internal/domain/config"
)

var (
	testDeployer     = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	testProxyCode    = []byte{0xfe, 0xed, 0x01}
	testLogicCode    = []byte{0x60, 0x00, 0x00}
	testNetwork      = &config.Network{Name: "sepolia", ChainID: 11155111, RPCURL: "http://rpc.invalid", ExplorerURL: "https://sepolia.etherscan.io"}
	testLocalNetwork = &config.Network{Name: "anvil", ChainID: 31337, RPCURL: "http://127.0.0.1:8545"}
	testSigner       = config.SignerConfig{PrivateKeys: []string{"ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"}}
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeChain is an in-memory chain. Proxy creations are recognised by the proxy
// bytecode prefix; their constructor args are impl(20 bytes) ++ initializer data.
type fakeChain struct {
	chainID  uint64
	block    uint64
	nonce    uint64
	accounts []common.Address
	code     map[common.Address][]byte
	storage  map[common.Address]map[common.Hash]common.Hash

	// revertInit makes the proxy constructor fail for the given initializer data
	revertInit func(initData []byte) bool
	// skipSlot creates proxies without writing the implementation slot
	skipSlot bool

	dialErr    error
	storageErr error
	dials      int
	creations  int
	// readBlocks records the block argument of every state read
	readBlocks []*big.Int
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		chainID:  11155111,
		block:    100,
		accounts: []common.Address{testDeployer},
		code:     make(map[common.Address][]byte),
		storage:  make(map[common.Address]map[common.Hash]common.Hash),
	}
}

func (c *fakeChain) setSlot(addr common.Address, slot common.Hash, value common.Address) {
	if c.storage[addr] == nil {
		c.storage[addr] = make(map[common.Hash]common.Hash)
	}
	c.storage[addr][slot] = common.BytesToHash(value.Bytes())
}

func (c *fakeChain) Dial(ctx context.Context, execCtx config.ExecutionContext) (ChainClient, error) {
	c.dials++
	if c.dialErr != nil {
		return nil, c.dialErr
	}
	return c, nil
}

func (c *fakeChain) ChainID(ctx context.Context) (uint64, error)     { return c.chainID, nil }
func (c *fakeChain) BlockNumber(ctx context.Context) (uint64, error) { return c.block, nil }
func (c *fakeChain) Accounts() []common.Address                      { return c.accounts }
func (c *fakeChain) Close()                                          {}

func (c *fakeChain) CodeAt(ctx context.Context, address common.Address, block *big.Int) ([]byte, error) {
	c.readBlocks = append(c.readBlocks, block)
	return c.code[address], nil
}

func (c *fakeChain) StorageAt(ctx context.Context, address common.Address, slot common.Hash, block *big.Int) (common.Hash, error) {
	c.readBlocks = append(c.readBlocks, block)
	if c.storageErr != nil {
		return common.Hash{}, c.storageErr
	}
	return c.storage[address][slot], nil
}

func (c *fakeChain) CreateContract(ctx context.Context, initCode []byte) (*domain.TxReceipt, error) {
	c.creations++
	addr := crypto.CreateAddress(c.accounts[0], c.nonce)
	txHash := crypto.Keccak256Hash(addr.Bytes())
	c.nonce++
	c.block++

	receipt := &domain.TxReceipt{
		TxHash:      txHash,
		BlockNumber: c.block,
		Status:      types.ReceiptStatusSuccessful,
	}

	if bytes.HasPrefix(initCode, testProxyCode) {
		args := initCode[len(testProxyCode):]
		impl := common.BytesToAddress(args[:common.AddressLength])
		initData := args[common.AddressLength:]
		if c.revertInit != nil && c.revertInit(initData) {
			receipt.Status = types.ReceiptStatusFailed
			return receipt, nil
		}
		c.code[addr] = []byte{0x36, 0x3d}
		if !c.skipSlot {
			c.setSlot(addr, domain.ImplementationSlot, impl)
		}
	} else {
		c.code[addr] = []byte{0x00}
	}

	receipt.ContractAddress = addr
	return receipt, nil
}

// fakeArtifacts serves fixed bytecode by contract name
type fakeArtifacts struct {
	artifacts map[string]*domain.Artifact
	calls     int
}

func newFakeArtifacts() *fakeArtifacts {
	return &fakeArtifacts{artifacts: map[string]*domain.Artifact{
		config.DefaultLogicContract: {
			Name:            config.DefaultLogicContract,
			SourcePath:      "contracts/ContributionNFTUpgradeable.sol",
			CompilerVersion: "0.8.20+commit.a1b79de6",
			Bytecode:        testLogicCode,
		},
		config.DefaultProxyContract: {
			Name:     config.DefaultProxyContract,
			Bytecode: testProxyCode,
		},
	}}
}

func (f *fakeArtifacts) LoadArtifact(ctx context.Context, name string) (*domain.Artifact, error) {
	f.calls++
	a, ok := f.artifacts[name]
	if !ok {
		return nil, domain.ErrArtifactNotFound
	}
	return a, nil
}

// fakeEncoder encodes the initializer as "init:<name>|<symbol>|..." and the
// proxy constructor as impl ++ data
type fakeEncoder struct {
	lastParams *domain.InitParams
}

func (e *fakeEncoder) EncodeInitializer(params domain.InitParams) ([]byte, error) {
	e.lastParams = &params
	return []byte("init:" + params.Name + "|" + params.Symbol + "|" + params.BaseURI), nil
}

func (e *fakeEncoder) EncodeProxyConstructor(implementation common.Address, initData []byte) ([]byte, error) {
	out := append([]byte{}, implementation.Bytes()...)
	return append(out, initData...), nil
}

type fakeEvents struct {
	events []domain.ProxyEvent
	err    error
}

func (f *fakeEvents) ParseProxyEvents(receipt *domain.TxReceipt) ([]domain.ProxyEvent, error) {
	return f.events, f.err
}

type fakeConfirmer struct {
	answer bool
	asked  int
}

func (f *fakeConfirmer) Confirm(ctx context.Context, prompt string) (bool, error) {
	f.asked++
	return f.answer, nil
}

type fakeVerifier struct {
	requests []*domain.VerificationRequest
	verifyFn func(req *domain.VerificationRequest) (*domain.VerificationResult, error)
}

func (f *fakeVerifier) Name() string { return "fake" }

func (f *fakeVerifier) Verify(ctx context.Context, req *domain.VerificationRequest) (*domain.VerificationResult, error) {
	f.requests = append(f.requests, req)
	if f.verifyFn != nil {
		return f.verifyFn(req)
	}
	return &domain.VerificationResult{Status: domain.VerificationStatusVerified, GUID: "guid-1"}, nil
}

type fakeResolver struct {
	networks map[string]*config.Network
	order    []string
}

func (f *fakeResolver) GetNetworks(ctx context.Context) []string { return f.order }

func (f *fakeResolver) ResolveNetwork(ctx context.Context, name string) (*config.Network, error) {
	n, ok := f.networks[name]
	if !ok {
		return nil, errors.New("network not configured")
	}
	return n, nil
}

func testRuntimeConfig() *config.RuntimeConfig {
	project := (&config.ProjectConfig{}).WithDefaults()
	return &config.RuntimeConfig{Project: project}
}
