package blockchain

import (
	"context"
	"crypto/ecdsa"
	"io"
	"log/slog"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient/simulated"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcvault/uups-cli/internal/domain"
)

// Hand-assembled contracts for the simulated chain.
//
// initCode wraps a runtime: CODECOPY it from offset 12 and RETURN it.
// testProxyInitCode mimics ERC1967Proxy's constructor: it copies its
// (address, bytes) constructor args into memory, stores the address in the
// implementation slot, DELEGATECALLs it with the bytes and reverts if that fails.
var (
	stopRuntime   = []byte{0x00}                   // STOP
	revertRuntime = []byte{0x60, 0x00, 0x80, 0xfd} // PUSH1 0 DUP1 REVERT
)

func initCode(runtime []byte) []byte {
	n := byte(len(runtime))
	code := []byte{0x60, n, 0x60, 0x0c, 0x60, 0x00, 0x39, 0x60, n, 0x60, 0x00, 0xf3}
	return append(code, runtime...)
}

func testProxyInitCode() []byte {
	code := []byte{
		0x60, 0x4e, 0x38, 0x03, // PUSH1 len(code) CODESIZE SUB
		0x60, 0x4e, 0x60, 0x00, 0x39, // CODECOPY(0, len(code), args)
		0x60, 0x00, 0x51, // MLOAD(0) implementation
		0x7f, // PUSH32 slot
	}
	code = append(code, domain.ImplementationSlot.Bytes()...)
	code = append(code,
		0x55,                   // SSTORE
		0x60, 0x00, 0x60, 0x00, // ret size, ret offset
		0x60, 0x40, 0x51, // MLOAD(0x40) data length
		0x60, 0x60, // data offset
		0x60, 0x00, 0x51, // MLOAD(0) implementation
		0x5a, 0xf4, // GAS DELEGATECALL
		0x60, 0x43, 0x57, // JUMPI ok
		0x60, 0x00, 0x80, 0xfd, // REVERT
		0x5b,                         // JUMPDEST ok
		0x60, 0x00, 0x60, 0x00, 0x53, // MSTORE8(0, 0)
		0x60, 0x01, 0x60, 0x00, 0xf3, // RETURN 1 byte runtime
	)
	return code
}

// upgraderRuntime stores calldata word 0 into the implementation slot
func upgraderRuntime() []byte {
	code := []byte{0x60, 0x00, 0x35, 0x7f}
	code = append(code, domain.ImplementationSlot.Bytes()...)
	return append(code, 0x55, 0x00)
}

// autoCommitBackend mines a block after every sent transaction
type autoCommitBackend struct {
	simulated.Client
	backend *simulated.Backend
}

func (b *autoCommitBackend) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	if err := b.Client.SendTransaction(ctx, tx); err != nil {
		return err
	}
	b.backend.Commit()
	return nil
}

type simChain struct {
	backend *simulated.Backend
	client  *autoCommitBackend
	key     *ecdsa.PrivateKey
	from    common.Address
}

func newSimChain(t *testing.T, extra types.GenesisAlloc) *simChain {
	t.Helper()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	from := crypto.PubkeyToAddress(key.PublicKey)

	alloc := types.GenesisAlloc{
		from: {Balance: new(big.Int).Mul(big.NewInt(100), big.NewInt(1e18))},
	}
	for addr, account := range extra {
		alloc[addr] = account
	}

	backend := simulated.NewBackend(alloc)
	t.Cleanup(func() { backend.Close() })

	return &simChain{
		backend: backend,
		client:  &autoCommitBackend{Client: backend.Client(), backend: backend},
		key:     key,
		from:    from,
	}
}

func (s *simChain) newClient(t *testing.T) *Client {
	t.Helper()
	client, err := NewClient(context.Background(), s.client, []*ecdsa.PrivateKey{s.key}, 0,
		WithPollInterval(10*time.Millisecond),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	require.NoError(t, err)
	return client
}

// sendCall sends a plain call transaction outside of Client and requires it to succeed
func (s *simChain) sendCall(t *testing.T, client *Client, to common.Address, data []byte) {
	t.Helper()
	ctx := context.Background()

	nonce, err := s.client.PendingNonceAt(ctx, s.from)
	require.NoError(t, err)
	head, err := s.client.HeaderByNumber(ctx, nil)
	require.NoError(t, err)
	chainID, err := s.client.ChainID(ctx)
	require.NoError(t, err)
	gas, err := s.client.EstimateGas(ctx, ethereum.CallMsg{From: s.from, To: &to, Data: data})
	require.NoError(t, err)

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: big.NewInt(1),
		GasFeeCap: new(big.Int).Mul(head.BaseFee, big.NewInt(2)),
		Gas:       gas * 2,
		To:        &to,
		Data:      data,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), s.key)
	require.NoError(t, err)
	require.NoError(t, s.client.SendTransaction(ctx, signed))

	receipt, err := client.WaitForReceipt(ctx, signed.Hash())
	require.NoError(t, err)
	require.Equal(t, types.ReceiptStatusSuccessful, receipt.Status)
}

func TestClient_CreateContract(t *testing.T) {
	sim := newSimChain(t, nil)
	client := sim.newClient(t)
	ctx := context.Background()

	assert.Equal(t, []common.Address{sim.from}, client.Accounts())

	receipt, err := client.CreateContract(ctx, initCode(stopRuntime))
	require.NoError(t, err)

	assert.True(t, receipt.Succeeded())
	assert.Equal(t, crypto.CreateAddress(sim.from, 0), receipt.ContractAddress)
	assert.NotZero(t, receipt.BlockNumber)

	code, err := client.CodeAt(ctx, receipt.ContractAddress, nil)
	require.NoError(t, err)
	assert.Equal(t, stopRuntime, code)
}

func TestClient_ProxyCreationWritesImplementationSlot(t *testing.T) {
	sim := newSimChain(t, nil)
	client := sim.newClient(t)
	ctx := context.Background()

	logic, err := client.CreateContract(ctx, initCode(stopRuntime))
	require.NoError(t, err)

	args := append(common.LeftPadBytes(logic.ContractAddress.Bytes(), 32), common.LeftPadBytes([]byte{0x40}, 32)...)
	args = append(args, common.LeftPadBytes([]byte{0x04}, 32)...)
	args = append(args, common.RightPadBytes([]byte{0x8d, 0xa5, 0xcb, 0x5b}, 32)...)

	proxy, err := client.CreateContract(ctx, append(testProxyInitCode(), args...))
	require.NoError(t, err)
	require.True(t, proxy.Succeeded())

	word, err := client.StorageAt(ctx, proxy.ContractAddress, domain.ImplementationSlot, nil)
	require.NoError(t, err)
	assert.Equal(t, logic.ContractAddress, common.BytesToAddress(word.Bytes()))

	admin, err := client.StorageAt(ctx, proxy.ContractAddress, domain.AdminSlot, nil)
	require.NoError(t, err)
	assert.Equal(t, common.Hash{}, admin)
}

func TestClient_RevertingCreation(t *testing.T) {
	sim := newSimChain(t, nil)
	client := sim.newClient(t)
	ctx := context.Background()

	logic, err := client.CreateContract(ctx, initCode(revertRuntime))
	require.NoError(t, err)

	args := append(common.LeftPadBytes(logic.ContractAddress.Bytes(), 32), common.LeftPadBytes([]byte{0x40}, 32)...)
	args = append(args, make([]byte, 32)...)

	_, err = client.CreateContract(ctx, append(testProxyInitCode(), args...))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTransactionReverted)

	// Nothing was deployed at the would-be proxy address
	code, err := client.CodeAt(ctx, crypto.CreateAddress(sim.from, 1), nil)
	require.NoError(t, err)
	assert.Empty(t, code)
}

func TestClient_SlotsFollowUpgrades(t *testing.T) {
	implA := common.HexToAddress("0x2000000000000000000000000000000000000002")
	implB := common.HexToAddress("0x3000000000000000000000000000000000000003")

	sim := newSimChain(t, nil)
	client := sim.newClient(t)
	ctx := context.Background()

	deployed, err := client.CreateContract(ctx, initCode(upgraderRuntime()))
	require.NoError(t, err)
	require.True(t, deployed.Succeeded())
	proxy := deployed.ContractAddress

	word, err := client.StorageAt(ctx, proxy, domain.ImplementationSlot, nil)
	require.NoError(t, err)
	assert.Equal(t, common.Hash{}, word)

	sim.sendCall(t, client, proxy, common.LeftPadBytes(implA.Bytes(), 32))
	pinned, err := client.BlockNumber(ctx)
	require.NoError(t, err)

	word, err = client.StorageAt(ctx, proxy, domain.ImplementationSlot, nil)
	require.NoError(t, err)
	assert.Equal(t, implA, common.BytesToAddress(word.Bytes()))

	sim.sendCall(t, client, proxy, common.LeftPadBytes(implB.Bytes(), 32))

	word, err = client.StorageAt(ctx, proxy, domain.ImplementationSlot, nil)
	require.NoError(t, err)
	assert.Equal(t, implB, common.BytesToAddress(word.Bytes()))

	// Reads pinned to an earlier block still see the earlier upgrade
	word, err = client.StorageAt(ctx, proxy, domain.ImplementationSlot, new(big.Int).SetUint64(pinned))
	require.NoError(t, err)
	assert.Equal(t, implA, common.BytesToAddress(word.Bytes()))

	code, err := client.CodeAt(ctx, proxy, new(big.Int).SetUint64(deployed.BlockNumber-1))
	require.NoError(t, err)
	assert.Empty(t, code)
}

func TestNewClient_ChainIDMismatch(t *testing.T) {
	sim := newSimChain(t, nil)

	closed := false
	_, err := NewClient(context.Background(), sim.client, nil, 1, WithCloser(func() { closed = true }))
	assert.ErrorIs(t, err, domain.ErrNetworkMismatch)
	assert.True(t, closed)
}

func TestClient_CreateWithoutSigner(t *testing.T) {
	sim := newSimChain(t, nil)

	client, err := NewClient(context.Background(), sim.client, nil, 0)
	require.NoError(t, err)

	_, err = client.CreateContract(context.Background(), initCode(stopRuntime))
	assert.ErrorIs(t, err, domain.ErrNoSigner)
}

func TestParsePrivateKeys(t *testing.T) {
	keys, err := ParsePrivateKeys([]string{
		"0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80",
		"",
		" 59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d ",
	})
	require.NoError(t, err)
	require.Len(t, keys, 2)
	assert.Equal(t, common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"), crypto.PubkeyToAddress(keys[0].PublicKey))
	assert.Equal(t, common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8"), crypto.PubkeyToAddress(keys[1].PublicKey))

	_, err = ParsePrivateKeys([]string{"not-a-key"})
	assert.True(t, domain.IsConfigError(err))
}
