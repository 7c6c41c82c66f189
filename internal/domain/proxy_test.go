package domain

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
)

func slotFromLabel(label string) common.Hash {
	h := new(big.Int).SetBytes(crypto.Keccak256([]byte(label)))
	h.Sub(h, big.NewInt(1))
	return common.BigToHash(h)
}

func TestERC1967Slots(t *testing.T) {
	assert.Equal(t, slotFromLabel("eip1967.proxy.implementation"), ImplementationSlot)
	assert.Equal(t, slotFromLabel("eip1967.proxy.admin"), AdminSlot)
	assert.Equal(t, slotFromLabel("eip1967.proxy.beacon"), BeaconSlot)
}

func TestSlotAddress(t *testing.T) {
	impl := common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")

	tests := []struct {
		name string
		word common.Hash
		want *common.Address
	}{
		{name: "empty slot", word: common.Hash{}, want: nil},
		{name: "left padded address", word: common.BytesToHash(impl.Bytes()), want: &impl},
		{
			name: "high bytes are ignored",
			word: common.Hash{0xff},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SlotAddress(tt.word))
		})
	}
}

func TestProxyRecord_HasImplementation(t *testing.T) {
	assert.False(t, (&ProxyRecord{}).HasImplementation())
	assert.True(t, (&ProxyRecord{Implementation: common.HexToAddress("0x01")}).HasImplementation())
}
