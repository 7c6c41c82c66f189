package domain

import (
	"github.com/ethereum/go-ethereum/common"
)

// ERC-1967 storage slots, each keccak256(label) - 1
var (
	// ImplementationSlot is keccak256("eip1967.proxy.implementation") - 1
	ImplementationSlot = common.HexToHash("0x360894a13ba1a3210667c828492db98dca3e2076cc3735a920a3ca505d382bbc")
	// AdminSlot is keccak256("eip1967.proxy.admin") - 1
	AdminSlot = common.HexToHash("0xb53127684a568b3173ae13b9f8a6016e243e63b6e8ee1178d6a717850b5d6103")
	// BeaconSlot is keccak256("eip1967.proxy.beacon") - 1
	BeaconSlot = common.HexToHash("0xa3f0ad74e5423aebfd80d3ef4346578335a9a72aeaee59ff6cb3582b35133d50")
)

// ProxyRecord is the state of an ERC-1967 proxy as read from chain at BlockNumber.
// It is never cached: every operation re-derives it.
type ProxyRecord struct {
	Proxy          common.Address  `json:"proxy" yaml:"proxy"`
	Implementation common.Address  `json:"implementation" yaml:"implementation"`
	Admin          *common.Address `json:"admin,omitempty" yaml:"admin,omitempty"`
	Beacon         *common.Address `json:"beacon,omitempty" yaml:"beacon,omitempty"`
	BlockNumber    uint64          `json:"blockNumber,omitempty" yaml:"blockNumber,omitempty"`
}

// HasImplementation reports whether the implementation slot is set
func (r *ProxyRecord) HasImplementation() bool {
	return r.Implementation != (common.Address{})
}

// SlotAddress extracts the address stored in the low 20 bytes of a slot word.
// Returns nil for an empty slot.
func SlotAddress(word common.Hash) *common.Address {
	if word == (common.Hash{}) {
		return nil
	}
	addr := common.BytesToAddress(word.Bytes())
	if addr == (common.Address{}) {
		return nil
	}
	return &addr
}
