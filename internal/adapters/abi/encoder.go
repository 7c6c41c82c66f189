package abi

import (
	"fmt"
	"math/big"

	gethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/lmittmann/w3"

	"github.com/arcvault/uups-cli/internal/domain"
	"github.com/arcvault/uups-cli/internal/domain/config"
	"github.com/arcvault/uups-cli/internal/usecase"
)

// proxyConstructorArgs is ERC1967Proxy's constructor(address implementation, bytes _data)
var proxyConstructorArgs = gethabi.Arguments{
	{Name: "implementation", Type: mustType("address")},
	{Name: "_data", Type: mustType("bytes")},
}

// CalldataEncoder encodes the initializer call and the proxy constructor arguments
type CalldataEncoder struct {
	initializer *w3.Func
}

// NewCalldataEncoder parses the configured initializer signature
func NewCalldataEncoder(cfg *config.RuntimeConfig) (*CalldataEncoder, error) {
	signature := config.DefaultInitializer
	if cfg.Project != nil && cfg.Project.Contracts.Initializer != "" {
		signature = cfg.Project.Contracts.Initializer
	}
	fn, err := w3.NewFunc(signature, "")
	if err != nil {
		return nil, &domain.ConfigError{Field: "contracts.initializer", Value: signature, Err: err}
	}
	if len(fn.Args) != 6 {
		return nil, &domain.ConfigError{
			Field: "contracts.initializer",
			Value: signature,
			Err:   fmt.Errorf("initializer must take (name, symbol, baseURI, royaltyReceiver, royaltyFee, admin), got %d arguments", len(fn.Args)),
		}
	}
	return &CalldataEncoder{initializer: fn}, nil
}

// EncodeInitializer encodes initialize(name, symbol, baseURI, royaltyReceiver, royaltyFee, admin)
func (e *CalldataEncoder) EncodeInitializer(params domain.InitParams) ([]byte, error) {
	return e.initializer.EncodeArgs(
		params.Name,
		params.Symbol,
		params.BaseURI,
		params.RoyaltyReceiver,
		big.NewInt(int64(params.RoyaltyFeeBasisPoints)),
		params.Admin,
	)
}

// EncodeProxyConstructor ABI-encodes (implementation, initData) for appending to the proxy creation code
func (e *CalldataEncoder) EncodeProxyConstructor(implementation common.Address, initData []byte) ([]byte, error) {
	if initData == nil {
		initData = []byte{}
	}
	return proxyConstructorArgs.Pack(implementation, initData)
}

// Selector returns the initializer's 4-byte selector
func (e *CalldataEncoder) Selector() [4]byte {
	return e.initializer.Selector
}

func mustType(t string) gethabi.Type {
	typ, err := gethabi.NewType(t, "", nil)
	if err != nil {
		panic(err)
	}
	return typ
}

var _ usecase.CalldataEncoder = (*CalldataEncoder)(nil)
