package domain

import (
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

const (
	DefaultName                  = "ArcVault Contribution NFT"
	DefaultSymbol                = "ARCV"
	DefaultBaseURI               = "ipfs://"
	DefaultRoyaltyFeeBasisPoints = 500

	// MaxRoyaltyFeeBasisPoints is 100%
	MaxRoyaltyFeeBasisPoints = 10000
)

// DeploymentOverrides holds caller-supplied values. A nil field means "use the default".
type DeploymentOverrides struct {
	Name            *string
	Symbol          *string
	BaseURI         *string
	RoyaltyReceiver *string
	RoyaltyFee      *string
	Admin           *string

	// AllowZeroRoyaltyReceiver permits an explicit zero royalty receiver
	AllowZeroRoyaltyReceiver bool
}

// DeploymentConfig is the fully resolved input of a single deployment
type DeploymentConfig struct {
	Name                  string         `json:"name" yaml:"name"`
	Symbol                string         `json:"symbol" yaml:"symbol"`
	BaseURI               string         `json:"baseUri" yaml:"baseUri"`
	RoyaltyReceiver       common.Address `json:"royaltyReceiver" yaml:"royaltyReceiver"`
	RoyaltyFeeBasisPoints uint16         `json:"royaltyFeeBasisPoints" yaml:"royaltyFeeBasisPoints"`
	Admin                 common.Address `json:"admin" yaml:"admin"`
}

// InitParams is the ordered argument tuple of the proxy initializer
type InitParams struct {
	Name                  string
	Symbol                string
	BaseURI               string
	RoyaltyReceiver       common.Address
	RoyaltyFeeBasisPoints uint16
	Admin                 common.Address
}

// InitParams returns the initializer tuple for this config
func (c *DeploymentConfig) InitParams() InitParams {
	return InitParams{
		Name:                  c.Name,
		Symbol:                c.Symbol,
		BaseURI:               c.BaseURI,
		RoyaltyReceiver:       c.RoyaltyReceiver,
		RoyaltyFeeBasisPoints: c.RoyaltyFeeBasisPoints,
		Admin:                 c.Admin,
	}
}

// Validate checks the overrides without touching the chain
func (o DeploymentOverrides) Validate() error {
	if o.RoyaltyFee != nil {
		if _, err := ParseRoyaltyFee(*o.RoyaltyFee); err != nil {
			return err
		}
	}
	if o.RoyaltyReceiver != nil {
		addr, err := ParseAddress("royaltyReceiver", *o.RoyaltyReceiver)
		if err != nil {
			return err
		}
		if addr == (common.Address{}) && !o.AllowZeroRoyaltyReceiver {
			return &ConfigError{Field: "royaltyReceiver", Value: *o.RoyaltyReceiver, Err: ErrZeroRoyaltyReceiver}
		}
	}
	if o.Admin != nil {
		addr, err := ParseAddress("admin", *o.Admin)
		if err != nil {
			return err
		}
		if addr == (common.Address{}) {
			return &ConfigError{Field: "admin", Value: *o.Admin, Err: ErrInvalidAddress}
		}
	}
	return nil
}

// Resolve merges the overrides over the defaults. The deployer address backs
// both the royalty receiver and the admin when they are not overridden.
func (o DeploymentOverrides) Resolve(deployer common.Address) (*DeploymentConfig, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}

	cfg := &DeploymentConfig{
		Name:                  valueOr(o.Name, DefaultName),
		Symbol:                valueOr(o.Symbol, DefaultSymbol),
		BaseURI:               valueOr(o.BaseURI, DefaultBaseURI),
		RoyaltyReceiver:       deployer,
		RoyaltyFeeBasisPoints: DefaultRoyaltyFeeBasisPoints,
		Admin:                 deployer,
	}

	if o.RoyaltyFee != nil {
		fee, _ := ParseRoyaltyFee(*o.RoyaltyFee)
		cfg.RoyaltyFeeBasisPoints = fee
	}
	if o.RoyaltyReceiver != nil {
		cfg.RoyaltyReceiver = common.HexToAddress(strings.TrimSpace(*o.RoyaltyReceiver))
	}
	if o.Admin != nil {
		cfg.Admin = common.HexToAddress(strings.TrimSpace(*o.Admin))
	}

	if cfg.RoyaltyReceiver == (common.Address{}) && !o.AllowZeroRoyaltyReceiver {
		return nil, &ConfigError{Field: "royaltyReceiver", Err: ErrZeroRoyaltyReceiver}
	}
	if cfg.Admin == (common.Address{}) {
		return nil, &ConfigError{Field: "admin", Err: ErrInvalidAddress}
	}

	return cfg, nil
}

// ParseRoyaltyFee parses a royalty fee in basis points
func ParseRoyaltyFee(raw string) (uint16, error) {
	value := strings.TrimSpace(raw)
	fee, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, &ConfigError{Field: "royaltyFee", Value: raw, Err: ErrInvalidRoyaltyFee}
	}
	if fee < 0 || fee > MaxRoyaltyFeeBasisPoints {
		return 0, &ConfigError{Field: "royaltyFee", Value: raw, Err: ErrInvalidRoyaltyFee}
	}
	return uint16(fee), nil
}

// ParseAddress parses a hex address, reporting field in the ConfigError
func ParseAddress(field, raw string) (common.Address, error) {
	value := strings.TrimSpace(raw)
	if !common.IsHexAddress(value) {
		return common.Address{}, &ConfigError{Field: field, Value: raw, Err: ErrInvalidAddress}
	}
	return common.HexToAddress(value), nil
}

func valueOr(v *string, def string) string {
	if v == nil {
		return def
	}
	return *v
}

// TxReceipt is the part of a mined transaction the deployer cares about
type TxReceipt struct {
	TxHash          common.Hash    `json:"txHash" yaml:"txHash"`
	ContractAddress common.Address `json:"contractAddress" yaml:"contractAddress"`
	BlockNumber     uint64         `json:"blockNumber" yaml:"blockNumber"`
	GasUsed         uint64         `json:"gasUsed" yaml:"gasUsed"`
	Status          uint64         `json:"status" yaml:"status"`
	Logs            []*types.Log   `json:"-" yaml:"-"`
}

// Succeeded reports whether the transaction did not revert
func (r *TxReceipt) Succeeded() bool {
	return r.Status == types.ReceiptStatusSuccessful
}

// DeploymentPlan is everything needed to deploy, computed before any transaction is sent
type DeploymentPlan struct {
	Network         string            `json:"network" yaml:"network"`
	ChainID         uint64            `json:"chainId" yaml:"chainId"`
	Deployer        common.Address    `json:"deployer" yaml:"deployer"`
	Config          *DeploymentConfig `json:"config" yaml:"config"`
	LogicContract   string            `json:"logicContract" yaml:"logicContract"`
	ProxyContract   string            `json:"proxyContract" yaml:"proxyContract"`
	InitializerData []byte            `json:"-" yaml:"-"`
	LogicInitCode   []byte            `json:"-" yaml:"-"`
	ProxyBytecode   []byte            `json:"-" yaml:"-"`
}

// DeployResult is the outcome of a successful deployment. Proxy is the durable id.
type DeployResult struct {
	Plan   *DeploymentPlan `json:"plan" yaml:"plan"`
	Logic  *TxReceipt      `json:"logic,omitempty" yaml:"logic,omitempty"`
	Proxy  *TxReceipt      `json:"proxy,omitempty" yaml:"proxy,omitempty"`
	Record *ProxyRecord    `json:"record,omitempty" yaml:"record,omitempty"`
	DryRun bool            `json:"dryRun" yaml:"dryRun"`
}

// ProxyAddress returns the deployed proxy, or the zero address for a dry run
func (r *DeployResult) ProxyAddress() common.Address {
	if r.Proxy == nil {
		return common.Address{}
	}
	return r.Proxy.ContractAddress
}
