package domain

import (
	"github.com/ethereum/go-ethereum/common"
)

// VerificationStatus is a non-fatal verification outcome
type VerificationStatus string

const (
	VerificationStatusVerified        VerificationStatus = "verified"
	VerificationStatusAlreadyVerified VerificationStatus = "already verified"
)

// VerificationRequest is what gets submitted to a verification service.
// Address is always the implementation, never the proxy.
type VerificationRequest struct {
	Address         common.Address
	ChainID         uint64
	ContractPath    string // source path, e.g. src/ContributionNFT.sol
	ContractName    string
	CompilerVersion string
	// ConstructorArgs is empty for initializer-based logic contracts
	ConstructorArgs []byte
	APIURL          string
	APIKey          string
}

// FullyQualifiedName returns path:Name, or just Name when the path is unknown
func (r *VerificationRequest) FullyQualifiedName() string {
	if r.ContractPath == "" {
		return r.ContractName
	}
	return r.ContractPath + ":" + r.ContractName
}

// VerificationResult is a successful (or informational) verification outcome
type VerificationResult struct {
	Proxy          common.Address     `json:"proxy" yaml:"proxy"`
	Implementation common.Address     `json:"implementation" yaml:"implementation"`
	Status         VerificationStatus `json:"status" yaml:"status"`
	Verifier       string             `json:"verifier" yaml:"verifier"`
	GUID           string             `json:"guid,omitempty" yaml:"guid,omitempty"`
	Message        string             `json:"message,omitempty" yaml:"message,omitempty"`
	ExplorerURL    string             `json:"explorerUrl,omitempty" yaml:"explorerUrl,omitempty"`
}

// AlreadyVerified reports whether the service had the source before this submission
func (r *VerificationResult) AlreadyVerified() bool {
	return r.Status == VerificationStatusAlreadyVerified
}
