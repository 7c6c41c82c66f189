package domain

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Sentinel errors for domain operations
var (
	// ErrInvalidRoyaltyFee is returned when a royalty fee is outside [0, MaxRoyaltyFeeBasisPoints]
	ErrInvalidRoyaltyFee = errors.New("invalid royalty fee")

	// ErrInvalidAddress is returned when an Ethereum address is invalid
	ErrInvalidAddress = errors.New("invalid address")

	// ErrZeroRoyaltyReceiver is returned when the royalty receiver resolves to the zero address
	ErrZeroRoyaltyReceiver = errors.New("royalty receiver is the zero address")

	// ErrNoSigner is returned when an operation needs a signing identity and none is configured
	ErrNoSigner = errors.New("no signing identity configured")

	// ErrNoNetwork is returned when no network was selected
	ErrNoNetwork = errors.New("no network selected")

	// ErrArtifactNotFound is returned when a compiled contract artifact can't be found
	ErrArtifactNotFound = errors.New("artifact not found")

	// ErrNotContract is returned when an address holds no code
	ErrNotContract = errors.New("address has no contract code")

	// ErrEmptyImplementation is returned when the implementation slot is zero
	ErrEmptyImplementation = errors.New("implementation slot is empty")

	// ErrRPCUnavailable is returned when the chain endpoint can't be reached
	ErrRPCUnavailable = errors.New("rpc endpoint unavailable")

	// ErrNetworkMismatch is returned when the endpoint reports a different chain ID than configured
	ErrNetworkMismatch = errors.New("network mismatch")

	// ErrTransactionReverted is returned when a mined transaction has a failed status
	ErrTransactionReverted = errors.New("transaction reverted")

	// ErrImplementationMismatch is returned when a fresh proxy does not point at the deployed logic
	ErrImplementationMismatch = errors.New("implementation slot does not match deployed logic")

	// ErrCancelled is returned when the user declines a confirmation prompt
	ErrCancelled = errors.New("cancelled")

	// ErrVerificationFailed is returned when contract verification fails
	ErrVerificationFailed = errors.New("verification failed")
)

// ConfigError is raised while building configuration, always before any chain call.
type ConfigError struct {
	Field string
	Value string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("config: %v", e.Err)
	}
	if e.Value == "" {
		return fmt.Sprintf("config: %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("config: %s=%q: %v", e.Field, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// ResolutionError is raised when ERC-1967 slots can't be read or make no sense.
type ResolutionError struct {
	Address common.Address
	Err     error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve %s: %v", e.Address.Hex(), e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// DeploymentStage identifies where a deployment stopped
type DeploymentStage string

const (
	DeploymentStagePrepare DeploymentStage = "prepare"
	DeploymentStageLogic   DeploymentStage = "logic"
	DeploymentStageProxy   DeploymentStage = "proxy"
	DeploymentStageConfirm DeploymentStage = "confirm"
)

// DeploymentError is raised when any part of a logic+proxy deployment fails.
// A failed initializer is a failed deployment.
type DeploymentError struct {
	Stage   DeploymentStage
	TxHash  common.Hash
	Address common.Address
	Err     error
}

func (e *DeploymentError) Error() string {
	msg := fmt.Sprintf("deploy %s", e.Stage)
	if e.TxHash != (common.Hash{}) {
		msg += fmt.Sprintf(" (tx %s)", e.TxHash.Hex())
	}
	return fmt.Sprintf("%s: %v", msg, e.Err)
}

func (e *DeploymentError) Unwrap() error { return e.Err }

// VerificationReason classifies a fatal verification outcome
type VerificationReason string

const (
	VerificationReasonRejected       VerificationReason = "rejected"
	VerificationReasonSourceMismatch VerificationReason = "source-mismatch"
	VerificationReasonRateLimited    VerificationReason = "rate-limited"
	VerificationReasonTimeout        VerificationReason = "timeout"
	VerificationReasonUnavailable    VerificationReason = "unavailable"
)

// VerificationError is a fatal verification failure. "Already verified" is not an error.
type VerificationError struct {
	Address common.Address
	Reason  VerificationReason
	Message string
	Err     error
}

func (e *VerificationError) Error() string {
	msg := fmt.Sprintf("verify %s: %s", e.Address.Hex(), e.Reason)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

func (e *VerificationError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrVerificationFailed, e.Err}
	}
	return []error{ErrVerificationFailed}
}

// IsConfigError reports whether err is or wraps a ConfigError
func IsConfigError(err error) bool {
	var target *ConfigError
	return errors.As(err, &target)
}
