package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/arcvault/uups-cli/internal/domain"
	"github.com/arcvault/uups-cli/internal/domain/config"
)

// VerifyImplementationParams contains parameters for verification
type VerifyImplementationParams struct {
	Proxy common.Address
}

// VerifyImplementation verifies the source of the contract a proxy currently points at
type VerifyImplementation struct {
	contracts config.ContractsConfig
	verify    config.VerifyConfig
	dialer    ChainDialer
	artifacts ArtifactLoader
	verifier  ContractVerifier
	progress  ProgressSink
	log       *slog.Logger
}

// NewVerifyImplementation creates a new VerifyImplementation use case
func NewVerifyImplementation(
	cfg *config.RuntimeConfig,
	dialer ChainDialer,
	artifacts ArtifactLoader,
	verifier ContractVerifier,
	progress ProgressSink,
	log *slog.Logger,
) *VerifyImplementation {
	return &VerifyImplementation{
		contracts: cfg.Project.Contracts,
		verify:    cfg.Project.Verify,
		dialer:    dialer,
		artifacts: artifacts,
		verifier:  verifier,
		progress:  progress,
		log:       log.With("component", "VerifyImplementation"),
	}
}

// Run resolves the implementation behind proxy and submits it for verification.
// The proxy address itself is never submitted.
func (uc *VerifyImplementation) Run(ctx context.Context, execCtx config.ExecutionContext, params VerifyImplementationParams) (*domain.VerificationResult, error) {
	if execCtx.Network == nil {
		return nil, &domain.ConfigError{Field: "network", Err: domain.ErrNoNetwork}
	}

	client, err := uc.dialer.Dial(ctx, execCtx)
	if err != nil {
		if domain.IsConfigError(err) {
			return nil, err
		}
		return nil, &domain.ResolutionError{Address: params.Proxy, Err: rpcError(err)}
	}
	defer client.Close()

	record, err := ReadProxyRecord(ctx, client, params.Proxy)
	if err != nil {
		return nil, err
	}
	if !record.HasImplementation() {
		return nil, &domain.ResolutionError{Address: params.Proxy, Err: domain.ErrEmptyImplementation}
	}

	impl := record.Implementation
	code, err := client.CodeAt(ctx, impl, new(big.Int).SetUint64(record.BlockNumber))
	if err != nil {
		return nil, &domain.ResolutionError{Address: impl, Err: rpcError(err)}
	}
	if len(code) == 0 {
		return nil, &domain.ResolutionError{Address: impl, Err: domain.ErrNotContract}
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		return nil, &domain.ResolutionError{Address: impl, Err: rpcError(err)}
	}

	req := uc.buildRequest(ctx, execCtx.Network, impl, chainID)

	uc.progress.Info(fmt.Sprintf("Implementation: %s", impl.Hex()))
	uc.progress.OnProgress(ctx, ProgressEvent{
		Stage:   "verify",
		Message: fmt.Sprintf("Verifying %s with %s", req.FullyQualifiedName(), uc.verifier.Name()),
		Spinner: true,
	})
	result, err := uc.verifier.Verify(ctx, req)
	uc.progress.OnProgress(ctx, ProgressEvent{Stage: "done"})
	if err != nil {
		var verr *domain.VerificationError
		if errors.As(err, &verr) || domain.IsConfigError(err) {
			return nil, err
		}
		return nil, &domain.VerificationError{Address: impl, Reason: domain.VerificationReasonUnavailable, Err: err}
	}

	result.Proxy = params.Proxy
	result.Implementation = impl
	result.Verifier = uc.verifier.Name()
	if execCtx.Network.ExplorerURL != "" {
		result.ExplorerURL = fmt.Sprintf("%s/address/%s#code", strings.TrimRight(execCtx.Network.ExplorerURL, "/"), impl.Hex())
	}

	switch result.Status {
	case domain.VerificationStatusVerified:
		uc.log.Debug("implementation verified", "implementation", impl.Hex(), "guid", result.GUID)
	case domain.VerificationStatusAlreadyVerified:
		uc.log.Debug("implementation already verified", "implementation", impl.Hex())
	default:
		return nil, &domain.VerificationError{
			Address: impl,
			Reason:  domain.VerificationReasonRejected,
			Message: fmt.Sprintf("unexpected status %q", result.Status),
		}
	}

	return result, nil
}

func (uc *VerifyImplementation) buildRequest(ctx context.Context, network *config.Network, impl common.Address, chainID uint64) *domain.VerificationRequest {
	req := &domain.VerificationRequest{
		Address:         impl,
		ChainID:         chainID,
		ContractName:    uc.contracts.Logic,
		CompilerVersion: uc.verify.CompilerVersion,
		APIURL:          network.ExplorerAPIURL,
		APIKey:          network.ExplorerAPIKey,
	}

	// The artifact only adds source path and compiler metadata; verification can proceed without it
	artifact, err := uc.artifacts.LoadArtifact(ctx, uc.contracts.Logic)
	if err != nil {
		uc.log.Debug("logic artifact unavailable for verification metadata", "contract", uc.contracts.Logic, "error", err)
		return req
	}
	req.ContractPath = artifact.SourcePath
	if req.CompilerVersion == "" {
		req.CompilerVersion = artifact.CompilerVersion
	}
	return req
}
