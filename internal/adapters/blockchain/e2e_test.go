package blockchain

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcvault/uups-cli/internal/adapters/abi"
	"github.com/arcvault/uups-cli/internal/domain"
	"github.com/arcvault/uups-cli/internal/domain/config"
	"github.com/arcvault/uups-cli/internal/usecase"
)

// simDialer hands out clients bound to the simulated chain
type simDialer struct {
	sim *simChain
}

func (d *simDialer) Dial(ctx context.Context, execCtx config.ExecutionContext) (usecase.ChainClient, error) {
	keys, err := ParsePrivateKeys(execCtx.Signer.PrivateKeys)
	if err != nil {
		return nil, err
	}
	return NewClient(ctx, d.sim.client, keys, execCtx.Network.ChainID, WithPollInterval(10*time.Millisecond))
}

type staticArtifacts map[string][]byte

func (a staticArtifacts) LoadArtifact(ctx context.Context, name string) (*domain.Artifact, error) {
	code, ok := a[name]
	if !ok {
		return nil, domain.ErrArtifactNotFound
	}
	return &domain.Artifact{Name: name, Bytecode: code}, nil
}

type alwaysConfirm struct{}

func (alwaysConfirm) Confirm(context.Context, string) (bool, error) { return true, nil }

type recordingVerifier struct {
	requests []*domain.VerificationRequest
}

func (v *recordingVerifier) Name() string { return "recording" }

func (v *recordingVerifier) Verify(ctx context.Context, req *domain.VerificationRequest) (*domain.VerificationResult, error) {
	v.requests = append(v.requests, req)
	return &domain.VerificationResult{Status: domain.VerificationStatusVerified}, nil
}

func strPtr(s string) *string { return &s }

func newRuntimeConfig(t *testing.T) *config.RuntimeConfig {
	t.Helper()
	project := (&config.ProjectConfig{}).WithDefaults()
	return &config.RuntimeConfig{Project: project}
}

func TestDeployResolveVerify_SimulatedChain(t *testing.T) {
	sim := newSimChain(t, nil)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := newRuntimeConfig(t)
	dialer := &simDialer{sim: sim}

	encoder, err := abi.NewCalldataEncoder(cfg)
	require.NoError(t, err)

	artifacts := staticArtifacts{
		config.DefaultLogicContract: initCode(stopRuntime),
		config.DefaultProxyContract: testProxyInitCode(),
	}
	verifier := &recordingVerifier{}

	deploy := usecase.NewDeployProxy(cfg, dialer, artifacts, encoder, abi.NewEventParser(), alwaysConfirm{}, usecase.NopProgress{}, log)
	resolve := usecase.NewResolveProxy(dialer, log)
	verify := usecase.NewVerifyImplementation(cfg, dialer, artifacts, verifier, usecase.NopProgress{}, log)

	execCtx := config.ExecutionContext{
		Network: &config.Network{Name: "simulated", ChainID: 1337},
	}
	addrA := sim.from.Hex()

	result, err := deploy.Run(context.Background(), execCtx, usecase.DeployProxyParams{
		Overrides: domain.DeploymentOverrides{
			Name:            strPtr("Test NFT"),
			Symbol:          strPtr("TST"),
			BaseURI:         strPtr("ipfs://test/"),
			RoyaltyReceiver: strPtr(addrA),
			RoyaltyFee:      strPtr("250"),
			Admin:           strPtr(addrA),
		},
	})
	// no signer in the execution context
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNoSigner)
	assert.Nil(t, result)

	execCtx.Signer = config.SignerConfig{PrivateKeys: []string{common.Bytes2Hex(sim.key.D.Bytes())}}

	result, err = deploy.Run(context.Background(), execCtx, usecase.DeployProxyParams{
		Overrides: domain.DeploymentOverrides{
			Name:            strPtr("Test NFT"),
			Symbol:          strPtr("TST"),
			BaseURI:         strPtr("ipfs://test/"),
			RoyaltyReceiver: strPtr(addrA),
			RoyaltyFee:      strPtr("250"),
			Admin:           strPtr(addrA),
		},
	})
	require.NoError(t, err)
	proxy := result.ProxyAddress()
	require.NotEqual(t, common.Address{}, proxy)

	record, err := resolve.Run(context.Background(), execCtx, usecase.ResolveProxyParams{Proxy: proxy})
	require.NoError(t, err)
	assert.Equal(t, result.Logic.ContractAddress, record.Implementation)
	assert.Nil(t, record.Admin)

	outcome, err := verify.Run(context.Background(), execCtx, usecase.VerifyImplementationParams{Proxy: proxy})
	require.NoError(t, err)
	assert.Equal(t, domain.VerificationStatusVerified, outcome.Status)
	require.Len(t, verifier.requests, 1)
	assert.Equal(t, record.Implementation, verifier.requests[0].Address)
	assert.Empty(t, verifier.requests[0].ConstructorArgs)
}

func TestDeploy_FailedInitializerLeavesNoProxy(t *testing.T) {
	sim := newSimChain(t, nil)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := newRuntimeConfig(t)
	dialer := &simDialer{sim: sim}

	encoder, err := abi.NewCalldataEncoder(cfg)
	require.NoError(t, err)

	artifacts := staticArtifacts{
		config.DefaultLogicContract: initCode(revertRuntime),
		config.DefaultProxyContract: testProxyInitCode(),
	}
	deploy := usecase.NewDeployProxy(cfg, dialer, artifacts, encoder, abi.NewEventParser(), alwaysConfirm{}, usecase.NopProgress{}, log)

	execCtx := config.ExecutionContext{
		Network: &config.Network{Name: "simulated", ChainID: 1337},
		Signer:  config.SignerConfig{PrivateKeys: []string{common.Bytes2Hex(sim.key.D.Bytes())}},
	}

	result, err := deploy.Run(context.Background(), execCtx, usecase.DeployProxyParams{})
	require.Error(t, err)
	assert.Nil(t, result)

	var depErr *domain.DeploymentError
	require.True(t, errors.As(err, &depErr))
	assert.Equal(t, domain.DeploymentStageProxy, depErr.Stage)
	assert.ErrorIs(t, err, domain.ErrTransactionReverted)

	// only the logic contract landed
	client, err := dialer.Dial(context.Background(), execCtx)
	require.NoError(t, err)
	code, err := client.CodeAt(context.Background(), crypto.CreateAddress(sim.from, 1), nil)
	require.NoError(t, err)
	assert.Empty(t, code)
}
