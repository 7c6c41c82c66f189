package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcvault/uups-cli/internal/domain"
	"github.com/arcvault/uups-cli/internal/domain/config"
)

func TestVerifyImplementation_Run(t *testing.T) {
	proxy := common.HexToAddress("0x1000000000000000000000000000000000000001")
	impl := common.HexToAddress("0x2000000000000000000000000000000000000002")
	execCtx := config.ExecutionContext{
		Network: &config.Network{
			Name:           "sepolia",
			ChainID:        11155111,
			ExplorerURL:    "https://sepolia.etherscan.io/",
			ExplorerAPIURL: "https://api.etherscan.io/v2/api",
			ExplorerAPIKey: "KEY",
		},
	}

	setup := func() (*fakeChain, *fakeVerifier, *VerifyImplementation) {
		chain := newFakeChain()
		chain.code[proxy] = []byte{0x01}
		chain.code[impl] = []byte{0x02}
		chain.setSlot(proxy, domain.ImplementationSlot, impl)
		verifier := &fakeVerifier{}
		uc := NewVerifyImplementation(testRuntimeConfig(), chain, newFakeArtifacts(), verifier, NopProgress{}, testLogger())
		return chain, verifier, uc
	}

	t.Run("submits the implementation with empty constructor args", func(t *testing.T) {
		_, verifier, uc := setup()

		result, err := uc.Run(context.Background(), execCtx, VerifyImplementationParams{Proxy: proxy})
		require.NoError(t, err)

		require.Len(t, verifier.requests, 1)
		req := verifier.requests[0]
		assert.Equal(t, impl, req.Address)
		assert.Empty(t, req.ConstructorArgs)
		assert.Equal(t, uint64(11155111), req.ChainID)
		assert.Equal(t, "contracts/ContributionNFTUpgradeable.sol:ContributionNFTUpgradeable", req.FullyQualifiedName())
		assert.Equal(t, "0.8.20+commit.a1b79de6", req.CompilerVersion)
		assert.Equal(t, "KEY", req.APIKey)

		assert.Equal(t, domain.VerificationStatusVerified, result.Status)
		assert.Equal(t, proxy, result.Proxy)
		assert.Equal(t, impl, result.Implementation)
		assert.Equal(t, "fake", result.Verifier)
		assert.Equal(t, "https://sepolia.etherscan.io/address/"+impl.Hex()+"#code", result.ExplorerURL)
	})

	t.Run("already verified is informational", func(t *testing.T) {
		_, verifier, uc := setup()
		verifier.verifyFn = func(req *domain.VerificationRequest) (*domain.VerificationResult, error) {
			return &domain.VerificationResult{Status: domain.VerificationStatusAlreadyVerified, Message: "Contract source code already verified"}, nil
		}

		result, err := uc.Run(context.Background(), execCtx, VerifyImplementationParams{Proxy: proxy})
		require.NoError(t, err)
		assert.True(t, result.AlreadyVerified())
	})

	t.Run("service rejection is fatal and not retried", func(t *testing.T) {
		_, verifier, uc := setup()
		verifier.verifyFn = func(req *domain.VerificationRequest) (*domain.VerificationResult, error) {
			return nil, &domain.VerificationError{Address: req.Address, Reason: domain.VerificationReasonSourceMismatch, Message: "Fail - Unable to verify"}
		}

		_, err := uc.Run(context.Background(), execCtx, VerifyImplementationParams{Proxy: proxy})

		var verErr *domain.VerificationError
		require.True(t, errors.As(err, &verErr))
		assert.Equal(t, domain.VerificationReasonSourceMismatch, verErr.Reason)
		assert.Len(t, verifier.requests, 1)
	})

	t.Run("unclassified verifier errors are wrapped", func(t *testing.T) {
		_, verifier, uc := setup()
		verifier.verifyFn = func(req *domain.VerificationRequest) (*domain.VerificationResult, error) {
			return nil, errors.New("connection reset")
		}

		_, err := uc.Run(context.Background(), execCtx, VerifyImplementationParams{Proxy: proxy})

		var verErr *domain.VerificationError
		require.True(t, errors.As(err, &verErr))
		assert.Equal(t, domain.VerificationReasonUnavailable, verErr.Reason)
		assert.Equal(t, impl, verErr.Address)
	})

	t.Run("zero implementation fails before submission", func(t *testing.T) {
		chain, verifier, uc := setup()
		chain.setSlot(proxy, domain.ImplementationSlot, common.Address{})

		_, err := uc.Run(context.Background(), execCtx, VerifyImplementationParams{Proxy: proxy})

		var resErr *domain.ResolutionError
		require.True(t, errors.As(err, &resErr))
		assert.ErrorIs(t, err, domain.ErrEmptyImplementation)
		assert.Empty(t, verifier.requests)
	})

	t.Run("implementation without code fails before submission", func(t *testing.T) {
		chain, verifier, uc := setup()
		delete(chain.code, impl)

		_, err := uc.Run(context.Background(), execCtx, VerifyImplementationParams{Proxy: proxy})

		var resErr *domain.ResolutionError
		require.True(t, errors.As(err, &resErr))
		assert.Equal(t, impl, resErr.Address)
		assert.ErrorIs(t, err, domain.ErrNotContract)
		assert.Empty(t, verifier.requests)
	})

	t.Run("proxy without code fails before submission", func(t *testing.T) {
		chain, verifier, uc := setup()
		delete(chain.code, proxy)

		_, err := uc.Run(context.Background(), execCtx, VerifyImplementationParams{Proxy: proxy})
		assert.ErrorIs(t, err, domain.ErrNotContract)
		assert.Empty(t, verifier.requests)
	})

	t.Run("missing artifact falls back to the contract name", func(t *testing.T) {
		chain := newFakeChain()
		chain.code[proxy] = []byte{0x01}
		chain.code[impl] = []byte{0x02}
		chain.setSlot(proxy, domain.ImplementationSlot, impl)
		verifier := &fakeVerifier{}
		uc := NewVerifyImplementation(testRuntimeConfig(), chain, &fakeArtifacts{artifacts: map[string]*domain.Artifact{}}, verifier, NopProgress{}, testLogger())

		_, err := uc.Run(context.Background(), execCtx, VerifyImplementationParams{Proxy: proxy})
		require.NoError(t, err)
		require.Len(t, verifier.requests, 1)
		assert.Equal(t, config.DefaultLogicContract, verifier.requests[0].FullyQualifiedName())
	})
}
