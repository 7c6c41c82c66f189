package verification

import (
	"fmt"
	"log/slog"

	"github.com/arcvault/uups-cli/internal/domain"
	"github.com/arcvault/uups-cli/internal/domain/config"
	"github.com/arcvault/uups-cli/internal/usecase"
)

// NewVerifier picks the backend configured under [verify]
func NewVerifier(cfg *config.RuntimeConfig, log *slog.Logger) (usecase.ContractVerifier, error) {
	backend := cfg.Project.Verify.ResolvedBackend()
	switch backend {
	case config.VerifierEtherscan:
		return NewEtherscanVerifier(cfg, log), nil
	case config.VerifierForge:
		return NewForgeVerifier(cfg, log), nil
	default:
		return nil, &domain.ConfigError{
			Field: "verify.backend",
			Value: string(backend),
			Err:   fmt.Errorf("unknown verifier backend (use etherscan, forge or auto)"),
		}
	}
}
