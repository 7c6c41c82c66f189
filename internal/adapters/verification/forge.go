package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"

	"github.com/arcvault/uups-cli/internal/domain"
	"github.com/arcvault/uups-cli/internal/domain/config"
	"github.com/arcvault/uups-cli/internal/usecase"
)

// CommandRunner runs a command in dir and returns its combined output
type CommandRunner func(ctx context.Context, dir, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec // forge path comes from project config
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

// ForgeVerifier delegates verification to `forge verify-contract`
type ForgeVerifier struct {
	projectRoot string
	forgePath   string
	run         CommandRunner
	log         *slog.Logger
}

// NewForgeVerifier creates a verifier that shells out to forge
func NewForgeVerifier(cfg *config.RuntimeConfig, log *slog.Logger) *ForgeVerifier {
	return &ForgeVerifier{
		projectRoot: cfg.ProjectRoot,
		forgePath:   cfg.Project.Verify.ForgePath,
		run:         execRunner,
		log:         log.With("component", "forge-verify"),
	}
}

// WithRunner replaces the process runner
func (v *ForgeVerifier) WithRunner(run CommandRunner) *ForgeVerifier {
	v.run = run
	return v
}

// Name returns the backend name
func (v *ForgeVerifier) Name() string {
	return string(config.VerifierForge)
}

// Args builds the forge verify-contract arguments for req
func (v *ForgeVerifier) Args(req *domain.VerificationRequest) []string {
	args := []string{
		"verify-contract",
		req.Address.Hex(),
		req.FullyQualifiedName(),
		"--chain", strconv.FormatUint(req.ChainID, 10),
		"--watch",
	}
	if req.APIKey != "" {
		args = append(args, "--etherscan-api-key", req.APIKey)
	}
	if req.APIURL != "" {
		args = append(args, "--verifier-url", req.APIURL)
	}
	if req.CompilerVersion != "" {
		args = append(args, "--compiler-version", req.CompilerVersion)
	}
	if len(req.ConstructorArgs) > 0 {
		args = append(args, "--constructor-args", fmt.Sprintf("%x", req.ConstructorArgs))
	}
	return args
}

// Verify runs forge and interprets its output
func (v *ForgeVerifier) Verify(ctx context.Context, req *domain.VerificationRequest) (*domain.VerificationResult, error) {
	args := v.Args(req)
	v.log.Debug("running forge", "args", redact(args))

	output, runErr := v.run(ctx, v.projectRoot, v.forgePath, args...)
	out := strings.TrimSpace(string(output))
	lower := strings.ToLower(out)

	// forge exits non-zero for already verified contracts on some explorers
	if strings.Contains(lower, "already verified") {
		return &domain.VerificationResult{Status: domain.VerificationStatusAlreadyVerified, Message: lastLine(out)}, nil
	}

	if runErr != nil {
		if ctx.Err() != nil {
			return nil, &domain.VerificationError{Address: req.Address, Reason: domain.VerificationReasonTimeout, Err: ctx.Err()}
		}
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			return nil, &domain.VerificationError{Address: req.Address, Reason: domain.VerificationReasonUnavailable, Err: runErr}
		}
		return nil, classify(req, lastLine(out))
	}

	if strings.Contains(lower, "successfully verified") || strings.Contains(lower, "pass - verified") {
		return &domain.VerificationResult{Status: domain.VerificationStatusVerified, Message: lastLine(out)}, nil
	}

	return nil, &domain.VerificationError{
		Address: req.Address,
		Reason:  domain.VerificationReasonRejected,
		Message: fmt.Sprintf("verification status unclear: %s", lastLine(out)),
	}
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

// redact hides the api key in logged arguments
func redact(args []string) []string {
	out := make([]string, len(args))
	copy(out, args)
	for i := 0; i < len(out)-1; i++ {
		if out[i] == "--etherscan-api-key" {
			out[i+1] = "***"
		}
	}
	return out
}

var _ usecase.ContractVerifier = (*ForgeVerifier)(nil)
