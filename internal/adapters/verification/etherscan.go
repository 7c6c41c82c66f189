package verification

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/arcvault/uups-cli/internal/domain"
	"github.com/arcvault/uups-cli/internal/domain/config"
	"github.com/arcvault/uups-cli/internal/usecase"
)

// DefaultEtherscanAPIURL is the multichain Etherscan v2 endpoint
const DefaultEtherscanAPIURL = "https://api.etherscan.io/v2/api"

// EtherscanVerifier submits standard-JSON input to an Etherscan-compatible API
// and polls checkverifystatus until the service settles
type EtherscanVerifier struct {
	client       *http.Client
	standardJSON string
	pollInterval time.Duration
	maxPolls     int
	log          *slog.Logger
}

// NewEtherscanVerifier creates a verifier using the [verify] settings
func NewEtherscanVerifier(cfg *config.RuntimeConfig, log *slog.Logger) *EtherscanVerifier {
	verify := cfg.Project.Verify
	standardJSON := verify.StandardJSON
	if standardJSON != "" && !filepath.IsAbs(standardJSON) {
		standardJSON = filepath.Join(cfg.ProjectRoot, standardJSON)
	}

	return &EtherscanVerifier{
		client:       &http.Client{Timeout: 30 * time.Second},
		standardJSON: standardJSON,
		pollInterval: verify.PollInterval,
		maxPolls:     verify.MaxPolls,
		log:          log.With("component", "etherscan"),
	}
}

// Name returns the backend name
func (v *EtherscanVerifier) Name() string {
	return string(config.VerifierEtherscan)
}

// etherscanResponse is the envelope of every Etherscan API reply
type etherscanResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Result  string `json:"result"`
}

// Verify submits the request and waits for a final status
func (v *EtherscanVerifier) Verify(ctx context.Context, req *domain.VerificationRequest) (*domain.VerificationResult, error) {
	if req.APIKey == "" {
		return nil, &domain.ConfigError{Field: "etherscan api key", Err: fmt.Errorf("set ETHERSCAN_API_KEY or [networks.<name>] explorer_api_key")}
	}
	if v.standardJSON == "" {
		return nil, &domain.ConfigError{Field: "verify.standard_json", Err: fmt.Errorf("standard JSON input is required for the etherscan backend")}
	}
	source, err := os.ReadFile(v.standardJSON)
	if err != nil {
		return nil, &domain.ConfigError{Field: "verify.standard_json", Value: v.standardJSON, Err: err}
	}

	form := url.Values{}
	form.Set("module", "contract")
	form.Set("action", "verifysourcecode")
	form.Set("apikey", req.APIKey)
	form.Set("codeformat", "solidity-standard-json-input")
	form.Set("sourceCode", string(source))
	form.Set("contractaddress", req.Address.Hex())
	form.Set("contractname", req.FullyQualifiedName())
	form.Set("compilerversion", compilerVersion(req.CompilerVersion))
	// Etherscan's spelling; logic contracts take no constructor arguments
	form.Set("constructorArguements", fmt.Sprintf("%x", req.ConstructorArgs))

	submitted, err := v.post(ctx, req, form)
	if err != nil {
		return nil, v.unavailable(req, err)
	}

	if submitted.Status != "1" {
		if isAlreadyVerified(submitted.Result) {
			return &domain.VerificationResult{Status: domain.VerificationStatusAlreadyVerified, Message: submitted.Result}, nil
		}
		return nil, classify(req, submitted.Result)
	}

	guid := submitted.Result
	v.log.Debug("verification submitted", "address", req.Address.Hex(), "guid", guid)
	return v.poll(ctx, req, guid)
}

func (v *EtherscanVerifier) poll(ctx context.Context, req *domain.VerificationRequest, guid string) (*domain.VerificationResult, error) {
	for attempt := 0; attempt < v.maxPolls; attempt++ {
		select {
		case <-ctx.Done():
			return nil, &domain.VerificationError{Address: req.Address, Reason: domain.VerificationReasonTimeout, Err: ctx.Err()}
		case <-time.After(v.pollInterval):
		}

		query := url.Values{}
		query.Set("module", "contract")
		query.Set("action", "checkverifystatus")
		query.Set("guid", guid)
		query.Set("apikey", req.APIKey)

		status, err := v.get(ctx, req, query)
		if err != nil {
			return nil, v.unavailable(req, err)
		}
		v.log.Debug("verification status", "guid", guid, "attempt", attempt+1, "result", status.Result)

		switch {
		case isPending(status.Result):
			continue
		case isAlreadyVerified(status.Result):
			return &domain.VerificationResult{Status: domain.VerificationStatusAlreadyVerified, GUID: guid, Message: status.Result}, nil
		case status.Status == "1":
			return &domain.VerificationResult{Status: domain.VerificationStatusVerified, GUID: guid, Message: status.Result}, nil
		default:
			return nil, classify(req, status.Result)
		}
	}

	return nil, &domain.VerificationError{
		Address: req.Address,
		Reason:  domain.VerificationReasonTimeout,
		Message: fmt.Sprintf("still pending after %d checks (guid %s)", v.maxPolls, guid),
	}
}

func (v *EtherscanVerifier) post(ctx context.Context, req *domain.VerificationRequest, form url.Values) (*etherscanResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint(req), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return v.do(httpReq)
}

func (v *EtherscanVerifier) get(ctx context.Context, req *domain.VerificationRequest, query url.Values) (*etherscanResponse, error) {
	endpoint := v.endpoint(req)
	sep := "?"
	if strings.Contains(endpoint, "?") {
		sep = "&"
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+sep+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	return v.do(httpReq)
}

func (v *EtherscanVerifier) do(httpReq *http.Request) (*etherscanResponse, error) {
	resp, err := v.client.Do(httpReq) //nolint:gosec // URL comes from configured explorer endpoint
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return &etherscanResponse{Status: "0", Result: "Max rate limit reached"}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("explorer returned HTTP %d", resp.StatusCode)
	}

	var result etherscanResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &result, nil
}

// endpoint adds the v2 chainid parameter to the configured API URL
func (v *EtherscanVerifier) endpoint(req *domain.VerificationRequest) string {
	base := req.APIURL
	if base == "" {
		base = DefaultEtherscanAPIURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	q := u.Query()
	if req.ChainID != 0 && q.Get("chainid") == "" {
		q.Set("chainid", strconv.FormatUint(req.ChainID, 10))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func (v *EtherscanVerifier) unavailable(req *domain.VerificationRequest, err error) error {
	return &domain.VerificationError{Address: req.Address, Reason: domain.VerificationReasonUnavailable, Err: err}
}

// classify maps an Etherscan failure message onto a VerificationReason
func classify(req *domain.VerificationRequest, message string) error {
	lower := strings.ToLower(message)
	reason := domain.VerificationReasonRejected
	switch {
	case strings.Contains(lower, "rate limit"):
		reason = domain.VerificationReasonRateLimited
	case strings.Contains(lower, "unable to verify"), strings.Contains(lower, "bytecode"):
		reason = domain.VerificationReasonSourceMismatch
	}
	return &domain.VerificationError{Address: req.Address, Reason: reason, Message: message}
}

func isPending(result string) bool {
	return strings.Contains(strings.ToLower(result), "pending")
}

func isAlreadyVerified(result string) bool {
	return strings.Contains(strings.ToLower(result), "already verified")
}

// compilerVersion formats solc versions the way Etherscan expects: v0.8.20+commit.a1b79de6
func compilerVersion(version string) string {
	if version == "" || strings.HasPrefix(version, "v") {
		return version
	}
	return "v" + version
}

var _ usecase.ContractVerifier = (*EtherscanVerifier)(nil)
