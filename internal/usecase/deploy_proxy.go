package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"

	"github.com/arcvault/uups-cli/internal/domain"
	"github.com/arcvault/uups-cli/internal/domain/config"
)

// DeployProxyParams contains parameters for a deployment
type DeployProxyParams struct {
	Overrides domain.DeploymentOverrides
	DryRun    bool
	AssumeYes bool
	// Preview, when set, receives the plan before anything is sent
	Preview func(*domain.DeploymentPlan)
}

// DeployProxy deploys the logic contract and an initialized ERC-1967 proxy in front of it
type DeployProxy struct {
	contracts config.ContractsConfig
	dialer    ChainDialer
	artifacts ArtifactLoader
	encoder   CalldataEncoder
	events    ProxyEventParser
	confirmer Confirmer
	progress  ProgressSink
	log       *slog.Logger
}

// NewDeployProxy creates a new DeployProxy use case
func NewDeployProxy(
	cfg *config.RuntimeConfig,
	dialer ChainDialer,
	artifacts ArtifactLoader,
	encoder CalldataEncoder,
	events ProxyEventParser,
	confirmer Confirmer,
	progress ProgressSink,
	log *slog.Logger,
) *DeployProxy {
	return &DeployProxy{
		contracts: cfg.Project.Contracts,
		dialer:    dialer,
		artifacts: artifacts,
		encoder:   encoder,
		events:    events,
		confirmer: confirmer,
		progress:  progress,
		log:       log.With("component", "DeployProxy"),
	}
}

// Run deploys logic then proxy. The initializer runs inside the proxy constructor,
// so a failed initializer reverts the proxy creation and nothing is left half done.
func (uc *DeployProxy) Run(ctx context.Context, execCtx config.ExecutionContext, params DeployProxyParams) (*domain.DeployResult, error) {
	// Everything that can be checked offline is checked before dialing
	if err := params.Overrides.Validate(); err != nil {
		return nil, err
	}
	if execCtx.Network == nil {
		return nil, &domain.ConfigError{Field: "network", Err: domain.ErrNoNetwork}
	}
	if !execCtx.Signer.HasSigner() {
		return nil, &domain.ConfigError{Field: "signer", Err: domain.ErrNoSigner}
	}

	logic, err := uc.loadArtifact(ctx, "contracts.logic", uc.contracts.Logic)
	if err != nil {
		return nil, err
	}
	proxy, err := uc.loadArtifact(ctx, "contracts.proxy", uc.contracts.Proxy)
	if err != nil {
		return nil, err
	}

	client, err := uc.dialer.Dial(ctx, execCtx)
	if err != nil {
		if domain.IsConfigError(err) {
			return nil, err
		}
		return nil, &domain.DeploymentError{Stage: domain.DeploymentStagePrepare, Err: rpcError(err)}
	}
	defer client.Close()

	plan, err := uc.plan(ctx, client, execCtx, params, logic, proxy)
	if err != nil {
		return nil, err
	}

	if params.Preview != nil {
		params.Preview(plan)
	}

	if params.DryRun {
		return &domain.DeployResult{Plan: plan, DryRun: true}, nil
	}

	if !params.AssumeYes && !execCtx.Network.IsLocal() {
		prompt := fmt.Sprintf("Deploy %s behind %s on %s (chain %d)", plan.LogicContract, plan.ProxyContract, plan.Network, plan.ChainID)
		ok, err := uc.confirmer.Confirm(ctx, prompt)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, domain.ErrCancelled
		}
	}

	return uc.execute(ctx, client, plan)
}

func (uc *DeployProxy) plan(
	ctx context.Context,
	client ChainClient,
	execCtx config.ExecutionContext,
	params DeployProxyParams,
	logic, proxy *domain.Artifact,
) (*domain.DeploymentPlan, error) {
	accounts := client.Accounts()
	if len(accounts) == 0 {
		return nil, &domain.ConfigError{Field: "signer", Err: domain.ErrNoSigner}
	}
	deployer := accounts[0]

	deployCfg, err := params.Overrides.Resolve(deployer)
	if err != nil {
		return nil, err
	}

	initData, err := uc.encoder.EncodeInitializer(deployCfg.InitParams())
	if err != nil {
		return nil, &domain.DeploymentError{Stage: domain.DeploymentStagePrepare, Err: fmt.Errorf("encode initializer: %w", err)}
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		return nil, &domain.DeploymentError{Stage: domain.DeploymentStagePrepare, Err: rpcError(err)}
	}

	return &domain.DeploymentPlan{
		Network:         execCtx.Network.Name,
		ChainID:         chainID,
		Deployer:        deployer,
		Config:          deployCfg,
		LogicContract:   logic.Name,
		ProxyContract:   proxy.Name,
		InitializerData: initData,
		LogicInitCode:   logic.Bytecode,
		ProxyBytecode:   proxy.Bytecode,
	}, nil
}

func (uc *DeployProxy) execute(ctx context.Context, client ChainClient, plan *domain.DeploymentPlan) (*domain.DeployResult, error) {
	defer uc.progress.OnProgress(ctx, ProgressEvent{Stage: "done"})

	uc.progress.OnProgress(ctx, ProgressEvent{
		Stage:   string(domain.DeploymentStageLogic),
		Message: fmt.Sprintf("Deploying %s", plan.LogicContract),
		Spinner: true,
	})
	logicReceipt, err := uc.create(ctx, client, domain.DeploymentStageLogic, plan.LogicInitCode)
	if err != nil {
		return nil, err
	}
	uc.log.Debug("logic deployed", "implementation", logicReceipt.ContractAddress.Hex(), "tx", logicReceipt.TxHash.Hex())

	ctorArgs, err := uc.encoder.EncodeProxyConstructor(logicReceipt.ContractAddress, plan.InitializerData)
	if err != nil {
		return nil, &domain.DeploymentError{Stage: domain.DeploymentStageProxy, Err: fmt.Errorf("encode proxy constructor: %w", err)}
	}
	initCode := make([]byte, 0, len(plan.ProxyBytecode)+len(ctorArgs))
	initCode = append(initCode, plan.ProxyBytecode...)
	initCode = append(initCode, ctorArgs...)

	uc.progress.OnProgress(ctx, ProgressEvent{
		Stage:   string(domain.DeploymentStageProxy),
		Message: fmt.Sprintf("Deploying %s and initializing", plan.ProxyContract),
		Spinner: true,
	})
	proxyReceipt, err := uc.create(ctx, client, domain.DeploymentStageProxy, initCode)
	if err != nil {
		return nil, err
	}
	uc.log.Debug("proxy deployed", "proxy", proxyReceipt.ContractAddress.Hex(), "tx", proxyReceipt.TxHash.Hex())

	uc.progress.OnProgress(ctx, ProgressEvent{
		Stage:   string(domain.DeploymentStageConfirm),
		Message: "Reading ERC-1967 slots",
		Spinner: true,
	})
	record, err := uc.confirm(ctx, client, logicReceipt.ContractAddress, proxyReceipt)
	if err != nil {
		return nil, err
	}

	return &domain.DeployResult{
		Plan:   plan,
		Logic:  logicReceipt,
		Proxy:  proxyReceipt,
		Record: record,
	}, nil
}

func (uc *DeployProxy) create(ctx context.Context, client ChainClient, stage domain.DeploymentStage, initCode []byte) (*domain.TxReceipt, error) {
	receipt, err := client.CreateContract(ctx, initCode)
	if err != nil {
		return nil, &domain.DeploymentError{Stage: stage, Err: err}
	}
	if !receipt.Succeeded() {
		return nil, &domain.DeploymentError{Stage: stage, TxHash: receipt.TxHash, Err: domain.ErrTransactionReverted}
	}
	if receipt.ContractAddress == (common.Address{}) {
		return nil, &domain.DeploymentError{Stage: stage, TxHash: receipt.TxHash, Err: fmt.Errorf("receipt has no contract address")}
	}
	return receipt, nil
}

// confirm re-derives the proxy state from chain and checks it points at the new logic
func (uc *DeployProxy) confirm(ctx context.Context, client ChainClient, logic common.Address, proxyReceipt *domain.TxReceipt) (*domain.ProxyRecord, error) {
	proxy := proxyReceipt.ContractAddress

	record, err := ReadProxyRecord(ctx, client, proxy)
	if err != nil {
		return nil, &domain.DeploymentError{Stage: domain.DeploymentStageConfirm, TxHash: proxyReceipt.TxHash, Address: proxy, Err: err}
	}
	if record.Implementation != logic {
		return nil, &domain.DeploymentError{
			Stage:   domain.DeploymentStageConfirm,
			TxHash:  proxyReceipt.TxHash,
			Address: proxy,
			Err:     fmt.Errorf("%w: slot=%s logic=%s", domain.ErrImplementationMismatch, record.Implementation.Hex(), logic.Hex()),
		}
	}

	events, err := uc.events.ParseProxyEvents(proxyReceipt)
	if err != nil {
		uc.log.Debug("failed to parse proxy events", "error", err)
		return record, nil
	}
	for _, event := range events {
		upgraded, ok := event.(*domain.UpgradedEvent)
		if !ok || upgraded.Proxy != proxy {
			continue
		}
		if upgraded.Implementation != logic {
			return nil, &domain.DeploymentError{
				Stage:   domain.DeploymentStageConfirm,
				TxHash:  proxyReceipt.TxHash,
				Address: proxy,
				Err:     fmt.Errorf("%w: Upgraded event=%s logic=%s", domain.ErrImplementationMismatch, upgraded.Implementation.Hex(), logic.Hex()),
			}
		}
	}

	return record, nil
}

func (uc *DeployProxy) loadArtifact(ctx context.Context, field, name string) (*domain.Artifact, error) {
	artifact, err := uc.artifacts.LoadArtifact(ctx, name)
	if err != nil {
		return nil, &domain.ConfigError{Field: field, Value: name, Err: err}
	}
	if len(artifact.Bytecode) == 0 {
		return nil, &domain.ConfigError{Field: field, Value: name, Err: fmt.Errorf("artifact has no creation bytecode")}
	}
	return artifact, nil
}
