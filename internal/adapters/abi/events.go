package abi

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/lmittmann/w3"

	"github.com/arcvault/uups-cli/internal/domain"
	"github.com/arcvault/uups-cli/internal/usecase"
)

// ERC-1967 events as emitted by OpenZeppelin proxies
var (
	eventUpgraded       = w3.MustNewEvent("Upgraded(address indexed implementation)")
	eventAdminChanged   = w3.MustNewEvent("AdminChanged(address previousAdmin, address newAdmin)")
	eventBeaconUpgraded = w3.MustNewEvent("BeaconUpgraded(address indexed beacon)")
)

// EventParser decodes ERC-1967 events from receipt logs
type EventParser struct{}

// NewEventParser creates a new EventParser
func NewEventParser() *EventParser {
	return &EventParser{}
}

// ParseProxyEvents returns the ERC-1967 events in receipt, skipping unrelated logs
func (p *EventParser) ParseProxyEvents(receipt *domain.TxReceipt) ([]domain.ProxyEvent, error) {
	var events []domain.ProxyEvent
	for _, log := range receipt.Logs {
		if event := p.ParseLog(log); event != nil {
			events = append(events, event)
		}
	}
	return events, nil
}

// ParseLog decodes a single log, returning nil for unknown events
func (p *EventParser) ParseLog(log *types.Log) domain.ProxyEvent {
	if len(log.Topics) == 0 {
		return nil
	}

	switch log.Topics[0] {
	case eventUpgraded.Topic0:
		var impl common.Address
		if err := eventUpgraded.DecodeArgs(log, &impl); err != nil {
			return nil
		}
		return &domain.UpgradedEvent{Proxy: log.Address, Implementation: impl, TxHash: log.TxHash}
	case eventAdminChanged.Topic0:
		var previous, next common.Address
		if err := eventAdminChanged.DecodeArgs(log, &previous, &next); err != nil {
			return nil
		}
		return &domain.AdminChangedEvent{Proxy: log.Address, PreviousAdmin: previous, NewAdmin: next, TxHash: log.TxHash}
	case eventBeaconUpgraded.Topic0:
		var beacon common.Address
		if err := eventBeaconUpgraded.DecodeArgs(log, &beacon); err != nil {
			return nil
		}
		return &domain.BeaconUpgradedEvent{Proxy: log.Address, Beacon: beacon, TxHash: log.TxHash}
	}
	return nil
}

var _ usecase.ProxyEventParser = (*EventParser)(nil)
