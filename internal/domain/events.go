package domain

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

type EventType string

const (
	EventTypeAdminChanged   EventType = "AdminChanged"
	EventTypeBeaconUpgraded EventType = "BeaconUpgraded"
	EventTypeUpgraded       EventType = "Upgraded"
)

// ProxyEvent is an ERC-1967 event emitted by a proxy
type ProxyEvent interface {
	EventName() EventType
	String() string
}

// UpgradedEvent is emitted when the implementation slot changes
type UpgradedEvent struct {
	Proxy          common.Address
	Implementation common.Address
	TxHash         common.Hash
}

func (UpgradedEvent) EventName() EventType { return EventTypeUpgraded }

func (e *UpgradedEvent) String() string {
	return fmt.Sprintf("%s: proxy=%s impl=%s", e.EventName(), short(e.Proxy), short(e.Implementation))
}

// AdminChangedEvent is emitted when the admin slot changes
type AdminChangedEvent struct {
	Proxy         common.Address
	PreviousAdmin common.Address
	NewAdmin      common.Address
	TxHash        common.Hash
}

func (AdminChangedEvent) EventName() EventType { return EventTypeAdminChanged }

func (e *AdminChangedEvent) String() string {
	return fmt.Sprintf("%s: proxy=%s old=%s new=%s", e.EventName(), short(e.Proxy), short(e.PreviousAdmin), short(e.NewAdmin))
}

// BeaconUpgradedEvent is emitted when the beacon slot changes
type BeaconUpgradedEvent struct {
	Proxy  common.Address
	Beacon common.Address
	TxHash common.Hash
}

func (BeaconUpgradedEvent) EventName() EventType { return EventTypeBeaconUpgraded }

func (e *BeaconUpgradedEvent) String() string {
	return fmt.Sprintf("%s: proxy=%s beacon=%s", e.EventName(), short(e.Proxy), short(e.Beacon))
}

func short(addr common.Address) string {
	return addr.Hex()[:10] + "..."
}
