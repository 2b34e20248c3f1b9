package model

import (
	"fmt"
	"time"
)

// TransferStatus is the lifecycle state of a transfer.
type TransferStatus string

// Transfer statuses. Completed and Cancelled are terminal.
const (
	TransferInitiated TransferStatus = "Initiated"
	TransferCompleted TransferStatus = "Completed"
	TransferCancelled TransferStatus = "Cancelled"
)

// TransferEffect is the ledger consequence of a status transition.
type TransferEffect int

// Transfer effects.
const (
	EffectNone TransferEffect = iota
	EffectMoveQuantity
)

// ParseTransferStatus parses any known status.
func ParseTransferStatus(s string) (TransferStatus, error) {
	switch st := TransferStatus(s); st {
	case TransferInitiated, TransferCompleted, TransferCancelled:
		return st, nil
	}
	return "", ErrInvalidStatus
}

// ParseTransferTarget parses a status an update may move a transfer to.
func ParseTransferTarget(s string) (TransferStatus, error) {
	switch st := TransferStatus(s); st {
	case TransferCompleted, TransferCancelled:
		return st, nil
	}
	return "", ErrInvalidStatus
}

// Terminal reports whether no further transitions are allowed.
func (s TransferStatus) Terminal() bool {
	return s == TransferCompleted || s == TransferCancelled
}

// Transition validates moving from s to target and returns the ledger
// effect the move carries.
func (s TransferStatus) Transition(target TransferStatus) (TransferEffect, error) {
	switch s {
	case TransferInitiated:
		switch target {
		case TransferCompleted:
			return EffectMoveQuantity, nil
		case TransferCancelled:
			return EffectNone, nil
		}
		return EffectNone, ErrInvalidStatus
	case TransferCompleted, TransferCancelled:
		return EffectNone, ErrTransferClosed
	}
	return EffectNone, fmt.Errorf("unknown transfer status %q", s)
}

// Transfer moves a quantity of an asset between two bases.
type Transfer struct {
	ID                string         `json:"id"`
	AssetID           string         `json:"assetId"`
	Quantity          int            `json:"quantity"`
	SourceBaseID      string         `json:"sourceBaseId"`
	DestinationBaseID string         `json:"destinationBaseId"`
	TransferDate      time.Time      `json:"transferDate"`
	Reason            string         `json:"reason,omitempty"`
	Status            TransferStatus `json:"status"`
	InitiatedBy       string         `json:"initiatedByUserId"`
	ReceivedBy        *string        `json:"receivedByUserId,omitempty"`
	CompletedAt       *time.Time     `json:"completedAt,omitempty"`
	CreatedAt         time.Time      `json:"createdAt"`

	// Joined fields (not always populated).
	AssetModel          string `json:"assetModel,omitempty"`
	EquipmentTypeName   string `json:"equipmentTypeName,omitempty"`
	SourceBaseName      string `json:"sourceBaseName,omitempty"`
	DestinationBaseName string `json:"destinationBaseName,omitempty"`
}

// TransferFilter narrows a transfer listing.
type TransferFilter struct {
	BaseID          string
	EquipmentTypeID string
	Status          TransferStatus
	DateRange
	PageRequest
}

// MissingSiblingPolicy decides what completing a transfer does when the
// destination base has no fungible asset row of the same equipment type.
type MissingSiblingPolicy string

// Missing sibling policies.
const (
	SiblingSkip   MissingSiblingPolicy = "skip"
	SiblingCreate MissingSiblingPolicy = "create"
	SiblingReject MissingSiblingPolicy = "reject"
)

// ParseMissingSiblingPolicy parses a policy name. Empty means skip.
func ParseMissingSiblingPolicy(s string) (MissingSiblingPolicy, error) {
	switch p := MissingSiblingPolicy(s); p {
	case "":
		return SiblingSkip, nil
	case SiblingSkip, SiblingCreate, SiblingReject:
		return p, nil
	}
	return "", fmt.Errorf("unknown missing sibling policy %q", s)
}
