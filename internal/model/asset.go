package model

import "time"

// Base is a military installation that holds assets.
type Base struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Location    string    `json:"location"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// EquipmentType groups assets of the same kind across bases.
type EquipmentType struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Asset is either a unique serialized item or a fungible pool of identical
// units at one base. CurrentBalance is only adjusted for fungible assets.
type Asset struct {
	ID              string    `json:"id"`
	EquipmentTypeID string    `json:"equipmentTypeId"`
	ModelName       string    `json:"modelName"`
	SerialNumber    string    `json:"serialNumber,omitempty"`
	CurrentBaseID   string    `json:"currentBaseId"`
	Status          string    `json:"status"`
	IsFungible      bool      `json:"isFungible"`
	CurrentBalance  int       `json:"currentBalance"`
	ImageMime       string    `json:"imageMime,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`

	// Joined fields (not always populated).
	EquipmentTypeName string `json:"equipmentTypeName,omitempty"`
	Category          string `json:"category,omitempty"`
	BaseName          string `json:"baseName,omitempty"`
}

// Asset statuses.
const (
	AssetStatusOperational = "Operational"
	AssetStatusMaintenance = "Maintenance"
	AssetStatusDamaged     = "Damaged"
	AssetStatusInTransit   = "InTransit"
)

// AssetFilter narrows an asset listing beyond the caller's scope.
type AssetFilter struct {
	BaseID          string
	EquipmentTypeID string
}
