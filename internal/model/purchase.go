package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purchase records stock received at a base. Purchases are never updated.
type Purchase struct {
	ID                  string              `json:"id"`
	AssetID             string              `json:"assetId"`
	Quantity            int                 `json:"quantity"`
	UnitCost            decimal.NullDecimal `json:"unitCost"`
	TotalCost           decimal.NullDecimal `json:"totalCost"`
	SupplierInfo        string              `json:"supplierInfo,omitempty"`
	PurchaseOrderNumber string              `json:"purchaseOrderNumber,omitempty"`
	PurchaseDate        time.Time           `json:"purchaseDate"`
	ReceivingBaseID     string              `json:"receivingBaseId"`
	RecordedBy          string              `json:"recordedByUserId"`
	CreatedAt           time.Time           `json:"createdAt"`

	// Joined fields (not always populated).
	AssetModel        string `json:"assetModel,omitempty"`
	EquipmentTypeName string `json:"equipmentTypeName,omitempty"`
	BaseName          string `json:"receivingBaseName,omitempty"`
	RecordedByName    string `json:"recordedByName,omitempty"`
}

// PurchaseFilter narrows a purchase listing.
type PurchaseFilter struct {
	BaseID          string
	EquipmentTypeID string
	DateRange
	PageRequest
}
