package model

import "time"

// Assignment hands custody of an asset to a user. It never changes balances.
type Assignment struct {
	ID                 string     `json:"id"`
	AssetID            string     `json:"assetId"`
	AssignedTo         string     `json:"assignedToUserId"`
	AssignmentDate     time.Time  `json:"assignmentDate"`
	BaseID             string     `json:"baseOfAssignmentId"`
	Purpose            string     `json:"purpose,omitempty"`
	ExpectedReturnDate *time.Time `json:"expectedReturnDate,omitempty"`
	ReturnedDate       *time.Time `json:"returnedDate,omitempty"`
	IsActive           bool       `json:"isActive"`
	RecordedBy         string     `json:"recordedByUserId"`
	CreatedAt          time.Time  `json:"createdAt"`

	// Joined fields (not always populated).
	AssetModel     string `json:"assetModel,omitempty"`
	AssignedToName string `json:"assignedToName,omitempty"`
	BaseName       string `json:"baseName,omitempty"`
}

// AssignmentFilter narrows an assignment listing.
type AssignmentFilter struct {
	BaseID          string
	EquipmentTypeID string
	UserID          string
	IsActive        *bool
	PageRequest
}

// Expenditure records consumption of an asset. Expenditures are never updated.
type Expenditure struct {
	ID              string    `json:"id"`
	AssetID         string    `json:"assetId"`
	Quantity        int       `json:"quantityExpended"`
	ExpenditureDate time.Time `json:"expenditureDate"`
	BaseID          string    `json:"baseId"`
	Reason          string    `json:"reason,omitempty"`
	ReportedBy      string    `json:"reportedByUserId"`
	CreatedAt       time.Time `json:"createdAt"`

	// Joined fields (not always populated).
	AssetModel        string `json:"assetModel,omitempty"`
	EquipmentTypeName string `json:"equipmentTypeName,omitempty"`
	BaseName          string `json:"baseName,omitempty"`
}

// ExpenditureFilter narrows an expenditure listing.
type ExpenditureFilter struct {
	BaseID          string
	EquipmentTypeID string
	DateRange
	PageRequest
}
