package model

import "time"

// AuditAction is the fixed tag of an audit entry.
type AuditAction string

// Audit actions.
const (
	ActionUserLogin           AuditAction = "USER_LOGIN"
	ActionLoginFailed         AuditAction = "LOGIN_FAILED"
	ActionUserRegistered      AuditAction = "USER_REGISTERED"
	ActionUserLogout          AuditAction = "USER_LOGOUT"
	ActionProfileUpdated      AuditAction = "PROFILE_UPDATED"
	ActionPasswordChanged     AuditAction = "PASSWORD_CHANGED"
	ActionPurchaseCreated     AuditAction = "PURCHASE_CREATED"
	ActionTransferInitiated   AuditAction = "TRANSFER_INITIATED"
	ActionTransferCompleted   AuditAction = "TRANSFER_COMPLETED"
	ActionTransferCancelled   AuditAction = "TRANSFER_CANCELLED"
	ActionAssetAssigned       AuditAction = "ASSET_ASSIGNED"
	ActionAssetReturned       AuditAction = "ASSET_RETURNED"
	ActionExpenditureRecorded AuditAction = "EXPENDITURE_RECORDED"
	ActionAssetImageUpdated   AuditAction = "ASSET_IMAGE_UPDATED"
)

// AuditStatus is the outcome recorded with an entry.
type AuditStatus string

// Audit outcomes.
const (
	AuditSuccess AuditStatus = "Success"
	AuditFailure AuditStatus = "Failure"
)

// AuditEntry is an append-only record of a state-changing or security event.
// UserID is empty for anonymous events such as a failed login.
type AuditEntry struct {
	ID        string         `json:"id"`
	UserID    string         `json:"userId,omitempty"`
	Action    AuditAction    `json:"action"`
	Details   map[string]any `json:"details"`
	IPAddress string         `json:"ipAddress,omitempty"`
	Status    AuditStatus    `json:"status"`
	CreatedAt time.Time      `json:"createdAt"`
}

// AuditFilter narrows an audit listing.
type AuditFilter struct {
	UserID string
	Action AuditAction
	DateRange
	PageRequest
}

// RequestMeta carries transport details that end up in audit entries.
type RequestMeta struct {
	IP string
}
