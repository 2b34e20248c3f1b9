package inventory

import (
	"context"
	"time"

	"github.com/erazemk/armory/internal/model"
	"github.com/erazemk/armory/internal/store"
	"github.com/erazemk/armory/internal/validate"
)

// AssignmentInput is the request to hand an asset to a user.
type AssignmentInput struct {
	AssetID            string     `json:"assetId" validate:"required,uuid"`
	AssignedTo         string     `json:"assignedToUserId" validate:"required,uuid"`
	AssignmentDate     time.Time  `json:"assignmentDate" validate:"required"`
	BaseID             string     `json:"baseOfAssignmentId" validate:"required,uuid"`
	Purpose            string     `json:"purpose"`
	ExpectedReturnDate *time.Time `json:"expectedReturnDate"`
}

// CreateAssignment records an assignment at a base the caller holds.
func (s *Service) CreateAssignment(ctx context.Context, id *model.Identity, in AssignmentInput, meta model.RequestMeta) (*model.Assignment, error) {
	if err := authorize(id, movementRoles...); err != nil {
		return nil, err
	}
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if in.ExpectedReturnDate != nil && in.ExpectedReturnDate.Before(in.AssignmentDate) {
		return nil, model.Validation("expected return date is before the assignment date", "expectedReturnDate")
	}
	if err := id.RequireBase(in.BaseID); err != nil {
		return nil, err
	}

	entry := newEntry(id, model.ActionAssetAssigned, meta)
	a, err := store.CreateAssignment(ctx, s.DB, model.Assignment{
		AssetID:            in.AssetID,
		AssignedTo:         in.AssignedTo,
		AssignmentDate:     in.AssignmentDate,
		BaseID:             in.BaseID,
		Purpose:            in.Purpose,
		ExpectedReturnDate: in.ExpectedReturnDate,
		RecordedBy:         id.UserID,
	}, entry)
	if err != nil {
		return nil, err
	}
	s.publish(entry)
	return a, nil
}

// ReturnAssignment closes an active assignment.
func (s *Service) ReturnAssignment(ctx context.Context, id *model.Identity, assignmentID string, meta model.RequestMeta) (*model.Assignment, error) {
	if err := authorize(id, movementRoles...); err != nil {
		return nil, err
	}

	cur, err := store.GetAssignment(ctx, s.DB, assignmentID)
	if err != nil {
		return nil, err
	}
	if cur == nil {
		return nil, model.NotFound("assignment")
	}
	if err := id.RequireBase(cur.BaseID); err != nil {
		return nil, err
	}

	entry := newEntry(id, model.ActionAssetReturned, meta)
	a, err := store.ReturnAssignment(ctx, s.DB, assignmentID, entry)
	if err != nil {
		return nil, err
	}
	s.publish(entry)
	return a, nil
}

// ListAssignments returns assignments at bases visible to id.
func (s *Service) ListAssignments(ctx context.Context, id *model.Identity, f model.AssignmentFilter) (*model.Page[model.Assignment], error) {
	if err := authorize(id); err != nil {
		return nil, err
	}
	return store.ListAssignments(ctx, s.DB, scopeFor(id, f.BaseID), f)
}
