package api

import (
	"net/http"

	"github.com/erazemk/armory/internal/inventory"
	"github.com/erazemk/armory/internal/model"
)

// AssignmentsHandler handles assignment endpoints.
type AssignmentsHandler struct {
	Inventory *inventory.Service
}

// Create handles POST /api/assignments.
func (h *AssignmentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req inventory.AssignmentInput
	if !decodeBody(w, r, &req) {
		return
	}

	a, err := h.Inventory.CreateAssignment(r.Context(), GetIdentity(r.Context()), req, requestMeta(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, a)
}

// Return handles PATCH /api/assignments/{id}/return.
func (h *AssignmentsHandler) Return(w http.ResponseWriter, r *http.Request) {
	a, err := h.Inventory.ReturnAssignment(r.Context(), GetIdentity(r.Context()), r.PathValue("id"), requestMeta(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, a)
}

// List handles GET /api/assignments.
func (h *AssignmentsHandler) List(w http.ResponseWriter, r *http.Request) {
	lq, err := parseListQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	active, err := parseBool(r.URL.Query(), "isActive")
	if err != nil {
		writeError(w, r, err)
		return
	}

	page, err := h.Inventory.ListAssignments(r.Context(), GetIdentity(r.Context()), model.AssignmentFilter{
		BaseID:          lq.BaseID,
		EquipmentTypeID: lq.EquipmentTypeID,
		UserID:          r.URL.Query().Get("userId"),
		IsActive:        active,
		PageRequest:     lq.PageRequest,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonPage(w, "assignments", page)
}
