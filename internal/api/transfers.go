package api

import (
	"net/http"

	"github.com/erazemk/armory/internal/inventory"
	"github.com/erazemk/armory/internal/model"
)

// TransfersHandler handles transfer endpoints.
type TransfersHandler struct {
	Inventory *inventory.Service
}

type statusRequest struct {
	Status string `json:"status"`
}

// Create handles POST /api/transfers.
func (h *TransfersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req inventory.TransferInput
	if !decodeBody(w, r, &req) {
		return
	}

	t, err := h.Inventory.CreateTransfer(r.Context(), GetIdentity(r.Context()), req, requestMeta(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, t)
}

// UpdateStatus handles PATCH /api/transfers/{id}/status.
func (h *TransfersHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !decodeBody(w, r, &req) {
		return
	}

	out, err := h.Inventory.UpdateTransferStatus(r.Context(), GetIdentity(r.Context()), r.PathValue("id"), req.Status, requestMeta(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, out.Transfer)
}

// List handles GET /api/transfers.
func (h *TransfersHandler) List(w http.ResponseWriter, r *http.Request) {
	lq, err := parseListQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	f := model.TransferFilter{
		BaseID:          lq.BaseID,
		EquipmentTypeID: lq.EquipmentTypeID,
		DateRange:       lq.DateRange,
		PageRequest:     lq.PageRequest,
	}
	if s := r.URL.Query().Get("status"); s != "" {
		if f.Status, err = model.ParseTransferStatus(s); err != nil {
			writeError(w, r, err)
			return
		}
	}

	page, err := h.Inventory.ListTransfers(r.Context(), GetIdentity(r.Context()), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonPage(w, "transfers", page)
}
