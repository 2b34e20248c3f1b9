package api

import (
	"net/http"

	"github.com/erazemk/armory/internal/inventory"
	"github.com/erazemk/armory/internal/model"
)

// PurchasesHandler handles purchase endpoints.
type PurchasesHandler struct {
	Inventory *inventory.Service
}

// Create handles POST /api/purchases.
func (h *PurchasesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req inventory.PurchaseInput
	if !decodeBody(w, r, &req) {
		return
	}

	p, err := h.Inventory.CreatePurchase(r.Context(), GetIdentity(r.Context()), req, requestMeta(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, p)
}

// List handles GET /api/purchases.
func (h *PurchasesHandler) List(w http.ResponseWriter, r *http.Request) {
	lq, err := parseListQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	page, err := h.Inventory.ListPurchases(r.Context(), GetIdentity(r.Context()), model.PurchaseFilter{
		BaseID:          lq.BaseID,
		EquipmentTypeID: lq.EquipmentTypeID,
		DateRange:       lq.DateRange,
		PageRequest:     lq.PageRequest,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonPage(w, "purchases", page)
}
