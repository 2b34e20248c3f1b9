package api

import (
	"net/http"

	"github.com/erazemk/armory/internal/inventory"
	"github.com/erazemk/armory/internal/model"
)

// ExpendituresHandler handles expenditure endpoints.
type ExpendituresHandler struct {
	Inventory *inventory.Service
}

type expenditureResponse struct {
	*model.Expenditure
	QuantityApplied int `json:"quantityApplied"`
	Balance         int `json:"balance"`
}

// Create handles POST /api/expenditures. The response reports how much was
// actually debited, which is less than requested when the balance was short
// and zero for serialized assets.
func (h *ExpendituresHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req inventory.ExpenditureInput
	if !decodeBody(w, r, &req) {
		return
	}

	out, err := h.Inventory.CreateExpenditure(r.Context(), GetIdentity(r.Context()), req, requestMeta(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, expenditureResponse{
		Expenditure:     out.Expenditure,
		QuantityApplied: out.Debit.Applied,
		Balance:         out.Debit.Balance,
	})
}

// List handles GET /api/expenditures.
func (h *ExpendituresHandler) List(w http.ResponseWriter, r *http.Request) {
	lq, err := parseListQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	page, err := h.Inventory.ListExpenditures(r.Context(), GetIdentity(r.Context()), model.ExpenditureFilter{
		BaseID:          lq.BaseID,
		EquipmentTypeID: lq.EquipmentTypeID,
		DateRange:       lq.DateRange,
		PageRequest:     lq.PageRequest,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonPage(w, "expenditures", page)
}
