package api

import (
	"net/http"
	"strconv"

	"github.com/erazemk/armory/internal/imaging"
	"github.com/erazemk/armory/internal/inventory"
	"github.com/erazemk/armory/internal/model"
)

// AssetsHandler serves assets and the reference data around them.
type AssetsHandler struct {
	Inventory *inventory.Service
}

// List handles GET /api/assets.
func (h *AssetsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	assets, err := h.Inventory.ListAssets(r.Context(), GetIdentity(r.Context()), model.AssetFilter{
		BaseID:          q.Get("baseId"),
		EquipmentTypeID: q.Get("equipmentTypeId"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, assets)
}

// EquipmentTypes handles GET /api/assets/equipment-types.
func (h *AssetsHandler) EquipmentTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.Inventory.ListEquipmentTypes(r.Context(), GetIdentity(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, types)
}

// Bases handles GET /api/assets/bases.
func (h *AssetsHandler) Bases(w http.ResponseWriter, r *http.Request) {
	bases, err := h.Inventory.ListBases(r.Context(), GetIdentity(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, bases)
}

// Users handles GET /api/assets/users.
func (h *AssetsHandler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.Inventory.ListUsers(r.Context(), GetIdentity(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, users)
}

// UploadImage handles PUT /api/assets/{id}/image.
func (h *AssetsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	// Leave room for the multipart envelope around the file.
	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadBytes+64<<10)

	if err := r.ParseMultipartForm(imaging.MaxUploadBytes); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	if err := h.Inventory.SetAssetImage(r.Context(), GetIdentity(r.Context()), r.PathValue("id"), file, requestMeta(r)); err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "image uploaded"})
}

// GetImage handles GET /api/assets/{id}/image.
func (h *AssetsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	data, mime, err := h.Inventory.AssetImage(r.Context(), GetIdentity(r.Context()), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no image")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Write(data)
}
