package api

import (
	"net/http"

	"github.com/erazemk/armory/internal/auth"
)

// ProfileHandler serves the caller's own account.
type ProfileHandler struct {
	Auth *auth.Service
}

// Get handles GET /api/user/profile.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, err := h.Auth.Profile(r.Context(), GetIdentity(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, u)
}

// Update handles PUT /api/user/profile.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req auth.ProfileInput
	if !decodeBody(w, r, &req) {
		return
	}

	u, err := h.Auth.UpdateProfile(r.Context(), GetIdentity(r.Context()), req, requestMeta(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, u)
}
