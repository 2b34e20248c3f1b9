package api

import (
	"net/http"

	"github.com/erazemk/armory/internal/auth"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	Auth *auth.Service
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := h.Auth.Login(r.Context(), req.Username, req.Password, requestMeta(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, res)
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterInput
	if !decodeBody(w, r, &req) {
		return
	}

	u, err := h.Auth.Register(r.Context(), req, requestMeta(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, map[string]string{
		"message": "user registered",
		"userId":  u.ID,
	})
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	if err := h.Auth.Logout(r.Context(), claims, requestMeta(r)); err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// ChangePassword handles PUT /api/auth/password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req auth.PasswordInput
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.Auth.ChangePassword(r.Context(), GetIdentity(r.Context()), req, requestMeta(r)); err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "password updated"})
}
