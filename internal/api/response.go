package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/armory/internal/model"
)

// errorResponse is the body of every non-2xx JSON response.
type errorResponse struct {
	Error  string   `json:"error"`
	Code   string   `json:"code,omitempty"`
	Fields []string `json:"fields,omitempty"`
}

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, errorResponse{Error: message})
}

// jsonPage writes a page of items as {key: [...], pagination: {...}}, never
// encoding a null array.
func jsonPage[T any](w http.ResponseWriter, key string, p *model.Page[T]) {
	items := p.Items
	if items == nil {
		items = []T{}
	}
	jsonResponse(w, http.StatusOK, map[string]any{key: items, "pagination": p.Pagination})
}

var statusByKind = map[model.ErrorKind]int{
	model.KindValidation:     http.StatusBadRequest,
	model.KindAuthentication: http.StatusUnauthorized,
	model.KindAuthorization:  http.StatusForbidden,
	model.KindNotFound:       http.StatusNotFound,
	model.KindConflict:       http.StatusConflict,
}

// writeError maps a domain error to its HTTP status. Unclassified errors are
// logged and reported as a generic internal error.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var me *model.Error
	if errors.As(err, &me) {
		if status, ok := statusByKind[me.Kind]; ok {
			jsonResponse(w, status, errorResponse{Error: me.Message, Code: me.Code, Fields: me.Fields})
			return
		}
	}
	slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	jsonError(w, http.StatusInternalServerError, "internal error")
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// decodeBody decodes the request body, answering 400 when it is malformed.
func decodeBody(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := decodeJSON(r, target); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
