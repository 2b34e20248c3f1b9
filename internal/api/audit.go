package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/erazemk/armory/internal/audit"
	"github.com/erazemk/armory/internal/inventory"
	"github.com/erazemk/armory/internal/model"
)

// AuditHandler exposes the audit trail to administrators.
type AuditHandler struct {
	Inventory *inventory.Service
	Hub       *audit.Hub
	Upgrader  websocket.Upgrader
}

// List handles GET /api/audit.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p, err := parsePage(q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	dr, err := parseDateRange(q)
	if err != nil {
		writeError(w, r, err)
		return
	}

	page, err := h.Inventory.ListAudit(r.Context(), GetIdentity(r.Context()), model.AuditFilter{
		UserID:      q.Get("userId"),
		Action:      model.AuditAction(q.Get("action")),
		DateRange:   dr,
		PageRequest: p,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonPage(w, "entries", page)
}

// Stream handles GET /api/audit/stream, upgrading to a websocket that receives
// every committed audit entry as a JSON text message.
func (h *AuditHandler) Stream(w http.ResponseWriter, r *http.Request) {
	id := GetIdentity(r.Context())

	conn, err := h.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already answered the client.
		slog.Warn("audit stream upgrade failed", "user", id.Username, "error", err)
		return
	}
	h.Hub.Serve(conn, id.UserID)
}
