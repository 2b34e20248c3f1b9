package api

import (
	"context"
	"net/http"
	"time"

	"github.com/erazemk/armory/internal/audit"
	"github.com/erazemk/armory/internal/auth"
	"github.com/erazemk/armory/internal/inventory"
	"github.com/erazemk/armory/internal/model"
)

// Deps are the services the API is built on.
type Deps struct {
	Auth      *auth.Service
	Inventory *inventory.Service
	Hub       *audit.Hub
}

// NewRouter creates the API router with all endpoints registered. Role gates
// mirror the service checks; base checks happen in the services.
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{Auth: d.Auth}
	profileHandler := &ProfileHandler{Auth: d.Auth}
	assetsHandler := &AssetsHandler{Inventory: d.Inventory}
	purchasesHandler := &PurchasesHandler{Inventory: d.Inventory}
	transfersHandler := &TransfersHandler{Inventory: d.Inventory}
	assignmentsHandler := &AssignmentsHandler{Inventory: d.Inventory}
	expendituresHandler := &ExpendituresHandler{Inventory: d.Inventory}
	dashboardHandler := &DashboardHandler{Inventory: d.Inventory}
	auditHandler := &AuditHandler{Inventory: d.Inventory, Hub: d.Hub}

	authMW := AuthMiddleware(d.Auth)
	requireAdmin := RequireRole(model.RoleAdmin)
	requirePurchaser := RequireRole(model.RoleAdmin, model.RoleLogisticsOfficer)
	requireApprover := RequireRole(model.RoleAdmin, model.RoleBaseCommander)
	requireMover := RequireRole(model.RoleAdmin, model.RoleBaseCommander, model.RoleLogisticsOfficer)

	// Public.
	mux.HandleFunc("GET /health", health(d))
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)

	// Account.
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("GET /api/user/profile", authMW(http.HandlerFunc(profileHandler.Get)))
	mux.Handle("PUT /api/user/profile", authMW(http.HandlerFunc(profileHandler.Update)))

	// Assets and reference data (scoped).
	mux.Handle("GET /api/assets", authMW(http.HandlerFunc(assetsHandler.List)))
	mux.Handle("GET /api/assets/equipment-types", authMW(http.HandlerFunc(assetsHandler.EquipmentTypes)))
	mux.Handle("GET /api/assets/bases", authMW(http.HandlerFunc(assetsHandler.Bases)))
	mux.Handle("GET /api/assets/users", authMW(http.HandlerFunc(assetsHandler.Users)))
	mux.Handle("PUT /api/assets/{id}/image", authMW(requirePurchaser(http.HandlerFunc(assetsHandler.UploadImage))))
	mux.Handle("GET /api/assets/{id}/image", authMW(http.HandlerFunc(assetsHandler.GetImage)))

	// Purchases.
	mux.Handle("POST /api/purchases", authMW(requirePurchaser(http.HandlerFunc(purchasesHandler.Create))))
	mux.Handle("GET /api/purchases", authMW(http.HandlerFunc(purchasesHandler.List)))

	// Transfers.
	mux.Handle("POST /api/transfers", authMW(requireMover(http.HandlerFunc(transfersHandler.Create))))
	mux.Handle("PATCH /api/transfers/{id}/status", authMW(requireApprover(http.HandlerFunc(transfersHandler.UpdateStatus))))
	mux.Handle("GET /api/transfers", authMW(http.HandlerFunc(transfersHandler.List)))

	// Assignments.
	mux.Handle("POST /api/assignments", authMW(requireMover(http.HandlerFunc(assignmentsHandler.Create))))
	mux.Handle("PATCH /api/assignments/{id}/return", authMW(requireMover(http.HandlerFunc(assignmentsHandler.Return))))
	mux.Handle("GET /api/assignments", authMW(http.HandlerFunc(assignmentsHandler.List)))

	// Expenditures.
	mux.Handle("POST /api/expenditures", authMW(requireMover(http.HandlerFunc(expendituresHandler.Create))))
	mux.Handle("GET /api/expenditures", authMW(http.HandlerFunc(expendituresHandler.List)))

	// Dashboard.
	mux.Handle("GET /api/dashboard/metrics", authMW(http.HandlerFunc(dashboardHandler.Metrics)))
	mux.Handle("GET /api/dashboard/recent-activities", authMW(http.HandlerFunc(dashboardHandler.RecentActivities)))
	mux.Handle("GET /api/dashboard/export", authMW(http.HandlerFunc(dashboardHandler.Export)))

	// Audit (admin only).
	mux.Handle("GET /api/audit", authMW(requireAdmin(http.HandlerFunc(auditHandler.List))))
	mux.Handle("GET /api/audit/stream", authMW(requireAdmin(http.HandlerFunc(auditHandler.Stream))))

	return mux
}

func health(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := d.Auth.DB.PingContext(ctx); err != nil {
			jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		jsonResponse(w, http.StatusOK, map[string]any{
			"status":        "ok",
			"streamClients": d.Hub.Len(),
		})
	}
}
