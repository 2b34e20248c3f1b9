package api

import (
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/erazemk/armory/internal/inventory"
	"github.com/erazemk/armory/internal/model"
	"github.com/erazemk/armory/internal/report"
)

// DashboardHandler serves the balance summary.
type DashboardHandler struct {
	Inventory *inventory.Service
}

func parseMetricsFilter(r *http.Request) (model.MetricsFilter, error) {
	q := r.URL.Query()
	dr, err := parseDateRange(q)
	if err != nil {
		return model.MetricsFilter{}, err
	}
	return model.MetricsFilter{
		BaseID:          q.Get("baseId"),
		EquipmentTypeID: q.Get("equipmentTypeId"),
		DateRange:       dr,
	}, nil
}

// Metrics handles GET /api/dashboard/metrics.
func (h *DashboardHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	f, err := parseMetricsFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	m, err := h.Inventory.Metrics(r.Context(), GetIdentity(r.Context()), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, m)
}

// RecentActivities handles GET /api/dashboard/recent-activities.
func (h *DashboardHandler) RecentActivities(w http.ResponseWriter, r *http.Request) {
	ra, err := h.Inventory.RecentActivity(r.Context(), GetIdentity(r.Context()), r.URL.Query().Get("baseId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, ra)
}

// Export handles GET /api/dashboard/export, returning the metrics and recent
// activity as an xlsx workbook.
func (h *DashboardHandler) Export(w http.ResponseWriter, r *http.Request) {
	f, err := parseMetricsFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id := GetIdentity(r.Context())

	d := report.Dashboard{GeneratedAt: time.Now(), Filter: f}
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		m, err := h.Inventory.Metrics(ctx, id, f)
		if err == nil {
			d.Metrics = *m
		}
		return err
	})
	g.Go(func() error {
		ra, err := h.Inventory.RecentActivity(ctx, id, f.BaseID)
		if err == nil {
			d.Recent = *ra
		}
		return err
	})
	if err := g.Wait(); err != nil {
		writeError(w, r, err)
		return
	}

	buf, err := report.Workbook(d)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+report.Filename(d.GeneratedAt)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	buf.WriteTo(w)
}
