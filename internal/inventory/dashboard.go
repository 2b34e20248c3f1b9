package inventory

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/erazemk/armory/internal/model"
	"github.com/erazemk/armory/internal/store"
)

// Metrics computes the balance summary for the bases visible to id. The
// aggregates are independent reads and may observe different commits.
func (s *Service) Metrics(ctx context.Context, id *model.Identity, f model.MetricsFilter) (*model.Metrics, error) {
	if err := authorize(id); err != nil {
		return nil, err
	}
	scope := scopeFor(id, f.BaseID)

	var m model.Metrics
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		m.OpeningBalance, err = store.SumBalance(gctx, s.DB, scope, f)
		return err
	})
	g.Go(func() (err error) {
		m.Breakdown.Purchases, err = store.SumPurchased(gctx, s.DB, scope, f)
		return err
	})
	g.Go(func() (err error) {
		m.Breakdown.TransfersIn, err = store.SumTransfersIn(gctx, s.DB, scope, f)
		return err
	})
	g.Go(func() (err error) {
		m.Breakdown.TransfersOut, err = store.SumTransfersOut(gctx, s.DB, scope, f)
		return err
	})
	g.Go(func() (err error) {
		m.ExpendedAssets, err = store.SumExpended(gctx, s.DB, scope, f)
		return err
	})
	g.Go(func() (err error) {
		m.AssignedAssets, err = store.CountActiveAssignments(gctx, s.DB, scope, f)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	m.Derive()
	return &m, nil
}

// RecentActivity returns the latest purchases, transfers and assignments
// visible to id.
func (s *Service) RecentActivity(ctx context.Context, id *model.Identity, baseID string) (*model.RecentActivity, error) {
	if err := authorize(id); err != nil {
		return nil, err
	}
	scope := scopeFor(id, baseID)
	first := model.PageRequest{Page: 1, Limit: model.RecentActivityLimit}

	var ra model.RecentActivity
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := store.ListPurchases(gctx, s.DB, scope, model.PurchaseFilter{PageRequest: first})
		if err == nil {
			ra.Purchases = p.Items
		}
		return err
	})
	g.Go(func() error {
		p, err := store.ListTransfers(gctx, s.DB, scope, model.TransferFilter{PageRequest: first})
		if err == nil {
			ra.Transfers = p.Items
		}
		return err
	})
	g.Go(func() error {
		p, err := store.ListAssignments(gctx, s.DB, scope, model.AssignmentFilter{PageRequest: first})
		if err == nil {
			ra.Assignments = p.Items
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &ra, nil
}
