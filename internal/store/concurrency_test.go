package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/erazemk/armory/internal/db"
	"github.com/erazemk/armory/internal/model"
)

// Concurrent purchases and expenditures against one asset must not lose
// updates.
func TestConcurrentLedgerUpdates(t *testing.T) {
	f := newFixture(t, db.NewTestFileDB(t))
	ctx := context.Background()
	a := f.fungible(t, f.ammo, f.base1, 100)

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers*2)

	for range workers {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := CreatePurchase(ctx, f.db, model.Purchase{
				AssetID:         a.ID,
				Quantity:        3,
				PurchaseDate:    time.Now(),
				ReceivingBaseID: f.base1.ID,
				RecordedBy:      f.admin.ID,
			}, &model.AuditEntry{UserID: f.admin.ID, Action: model.ActionPurchaseCreated})
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := CreateExpenditure(ctx, f.db, model.Expenditure{
				AssetID:         a.ID,
				Quantity:        2,
				ExpenditureDate: time.Now(),
				BaseID:          f.base1.ID,
				ReportedBy:      f.admin.ID,
			}, &model.AuditEntry{UserID: f.admin.ID, Action: model.ActionExpenditureRecorded})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("concurrent write: %v", err)
		}
	}

	// 100 + 20*3 - 20*2; the balance never approaches zero so no clamp applies.
	if got := f.balance(t, a.ID); got != 120 {
		t.Errorf("balance = %d, want 120", got)
	}

	n, err := CountAudit(ctx, f.db, model.ActionExpenditureRecorded, model.AuditSuccess)
	if err != nil {
		t.Fatal(err)
	}
	if n != workers {
		t.Errorf("expenditure audit entries = %d, want %d", n, workers)
	}
}
