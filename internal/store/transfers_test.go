package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erazemk/armory/internal/access"
	"github.com/erazemk/armory/internal/db"
	"github.com/erazemk/armory/internal/model"
)

// Asset at Base1 with balance 50: purchase 20, move all 70 to Base2.
func TestTransferScenario(t *testing.T) {
	tests := []struct {
		name        string
		withSibling bool
	}{
		{"sibling present", true},
		{"sibling absent", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, db.NewTestDB(t))
			a := f.fungible(t, f.ammo, f.base1, 50)
			var sibling *model.Asset
			if tt.withSibling {
				sibling = f.fungible(t, f.ammo, f.base2, 30)
			}

			f.purchase(t, a, 20)
			if got := f.balance(t, a.ID); got != 70 {
				t.Fatalf("balance after purchase = %d, want 70", got)
			}

			tr := f.transfer(t, a, f.base2, 70)
			if tr.Status != model.TransferInitiated {
				t.Fatalf("status = %q, want Initiated", tr.Status)
			}
			if got := f.balance(t, a.ID); got != 70 {
				t.Fatalf("initiating moved balance: %d", got)
			}

			out, err := f.setStatus(t, tr.ID, model.TransferCompleted, model.SiblingSkip)
			if err != nil {
				t.Fatalf("complete transfer: %v", err)
			}
			if out.Transfer.Status != model.TransferCompleted || out.Transfer.CompletedAt == nil {
				t.Errorf("transfer = %+v, want Completed with completedAt", out.Transfer)
			}
			if got := f.balance(t, a.ID); got != 0 {
				t.Errorf("source balance = %d, want 0", got)
			}

			if tt.withSibling {
				if got := f.balance(t, sibling.ID); got != 100 {
					t.Errorf("destination balance = %d, want 100", got)
				}
				if !out.DestinationCredited {
					t.Error("expected destination to be credited")
				}
			} else {
				if out.DestinationCredited {
					t.Error("expected destination credit to be skipped")
				}
				assets, err := ListAssets(context.Background(), f.db, access.Bases(f.base2.ID), model.AssetFilter{})
				if err != nil {
					t.Fatal(err)
				}
				if len(assets) != 0 {
					t.Errorf("skip policy created assets at destination: %v", assets)
				}
			}
		})
	}
}

func TestTransferMissingSiblingPolicies(t *testing.T) {
	t.Run("create", func(t *testing.T) {
		f := newFixture(t, db.NewTestDB(t))
		a := f.fungible(t, f.ammo, f.base1, 40)
		tr := f.transfer(t, a, f.base2, 15)

		out, err := f.setStatus(t, tr.ID, model.TransferCompleted, model.SiblingCreate)
		if err != nil {
			t.Fatalf("complete transfer: %v", err)
		}
		if !out.SiblingCreated || out.DestinationBalance != 15 {
			t.Errorf("outcome = %+v, want created sibling with 15", out)
		}
		if got := f.balance(t, a.ID); got != 25 {
			t.Errorf("source balance = %d, want 25", got)
		}
	})

	t.Run("reject", func(t *testing.T) {
		f := newFixture(t, db.NewTestDB(t))
		a := f.fungible(t, f.ammo, f.base1, 40)
		tr := f.transfer(t, a, f.base2, 15)

		_, err := f.setStatus(t, tr.ID, model.TransferCompleted, model.SiblingReject)
		if model.KindOf(err) != model.KindConflict {
			t.Fatalf("error = %v, want conflict", err)
		}
		if got := f.balance(t, a.ID); got != 40 {
			t.Errorf("rejected completion changed source balance to %d", got)
		}
		got, err := GetTransfer(context.Background(), f.db, tr.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.Status != model.TransferInitiated {
			t.Errorf("status = %q, want Initiated after rollback", got.Status)
		}
	})
}

func TestTransferEffectFiresOnce(t *testing.T) {
	f := newFixture(t, db.NewTestDB(t))
	a := f.fungible(t, f.ammo, f.base1, 50)
	sibling := f.fungible(t, f.ammo, f.base2, 0)

	tr := f.transfer(t, a, f.base2, 10)
	if _, err := f.setStatus(t, tr.ID, model.TransferCompleted, model.SiblingSkip); err != nil {
		t.Fatal(err)
	}

	for _, target := range []model.TransferStatus{model.TransferCompleted, model.TransferCancelled} {
		_, err := f.setStatus(t, tr.ID, target, model.SiblingSkip)
		if !errors.Is(err, model.ErrTransferClosed) {
			t.Errorf("re-transition to %s error = %v, want ErrTransferClosed", target, err)
		}
	}

	if got := f.balance(t, a.ID); got != 40 {
		t.Errorf("source balance = %d, want 40", got)
	}
	if got := f.balance(t, sibling.ID); got != 10 {
		t.Errorf("destination balance = %d, want 10", got)
	}
}

func TestTransferCancelHasNoEffect(t *testing.T) {
	f := newFixture(t, db.NewTestDB(t))
	a := f.fungible(t, f.ammo, f.base1, 50)
	sibling := f.fungible(t, f.ammo, f.base2, 5)

	tr := f.transfer(t, a, f.base2, 20)
	out, err := f.setStatus(t, tr.ID, model.TransferCancelled, model.SiblingSkip)
	if err != nil {
		t.Fatal(err)
	}
	if out.Transfer.Status != model.TransferCancelled || out.Transfer.CompletedAt != nil {
		t.Errorf("transfer = %+v", out.Transfer)
	}
	if f.balance(t, a.ID) != 50 || f.balance(t, sibling.ID) != 5 {
		t.Error("cancel changed balances")
	}

	if _, err := f.setStatus(t, tr.ID, model.TransferCompleted, model.SiblingSkip); !errors.Is(err, model.ErrTransferClosed) {
		t.Errorf("completing cancelled transfer error = %v", err)
	}
}

func TestTransferToSameBaseRejected(t *testing.T) {
	f := newFixture(t, db.NewTestDB(t))
	a := f.fungible(t, f.ammo, f.base1, 50)

	_, err := CreateTransfer(context.Background(), f.db, model.Transfer{
		AssetID:           a.ID,
		Quantity:          5,
		SourceBaseID:      f.base1.ID,
		DestinationBaseID: f.base1.ID,
		TransferDate:      time.Now(),
		InitiatedBy:       f.admin.ID,
	}, nil)
	if !errors.Is(err, model.ErrInvalidTransfer) {
		t.Fatalf("error = %v, want ErrInvalidTransfer", err)
	}

	page, err := ListTransfers(context.Background(), f.db, access.Unrestricted(), model.TransferFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if page.Pagination.Total != 0 {
		t.Errorf("rejected transfer was persisted: total = %d", page.Pagination.Total)
	}
}

func TestTransferInsufficientBalance(t *testing.T) {
	f := newFixture(t, db.NewTestDB(t))
	a := f.fungible(t, f.ammo, f.base1, 5)
	f.fungible(t, f.ammo, f.base2, 0)

	tr := f.transfer(t, a, f.base2, 10)
	if _, err := f.setStatus(t, tr.ID, model.TransferCompleted, model.SiblingSkip); model.KindOf(err) != model.KindConflict {
		t.Errorf("error = %v, want conflict", err)
	}
	if got := f.balance(t, a.ID); got != 5 {
		t.Errorf("source balance = %d, want 5", got)
	}
}

func TestTransferRelocatesSerializedAsset(t *testing.T) {
	f := newFixture(t, db.NewTestDB(t))
	a := f.serialized(t, f.base1, "VEH001")

	tr := f.transfer(t, a, f.base3, 1)
	if _, err := f.setStatus(t, tr.ID, model.TransferCompleted, model.SiblingSkip); err != nil {
		t.Fatal(err)
	}

	got, err := GetAsset(context.Background(), f.db, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.CurrentBaseID != f.base3.ID || got.CurrentBalance != 1 {
		t.Errorf("asset = base %s balance %d, want base %s balance 1", got.CurrentBaseID, got.CurrentBalance, f.base3.ID)
	}
}

func TestListTransfersScope(t *testing.T) {
	f := newFixture(t, db.NewTestDB(t))
	a1 := f.fungible(t, f.ammo, f.base1, 100)
	a3 := f.fungible(t, f.ammo, f.base3, 100)

	f.transfer(t, a1, f.base2, 1) // base1 -> base2
	f.transfer(t, a3, f.base2, 1) // base3 -> base2
	f.transfer(t, a3, f.base1, 1) // base3 -> base1

	ctx := context.Background()
	tests := []struct {
		name  string
		scope access.Scope
		want  int
	}{
		{"unrestricted", access.Unrestricted(), 3},
		{"base1 either side", access.Bases(f.base1.ID), 2},
		{"base2 destination only", access.Bases(f.base2.ID), 2},
		{"empty", access.Bases(), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := ListTransfers(ctx, f.db, tt.scope, model.TransferFilter{})
			if err != nil {
				t.Fatal(err)
			}
			if page.Pagination.Total != tt.want || len(page.Items) != tt.want {
				t.Errorf("total = %d items = %d, want %d", page.Pagination.Total, len(page.Items), tt.want)
			}
			for _, tr := range page.Items {
				if !tt.scope.Allows(tr.SourceBaseID) && !tt.scope.Allows(tr.DestinationBaseID) {
					t.Errorf("transfer %s outside scope", tr.ID)
				}
			}
		})
	}

	page, err := ListTransfers(ctx, f.db, access.Unrestricted(), model.TransferFilter{Status: model.TransferCompleted})
	if err != nil {
		t.Fatal(err)
	}
	if page.Pagination.Total != 0 {
		t.Errorf("completed filter total = %d, want 0", page.Pagination.Total)
	}
}
