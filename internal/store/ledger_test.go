package store

import (
	"context"
	"testing"

	"github.com/erazemk/armory/internal/db"
	"github.com/erazemk/armory/internal/model"
)

func TestLedgerCreditDebit(t *testing.T) {
	database := db.NewTestDB(t)
	f := newFixture(t, database)
	ctx := context.Background()
	a := f.fungible(t, f.ammo, f.base1, 10)

	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer tx.Rollback()

	bal, err := Credit(ctx, tx, a.ID, 15)
	if err != nil {
		t.Fatalf("Credit: %v", err)
	}
	if bal != 25 {
		t.Errorf("balance after credit = %d, want 25", bal)
	}

	res, err := Debit(ctx, tx, a.ID, 5)
	if err != nil {
		t.Fatalf("Debit: %v", err)
	}
	if res.Balance != 20 || res.Applied != 5 || res.Clamped() {
		t.Errorf("Debit = %+v, want balance 20 applied 5", res)
	}

	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}
	if got := f.balance(t, a.ID); got != 20 {
		t.Errorf("committed balance = %d, want 20", got)
	}
}

func TestLedgerClampedDebit(t *testing.T) {
	database := db.NewTestDB(t)
	f := newFixture(t, database)
	ctx := context.Background()
	a := f.fungible(t, f.ammo, f.base1, 5)

	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer tx.Rollback()

	res, err := Debit(ctx, tx, a.ID, 10)
	if err != nil {
		t.Fatalf("Debit: %v", err)
	}
	if res.Balance != 0 {
		t.Errorf("balance = %d, want 0", res.Balance)
	}
	if res.Requested != 10 || res.Applied != 5 {
		t.Errorf("requested/applied = %d/%d, want 10/5", res.Requested, res.Applied)
	}
	if !res.Clamped() {
		t.Error("expected debit to be clamped")
	}
}

func TestLedgerRejectsNonPositive(t *testing.T) {
	database := db.NewTestDB(t)
	f := newFixture(t, database)
	ctx := context.Background()
	a := f.fungible(t, f.ammo, f.base1, 5)

	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer tx.Rollback()

	for _, qty := range []int{0, -3} {
		if _, err := Credit(ctx, tx, a.ID, qty); model.KindOf(err) != model.KindValidation {
			t.Errorf("Credit(%d) error = %v, want validation", qty, err)
		}
		if _, err := Debit(ctx, tx, a.ID, qty); model.KindOf(err) != model.KindValidation {
			t.Errorf("Debit(%d) error = %v, want validation", qty, err)
		}
	}
}

func TestLedgerIgnoresNonFungible(t *testing.T) {
	database := db.NewTestDB(t)
	f := newFixture(t, database)
	ctx := context.Background()
	a := f.serialized(t, f.base1, "SN-1")

	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer tx.Rollback()

	if _, err := Credit(ctx, tx, a.ID, 1); model.KindOf(err) != model.KindNotFound {
		t.Errorf("Credit on serialized asset error = %v, want not found", err)
	}
}

// A sequence of credits and debits ends at max(0, running total) with
// clamping applied at each step in commit order.
func TestLedgerSequence(t *testing.T) {
	database := db.NewTestDB(t)
	f := newFixture(t, database)
	ctx := context.Background()
	a := f.fungible(t, f.ammo, f.base1, 0)

	steps := []int{+10, -4, -20, +7, -3, +1}
	want := 0
	for _, s := range steps {
		tx, err := database.BeginTx(ctx, nil)
		if err != nil {
			t.Fatal(err)
		}
		if s > 0 {
			_, err = Credit(ctx, tx, a.ID, s)
			want += s
		} else {
			_, err = Debit(ctx, tx, a.ID, -s)
			want = max(0, want+s)
		}
		if err != nil {
			tx.Rollback()
			t.Fatalf("step %d: %v", s, err)
		}
		if err := tx.Commit(); err != nil {
			t.Fatal(err)
		}
	}

	if got := f.balance(t, a.ID); got != want {
		t.Errorf("balance = %d, want %d", got, want)
	}
}

func TestLocateFungibleSibling(t *testing.T) {
	database := db.NewTestDB(t)
	f := newFixture(t, database)
	ctx := context.Background()
	f.fungible(t, f.ammo, f.base1, 5)
	sibling := f.fungible(t, f.ammo, f.base2, 0)
	f.serialized(t, f.base3, "SN-9")

	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer tx.Rollback()

	got, err := LocateFungibleSibling(ctx, tx, f.ammo.ID, f.base2.ID)
	if err != nil {
		t.Fatalf("LocateFungibleSibling: %v", err)
	}
	if got == nil || got.ID != sibling.ID {
		t.Errorf("sibling = %v, want %s", got, sibling.ID)
	}

	got, err = LocateFungibleSibling(ctx, tx, f.arms.ID, f.base3.ID)
	if err != nil {
		t.Fatalf("LocateFungibleSibling: %v", err)
	}
	if got != nil {
		t.Errorf("expected no fungible sibling for serialized asset, got %s", got.ID)
	}
}
