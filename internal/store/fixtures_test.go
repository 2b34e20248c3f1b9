package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/erazemk/armory/internal/model"
)

type fixture struct {
	db    *sql.DB
	base1 *model.Base
	base2 *model.Base
	base3 *model.Base
	ammo  *model.EquipmentType
	arms  *model.EquipmentType
	admin *model.User
}

var fixtureSeq atomic.Int64

func newFixture(t *testing.T, database *sql.DB) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{db: database}

	var err error
	if f.base1, err = CreateBase(ctx, database, "Fort Alpha", "North", ""); err != nil {
		t.Fatalf("CreateBase: %v", err)
	}
	if f.base2, err = CreateBase(ctx, database, "Camp Bravo", "South", ""); err != nil {
		t.Fatalf("CreateBase: %v", err)
	}
	if f.base3, err = CreateBase(ctx, database, "Station Charlie", "East", ""); err != nil {
		t.Fatalf("CreateBase: %v", err)
	}
	if f.ammo, err = CreateEquipmentType(ctx, database, "Ammunition", "Consumable", ""); err != nil {
		t.Fatalf("CreateEquipmentType: %v", err)
	}
	if f.arms, err = CreateEquipmentType(ctx, database, "Small Arms", "Weapon", ""); err != nil {
		t.Fatalf("CreateEquipmentType: %v", err)
	}
	f.admin = f.user(t, model.RoleAdmin)
	return f
}

func (f *fixture) user(t *testing.T, role model.Role, bases ...string) *model.User {
	t.Helper()
	n := fixtureSeq.Add(1)
	u, err := CreateUser(context.Background(), f.db, NewUser{
		Username:     fmt.Sprintf("user%d", n),
		Email:        fmt.Sprintf("user%d@example.com", n),
		FullName:     fmt.Sprintf("User %d", n),
		PasswordHash: "hash",
		Roles:        []model.Role{role},
		Bases:        bases,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return u
}

func (f *fixture) fungible(t *testing.T, et *model.EquipmentType, base *model.Base, balance int) *model.Asset {
	t.Helper()
	a, err := CreateAsset(context.Background(), f.db, model.Asset{
		EquipmentTypeID: et.ID,
		ModelName:       "5.56mm NATO",
		CurrentBaseID:   base.ID,
		IsFungible:      true,
		CurrentBalance:  balance,
	})
	if err != nil {
		t.Fatalf("CreateAsset: %v", err)
	}
	return a
}

func (f *fixture) serialized(t *testing.T, base *model.Base, serial string) *model.Asset {
	t.Helper()
	a, err := CreateAsset(context.Background(), f.db, model.Asset{
		EquipmentTypeID: f.arms.ID,
		ModelName:       "M4A1 Carbine",
		SerialNumber:    serial,
		CurrentBaseID:   base.ID,
	})
	if err != nil {
		t.Fatalf("CreateAsset: %v", err)
	}
	return a
}

func (f *fixture) balance(t *testing.T, assetID string) int {
	t.Helper()
	a, err := GetAsset(context.Background(), f.db, assetID)
	if err != nil || a == nil {
		t.Fatalf("GetAsset(%s) = %v, %v", assetID, a, err)
	}
	return a.CurrentBalance
}

func (f *fixture) purchase(t *testing.T, a *model.Asset, qty int) *model.Purchase {
	t.Helper()
	p, err := CreatePurchase(context.Background(), f.db, model.Purchase{
		AssetID:         a.ID,
		Quantity:        qty,
		PurchaseDate:    time.Now(),
		ReceivingBaseID: a.CurrentBaseID,
		RecordedBy:      f.admin.ID,
	}, &model.AuditEntry{UserID: f.admin.ID, Action: model.ActionPurchaseCreated})
	if err != nil {
		t.Fatalf("CreatePurchase: %v", err)
	}
	return p
}

func (f *fixture) transfer(t *testing.T, a *model.Asset, to *model.Base, qty int) *model.Transfer {
	t.Helper()
	tr, err := CreateTransfer(context.Background(), f.db, model.Transfer{
		AssetID:           a.ID,
		Quantity:          qty,
		SourceBaseID:      a.CurrentBaseID,
		DestinationBaseID: to.ID,
		TransferDate:      time.Now(),
		InitiatedBy:       f.admin.ID,
	}, &model.AuditEntry{UserID: f.admin.ID, Action: model.ActionTransferInitiated})
	if err != nil {
		t.Fatalf("CreateTransfer: %v", err)
	}
	return tr
}

func (f *fixture) setStatus(t *testing.T, id string, target model.TransferStatus, policy model.MissingSiblingPolicy) (*TransferOutcome, error) {
	t.Helper()
	action := model.ActionTransferCompleted
	if target == model.TransferCancelled {
		action = model.ActionTransferCancelled
	}
	return UpdateTransferStatus(context.Background(), f.db, id, target, f.admin.ID, policy,
		&model.AuditEntry{UserID: f.admin.ID, Action: action})
}
