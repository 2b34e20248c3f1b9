// Package seed loads a small demo data set: three bases, four equipment
// types, a handful of assets, one user per role and one record of each
// activity kind. Activity goes through the store so balances stay consistent
// with the ledger.
package seed

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/erazemk/armory/internal/auth"
	"github.com/erazemk/armory/internal/model"
	"github.com/erazemk/armory/internal/store"
)

// Credential is a demo login created by Run.
type Credential struct {
	Username string
	Password string
	Role     model.Role
}

// Result describes what Run did.
type Result struct {
	Skipped     bool
	Credentials []Credential
}

type seedUser struct {
	Credential
	Email    string
	FullName string
	Bases    []int
}

var users = []seedUser{
	{Credential{"admin", "admin123", model.RoleAdmin}, "admin@military.gov", "System Administrator", []int{0, 1, 2}},
	{Credential{"commander", "commander123", model.RoleBaseCommander}, "commander@military.gov", "Base Commander Alpha", []int{0}},
	{Credential{"logistics", "logistics123", model.RoleLogisticsOfficer}, "logistics@military.gov", "Logistics Officer", []int{0}},
}

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

// Run seeds the database unless it was seeded before.
func Run(ctx context.Context, db *sql.DB) (*Result, error) {
	seeded, err := store.GetSetting(ctx, db, store.SettingSeededAt)
	if err != nil {
		return nil, err
	}
	if seeded != "" {
		slog.Info("database already seeded", "at", seeded)
		return &Result{Skipped: true}, nil
	}

	var bases [3]*model.Base
	for i, b := range []struct{ name, location, desc string }{
		{"Fort Alpha", "Northern Region", "Primary training facility"},
		{"Camp Bravo", "Eastern Region", "Forward operating base"},
		{"Station Charlie", "Southern Region", "Supply depot"},
	} {
		if bases[i], err = store.CreateBase(ctx, db, b.name, b.location, b.desc); err != nil {
			return nil, fmt.Errorf("seeding base %q: %w", b.name, err)
		}
	}

	types := map[string]*model.EquipmentType{}
	for _, et := range []struct{ name, category, desc string }{
		{"Vehicle", "Ground", "Military vehicles and transport"},
		{"Small Arms", "Weapons", "Individual and crew-served weapons"},
		{"Ammunition", "Consumable", "Various ammunition types"},
		{"Communications", "Electronics", "Radio and communication equipment"},
	} {
		if types[et.name], err = store.CreateEquipmentType(ctx, db, et.name, et.category, et.desc); err != nil {
			return nil, fmt.Errorf("seeding equipment type %q: %w", et.name, err)
		}
	}

	asset := func(typ, modelName, serial string, base *model.Base, fungible bool, balance int) (*model.Asset, error) {
		a, err := store.CreateAsset(ctx, db, model.Asset{
			EquipmentTypeID: types[typ].ID,
			ModelName:       modelName,
			SerialNumber:    serial,
			CurrentBaseID:   base.ID,
			Status:          model.AssetStatusOperational,
			IsFungible:      fungible,
			CurrentBalance:  balance,
		})
		if err != nil {
			return nil, fmt.Errorf("seeding asset %q: %w", modelName, err)
		}
		return a, nil
	}
	vehicle, err := asset("Vehicle", "HMMWV M1114", "VEH001", bases[0], false, 1)
	if err != nil {
		return nil, err
	}
	rifle, err := asset("Small Arms", "M4A1 Carbine", "", bases[0], true, 0)
	if err != nil {
		return nil, err
	}
	ammo, err := asset("Ammunition", "5.56mm NATO", "", bases[0], true, 10000)
	if err != nil {
		return nil, err
	}
	radio, err := asset("Communications", "AN/PRC-152", "", bases[1], true, 25)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	ids := map[model.Role]string{}
	for _, su := range users {
		u, err := seedAccount(ctx, db, su, bases[:])
		if err != nil {
			return nil, err
		}
		ids[su.Role] = u.ID
		res.Credentials = append(res.Credentials, su.Credential)
	}
	logistics, commander := ids[model.RoleLogisticsOfficer], ids[model.RoleBaseCommander]

	if _, err := store.CreatePurchase(ctx, db, model.Purchase{
		AssetID:             rifle.ID,
		Quantity:            50,
		UnitCost:            decimal.NewNullDecimal(decimal.NewFromInt(800)),
		TotalCost:           decimal.NewNullDecimal(decimal.NewFromInt(40000)),
		SupplierInfo:        "Defense Contractor ABC",
		PurchaseOrderNumber: "PO-2024-001",
		PurchaseDate:        day("2024-01-15"),
		ReceivingBaseID:     bases[0].ID,
		RecordedBy:          logistics,
	}, nil); err != nil {
		return nil, fmt.Errorf("seeding purchase: %w", err)
	}

	tr, err := store.CreateTransfer(ctx, db, model.Transfer{
		AssetID:           radio.ID,
		Quantity:          5,
		SourceBaseID:      bases[1].ID,
		DestinationBaseID: bases[0].ID,
		TransferDate:      day("2024-01-20"),
		Reason:            "Equipment redistribution",
		InitiatedBy:       logistics,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("seeding transfer: %w", err)
	}
	if _, err := store.UpdateTransferStatus(ctx, db, tr.ID, model.TransferCompleted, commander, model.SiblingCreate, nil); err != nil {
		return nil, fmt.Errorf("completing seed transfer: %w", err)
	}

	if _, err := store.CreateAssignment(ctx, db, model.Assignment{
		AssetID:        vehicle.ID,
		AssignedTo:     commander,
		AssignmentDate: day("2024-01-10"),
		BaseID:         bases[0].ID,
		Purpose:        "Command vehicle",
		RecordedBy:     logistics,
	}, nil); err != nil {
		return nil, fmt.Errorf("seeding assignment: %w", err)
	}

	if _, err := store.CreateExpenditure(ctx, db, model.Expenditure{
		AssetID:         ammo.ID,
		Quantity:        500,
		ExpenditureDate: day("2024-01-25"),
		BaseID:          bases[0].ID,
		Reason:          "Training exercise",
		ReportedBy:      commander,
	}, nil); err != nil {
		return nil, fmt.Errorf("seeding expenditure: %w", err)
	}

	if err := store.SetSetting(ctx, db, store.SettingSeededAt, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return nil, err
	}
	slog.Info("database seeded", "bases", len(bases), "users", len(res.Credentials))
	return res, nil
}

// seedAccount creates a demo user, or grants the demo bases to an existing
// account with the same username.
func seedAccount(ctx context.Context, db *sql.DB, su seedUser, bases []*model.Base) (*model.User, error) {
	var baseIDs []string
	for _, i := range su.Bases {
		baseIDs = append(baseIDs, bases[i].ID)
	}

	existing, err := store.GetUserByUsername(ctx, db, su.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		for _, b := range baseIDs {
			if err := store.GrantBase(ctx, db, existing.ID, b); err != nil {
				return nil, err
			}
		}
		return existing, nil
	}

	hash, err := auth.HashPassword(su.Password)
	if err != nil {
		return nil, err
	}
	u, err := store.CreateUser(ctx, db, store.NewUser{
		Username:     su.Username,
		Email:        su.Email,
		FullName:     su.FullName,
		PasswordHash: hash,
		Roles:        []model.Role{su.Role},
		Bases:        baseIDs,
	})
	if err != nil {
		return nil, fmt.Errorf("seeding user %q: %w", su.Username, err)
	}
	return u, nil
}
