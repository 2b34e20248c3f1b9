package store

import (
	"context"
	"testing"

	"github.com/erazemk/armory/internal/db"
)

func TestGetJWTSecret_GeneratesAndPersists(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	secret1, err := GetJWTSecret(ctx, database)
	if err != nil {
		t.Fatal(err)
	}
	if len(secret1) != 64 { // 32 bytes = 64 hex chars
		t.Fatalf("expected 64 hex chars, got %d", len(secret1))
	}

	secret2, err := GetJWTSecret(ctx, database)
	if err != nil {
		t.Fatal(err)
	}
	if secret1 != secret2 {
		t.Fatalf("expected same secret, got %q and %q", secret1, secret2)
	}
}

func TestSettings(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	v, err := GetSetting(ctx, database, SettingSeededAt)
	if err != nil || v != "" {
		t.Fatalf("unset setting = %q, %v", v, err)
	}

	for _, want := range []string{"first", "second"} {
		if err := SetSetting(ctx, database, SettingSeededAt, want); err != nil {
			t.Fatal(err)
		}
		got, err := GetSetting(ctx, database, SettingSeededAt)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("setting = %q, want %q", got, want)
		}
	}
}
