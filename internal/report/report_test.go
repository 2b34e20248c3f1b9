package report

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/erazemk/armory/internal/model"
)

func TestWorkbook(t *testing.T) {
	m := model.Metrics{
		OpeningBalance: 75,
		ExpendedAssets: 5,
		Breakdown:      model.Breakdown{Purchases: 10, TransfersOut: 30},
	}
	m.Derive()

	d := Dashboard{
		GeneratedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Filter:      model.MetricsFilter{BaseID: "base-1"},
		Metrics:     m,
		Recent: model.RecentActivity{
			Purchases: []model.Purchase{{
				AssetModel:   "M4A1 Carbine",
				BaseName:     "Fort Alpha",
				Quantity:     4,
				TotalCost:    decimal.NewNullDecimal(decimal.RequireFromString("10")),
				PurchaseDate: time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC),
			}},
			Transfers: []model.Transfer{{
				AssetModel:          "5.56mm NATO",
				SourceBaseName:      "Fort Alpha",
				DestinationBaseName: "Camp Bravo",
				Quantity:            30,
				Status:              model.TransferCompleted,
			}},
		},
	}

	buf, err := Workbook(d)
	if err != nil {
		t.Fatalf("Workbook: %v", err)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 3 || sheets[0] != SheetSummary {
		t.Fatalf("sheets = %v", sheets)
	}

	rows, err := f.GetRows(SheetSummary)
	if err != nil {
		t.Fatal(err)
	}
	values := map[string]string{}
	for _, r := range rows {
		if len(r) == 2 {
			values[r[0]] = r[1]
		}
	}
	for k, want := range map[string]string{
		"Base":            "base-1",
		"Equipment type":  "all",
		"From":            "open",
		"Net movement":    "-20",
		"Closing balance": "50",
	} {
		if values[k] != want {
			t.Errorf("%s = %q, want %q", k, values[k], want)
		}
	}

	if v, _ := f.GetCellValue(SheetPurchases, "F2"); v != "10.00" {
		t.Errorf("purchase total = %q", v)
	}
	if v, _ := f.GetCellValue(SheetTransfers, "F2"); v != "Completed" {
		t.Errorf("transfer status = %q", v)
	}
}

func TestFilename(t *testing.T) {
	name := Filename(time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC))
	if name != "armory-dashboard-20260301-083000.xlsx" || !strings.HasSuffix(name, ".xlsx") {
		t.Errorf("Filename = %q", name)
	}
}
