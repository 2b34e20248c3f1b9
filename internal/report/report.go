// Package report renders dashboard data as an xlsx workbook.
package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/erazemk/armory/internal/model"
)

// ContentType is the MIME type of generated workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Sheet names.
const (
	SheetSummary   = "Summary"
	SheetPurchases = "Recent Purchases"
	SheetTransfers = "Recent Transfers"
)

// Dashboard is the data exported by Workbook.
type Dashboard struct {
	GeneratedAt time.Time
	Filter      model.MetricsFilter
	Metrics     model.Metrics
	Recent      model.RecentActivity
}

// Filename returns a download name for a workbook generated at t.
func Filename(t time.Time) string {
	return fmt.Sprintf("armory-dashboard-%s.xlsx", t.UTC().Format("20060102-150405"))
}

// Workbook builds the dashboard workbook: a summary sheet with the balance
// figures and the applied filter, and one sheet per recent activity kind.
func Workbook(d Dashboard) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
	})
	if err != nil {
		return nil, fmt.Errorf("creating header style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, fmt.Errorf("naming summary sheet: %w", err)
	}
	if err := writeSummary(f, header, d); err != nil {
		return nil, err
	}

	purchases := make([][]any, 0, len(d.Recent.Purchases))
	for _, p := range d.Recent.Purchases {
		total := ""
		if p.TotalCost.Valid {
			total = p.TotalCost.Decimal.StringFixed(2)
		}
		purchases = append(purchases, []any{
			p.PurchaseDate.UTC().Format(time.DateOnly), p.AssetModel, p.EquipmentTypeName,
			p.BaseName, p.Quantity, total, p.SupplierInfo,
		})
	}
	if err := writeTable(f, header, SheetPurchases,
		[]string{"Date", "Asset", "Type", "Base", "Quantity", "Total Cost", "Supplier"}, purchases); err != nil {
		return nil, err
	}

	transfers := make([][]any, 0, len(d.Recent.Transfers))
	for _, t := range d.Recent.Transfers {
		transfers = append(transfers, []any{
			t.TransferDate.UTC().Format(time.DateOnly), t.AssetModel, t.SourceBaseName,
			t.DestinationBaseName, t.Quantity, string(t.Status),
		})
	}
	if err := writeTable(f, header, SheetTransfers,
		[]string{"Date", "Asset", "From", "To", "Quantity", "Status"}, transfers); err != nil {
		return nil, err
	}

	f.SetActiveSheet(0)
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	return buf, nil
}

func writeSummary(f *excelize.File, header int, d Dashboard) error {
	window := func(t time.Time) string {
		if t.IsZero() {
			return "open"
		}
		return t.UTC().Format(time.DateOnly)
	}
	orAll := func(s string) string {
		if s == "" {
			return "all"
		}
		return s
	}

	rows := [][]any{
		{"Generated", d.GeneratedAt.UTC().Format(time.RFC3339)},
		{"Base", orAll(d.Filter.BaseID)},
		{"Equipment type", orAll(d.Filter.EquipmentTypeID)},
		{"From", window(d.Filter.Start)},
		{"To", window(d.Filter.End)},
		{},
		{"Opening balance", d.Metrics.OpeningBalance},
		{"Purchases", d.Metrics.Breakdown.Purchases},
		{"Transfers in", d.Metrics.Breakdown.TransfersIn},
		{"Transfers out", d.Metrics.Breakdown.TransfersOut},
		{"Net movement", d.Metrics.NetMovement},
		{"Expended", d.Metrics.ExpendedAssets},
		{"Closing balance", d.Metrics.ClosingBalance},
		{"Assigned", d.Metrics.AssignedAssets},
	}
	return writeTable(f, header, SheetSummary, []string{"Metric", "Value"}, rows)
}

func writeTable(f *excelize.File, header int, sheet string, headers []string, rows [][]any) error {
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("creating sheet %q: %w", sheet, err)
		}
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheet, "A1", last, header); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	for r, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", r+2, err)
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	if err := f.SetColWidth(sheet, "A", lastCol, 18); err != nil {
		return fmt.Errorf("sizing columns: %w", err)
	}
	return f.SetPanes(sheet, &excelize.Panes{Freeze: true, Split: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}
