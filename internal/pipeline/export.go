package pipeline

import (
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"recyvoice/internal"
	"recyvoice/internal/util"
)

// ExportRows flattens verification output into report rows. The storage
// layer produces the same shape when exporting a persisted run.
func ExportRows(verified []internal.VerifiedMaterial) []internal.VerifiedExportRow {
	rows := make([]internal.VerifiedExportRow, 0, len(verified))
	for i, v := range verified {
		row := internal.VerifiedExportRow{
			Position:    i + 1,
			Material:    v.Material,
			Quantity:    v.Quantity,
			Unit:        string(v.Unit),
			Available:   v.Available,
			Similarity:  v.MatchSimilarity,
			UnitMatched: v.UnitMatched,
		}
		if v.MatchedItem != nil {
			row.ItemID = util.StringPtr(v.MatchedItem.ID)
			row.ItemName = util.StringPtr(v.MatchedItem.EnglishName())
			row.CategoryName = util.StringPtr(v.MatchedItem.CategoryName)
			row.Points = util.FloatPtr(v.MatchedItem.Points)
			row.Price = util.FloatPtr(v.MatchedItem.Price)
		}
		rows = append(rows, row)
	}
	return rows
}

func ExportRowsToXLSX(rows []internal.VerifiedExportRow, outputPath string) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	headers := []string{
		"position", "material", "quantity", "unit",
		"available", "similarity", "unit_matched",
		"item_id", "item_name", "category", "points", "price",
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, row := range rows {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		set(1, row.Position)
		set(2, row.Material)
		set(3, row.Quantity)
		set(4, row.Unit)
		set(5, row.Available)
		set(6, row.Similarity)
		set(7, row.UnitMatched)
		set(8, derefString(row.ItemID))
		set(9, derefString(row.ItemName))
		set(10, derefString(row.CategoryName))
		set(11, derefFloat(row.Points))
		set(12, derefFloat(row.Price))
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func derefFloat(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}
