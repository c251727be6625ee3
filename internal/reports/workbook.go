package reports

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

var header = []any{"Rank", "Classification ID", "Classification", "Equipment", "Stock quantity"}

// Meta labels a workbook.
type Meta struct {
	FacilityID  int64
	GeneratedBy string
	GeneratedAt string
}

// BuildWorkbook writes rows to a single sheet named sheet, below a header
// row. Meta is written to a second sheet named "About".
func BuildWorkbook(sheet string, meta Meta, rows []Row) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("name sheet: %w", err)
	}

	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		f.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		values := []any{r.Rank, r.ClassificationID, r.ClassificationName, r.EquipmentCount, r.StockQuantity}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			f.Close()
			return nil, fmt.Errorf("write row %d: %w", r.Rank, err)
		}
	}

	if _, err := f.NewSheet("About"); err != nil {
		f.Close()
		return nil, fmt.Errorf("create about sheet: %w", err)
	}
	about := [][]any{
		{"Facility", meta.FacilityID},
		{"Generated by", meta.GeneratedBy},
		{"Generated at", meta.GeneratedAt},
	}
	for i, values := range about {
		if err := f.SetSheetRow("About", fmt.Sprintf("A%d", i+1), &values); err != nil {
			f.Close()
			return nil, fmt.Errorf("write about sheet: %w", err)
		}
	}

	return f, nil
}
