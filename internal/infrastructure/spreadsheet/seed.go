package spreadsheet

import (
	"fmt"

	"github.com/PtahaWebDez/Flower-crm/internal/domain/catalog"
	"github.com/PtahaWebDez/Flower-crm/internal/domain/inventory"

	"github.com/xuri/excelize/v2"
)

// WriteWorkbook creates a workbook in the layout Load expects. Component
// columns follow the order of the sorted stock labels, then any label only
// used by recipes.
func WriteWorkbook(path, sheet, stockLabel string, recipes []catalog.Recipe, stock inventory.Stock) error {
	if sheet == "" {
		sheet = DefaultSheet
	}
	if stockLabel == "" {
		stockLabel = DefaultStockRow
	}

	labels := inventory.Composition(stock).Components()
	seen := make(map[string]bool, len(labels))
	for _, l := range labels {
		seen[l] = true
	}
	for _, r := range recipes {
		for _, l := range r.Components.Components() {
			if !seen[l] {
				seen[l] = true
				labels = append(labels, l)
			}
		}
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("spreadsheet: name sheet: %w", err)
	}

	header := append([]any{"Название"}, toAny(labels)...)
	if err := writeRow(f, sheet, 1, header); err != nil {
		return err
	}
	for i, r := range recipes {
		row := []any{r.Name}
		for _, l := range labels {
			if q := r.Components[l]; q > 0 {
				row = append(row, q)
			} else {
				row = append(row, nil)
			}
		}
		if err := writeRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	stockRow := []any{stockLabel}
	for _, l := range labels {
		if q, ok := stock[l]; ok {
			stockRow = append(stockRow, q)
		} else {
			stockRow = append(stockRow, nil)
		}
	}
	if err := writeRow(f, sheet, len(recipes)+2, stockRow); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("spreadsheet: save %s: %w", path, err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("spreadsheet: write row %d: %w", row, err)
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
