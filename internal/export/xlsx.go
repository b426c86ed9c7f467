package export

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"budgetboard/internal/view"
)

// SheetName is the worksheet holding the export.
const SheetName = "Expenses"

// ContentTypeXLSX is the media type of WriteXLSX output.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// XLSX writes a workbook to W.
type XLSX struct {
	W io.Writer
}

func (x XLSX) Export(_ context.Context, d view.Dashboard) error {
	return WriteXLSX(x.W, d)
}

// WriteXLSX renders d as a single-sheet workbook.
func WriteXLSX(w io.Writer, d view.Dashboard) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	for i, row := range Rows(d) {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	if err := f.SetRowStyle(SheetName, 1, 1, bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return fmt.Errorf("create amount style: %w", err)
	}
	if err := f.SetColStyle(SheetName, "D", money); err != nil {
		return fmt.Errorf("style amounts: %w", err)
	}

	f.SetColWidth(SheetName, "A", "A", 12)
	f.SetColWidth(SheetName, "B", "B", 30)
	f.SetColWidth(SheetName, "C", "C", 16)
	f.SetColWidth(SheetName, "D", "D", 12)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
