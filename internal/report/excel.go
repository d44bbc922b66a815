package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"caja/internal/core"
	"caja/internal/log"
)

// ExportXLSX writes the same tabular report as Render in spreadsheet
// form, for admins who post-process the numbers instead of printing them.
func (r *Renderer) ExportXLSX(records []core.Transaction, kind Kind, period Period) (Generated, error) {
	if kind == KindFactura {
		return Generated{}, fmt.Errorf("invoices have no spreadsheet variant")
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	if err := f.SetCellValue(sheet, "A1", kind.Title()); err != nil {
		return Generated{}, fmt.Errorf("write title: %w", err)
	}
	_ = f.SetCellValue(sheet, "A2", period.Label())

	cols, _ := columnsFor(kind)
	headerRow := 4
	for i, col := range cols {
		cell, _ := excelize.CoordinatesToCellName(i+1, headerRow)
		_ = f.SetCellValue(sheet, cell, col)
	}

	total := decimal.Zero
	for rowIdx, t := range records {
		total = total.Add(t.Amount)
		for colIdx, value := range rowFor(kind, t) {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, headerRow+1+rowIdx)
			_ = f.SetCellValue(sheet, cell, value)
		}
	}

	totalsRow := headerRow + 1 + len(records)
	labelCell, _ := excelize.CoordinatesToCellName(len(cols)-1, totalsRow)
	valueCell, _ := excelize.CoordinatesToCellName(len(cols), totalsRow)
	_ = f.SetCellValue(sheet, labelCell, "Total")
	_ = f.SetCellValue(sheet, valueCell, core.FormatCOP(total))

	gen := Generated{
		ID:        uuid.NewString(),
		Kind:      kind,
		Filename:  period.Filename(kind, "xlsx"),
		Rows:      len(records),
		Total:     total,
		CreatedAt: time.Now(),
	}
	gen.Path = filepath.Join(r.outDir, gen.Filename)

	if err := os.MkdirAll(r.outDir, 0755); err != nil {
		return Generated{}, fmt.Errorf("create reports directory: %w", err)
	}
	if err := f.SaveAs(gen.Path); err != nil {
		return Generated{}, fmt.Errorf("write xlsx: %w", err)
	}
	r.log.Info("Spreadsheet exported",
		log.FieldReportKind, string(kind),
		log.FieldFilename, gen.Filename,
		log.FieldRowCount, gen.Rows)
	return gen, nil
}
