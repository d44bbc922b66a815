// Package report renders the downloadable documents: the monthly sales
// and expense reports and the per-sale invoice, as PDF with an XLSX
// variant of the tabular reports.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"caja/internal/core"
	"caja/internal/log"
)

const (
	KindVentas  Kind = "ventas"
	KindGastos  Kind = "gastos"
	KindFactura Kind = "factura"
)

type (
	Kind string

	// Period is the calendar month a report covers.
	Period struct {
		Year  int
		Month time.Month
	}

	// Generated describes a rendered document, as recorded in the
	// report registry.
	Generated struct {
		ID        string
		Kind      Kind
		Filename  string
		Path      string
		Rows      int
		Total     decimal.Decimal
		CreatedAt time.Time
	}

	Renderer struct {
		outDir  string
		ivaRate decimal.Decimal
		log     *log.Logger
	}
)

var spanishMonths = [...]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

func (k Kind) Valid() bool {
	return k == KindVentas || k == KindGastos || k == KindFactura
}

// Title returns the document header for the kind.
func (k Kind) Title() string {
	switch k {
	case KindGastos:
		return "Reporte de Gastos"
	case KindFactura:
		return "Factura de Venta"
	default:
		return "Reporte de Ventas"
	}
}

// Label renders the period the way the report header shows it.
func (p Period) Label() string {
	return fmt.Sprintf("%s %d", spanishMonths[p.Month-1], p.Year)
}

// Filename follows the "<Title>_<MM>_<YYYY>" download pattern.
func (p Period) Filename(k Kind, ext string) string {
	title := "Reporte_de_Ventas"
	if k == KindGastos {
		title = "Reporte_de_Gastos"
	}
	return fmt.Sprintf("%s_%02d_%d.%s", title, int(p.Month), p.Year, ext)
}

func NewRenderer(outDir string, ivaRate decimal.Decimal, logger *log.Logger) *Renderer {
	return &Renderer{
		outDir:  outDir,
		ivaRate: ivaRate,
		log:     logger.WithComponent(log.ComponentReport),
	}
}

// Render writes the tabular PDF report for a filtered, newest-first record
// set and returns its registry entry.
func (r *Renderer) Render(records []core.Transaction, kind Kind, period Period) (Generated, error) {
	if kind == KindFactura {
		return Generated{}, fmt.Errorf("invoice rendering needs a single sale, use RenderInvoice")
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	// Header
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(kind.Title()), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, tr(period.Label()), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// Column header
	cols, widths := columnsFor(kind)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, col := range cols {
		pdf.CellFormat(widths[i], 8, tr(col), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	// Body rows, one per record, preserving the incoming order.
	pdf.SetFont("Helvetica", "", 9)
	total := decimal.Zero
	for _, t := range records {
		total = total.Add(t.Amount)
		for i, cell := range rowFor(kind, t) {
			align := "L"
			if i == len(cols)-1 {
				align = "R"
			}
			pdf.CellFormat(widths[i], 7, tr(cell), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	// Totals row
	pdf.SetFont("Helvetica", "B", 10)
	labelWidth := float64(0)
	for _, w := range widths[:len(widths)-1] {
		labelWidth += w
	}
	pdf.CellFormat(labelWidth, 8, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(widths[len(widths)-1], 8, tr(core.FormatCOP(total)), "1", 1, "R", false, 0, "")

	gen := Generated{
		ID:        uuid.NewString(),
		Kind:      kind,
		Filename:  period.Filename(kind, "pdf"),
		Rows:      len(records),
		Total:     total,
		CreatedAt: time.Now(),
	}
	gen.Path = filepath.Join(r.outDir, gen.Filename)

	if err := r.save(pdf, gen.Path); err != nil {
		return Generated{}, err
	}
	r.log.Info("Report rendered",
		log.FieldReportKind, string(kind),
		log.FieldFilename, gen.Filename,
		log.FieldRowCount, gen.Rows)
	return gen, nil
}

// RenderInvoice writes the receipt for a single sale. Line items come
// from the record's items_detalle blob; when that blob is malformed the
// invoice renders with an empty item table rather than failing.
func (r *Renderer) RenderInvoice(t core.Transaction) (Generated, error) {
	items := ParseItems(t.ItemsJSON)

	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(KindFactura.Title()), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	if ts, ok := t.Timestamp(); ok {
		pdf.CellFormat(0, 6, tr("Fecha: "+core.FormatDate(ts)), "", 1, "C", false, 0, "")
	}
	name := t.FullName()
	if name == "" {
		name = core.GenericCustomer
	}
	pdf.CellFormat(0, 6, tr("Cliente: "+name), "", 1, "C", false, 0, "")
	if t.Seller != "" {
		pdf.CellFormat(0, 6, tr("Vendedor: "+t.Seller), "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	cols := []string{"Producto", "Cantidad", "Precio Unitario", "Subtotal"}
	widths := []float64{80, 25, 40, 45}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, col := range cols {
		pdf.CellFormat(widths[i], 8, tr(col), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	subtotal := decimal.Zero
	for _, li := range items {
		sub := li.Subtotal()
		subtotal = subtotal.Add(sub)
		pdf.CellFormat(widths[0], 7, tr(li.Product), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, tr(li.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[2], 7, tr(core.FormatCOP(core.AmountOrZero(li.Price))), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 7, tr(core.FormatCOP(sub)), "1", 1, "R", false, 0, "")
	}

	iva := subtotal.Mul(r.ivaRate).Div(decimal.NewFromInt(100)).Round(0)
	totalRow := func(label string, amount decimal.Decimal, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 10)
		pdf.CellFormat(widths[0]+widths[1], 7, "", "", 0, "", false, 0, "")
		pdf.CellFormat(widths[2], 7, tr(label), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 7, tr(core.FormatCOP(amount)), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(2)
	totalRow("Subtotal", subtotal, false)
	totalRow("IVA", iva, false)
	totalRow("Total", subtotal.Add(iva), true)

	gen := Generated{
		ID:        uuid.NewString(),
		Kind:      KindFactura,
		Filename:  fmt.Sprintf("Factura_%s.pdf", t.ID),
		Rows:      len(items),
		Total:     subtotal.Add(iva),
		CreatedAt: time.Now(),
	}
	gen.Path = filepath.Join(r.outDir, gen.Filename)

	if err := r.save(pdf, gen.Path); err != nil {
		return Generated{}, err
	}
	r.log.Info("Invoice rendered",
		log.FieldTransactionID, t.ID,
		log.FieldFilename, gen.Filename,
		log.FieldRowCount, gen.Rows)
	return gen, nil
}

func (r *Renderer) save(pdf *fpdf.Fpdf, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create reports directory: %w", err)
	}
	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// columnsFor selects the column set per report kind. Sales rows show the
// buyer, expense rows the description.
func columnsFor(kind Kind) ([]string, []float64) {
	if kind == KindGastos {
		return []string{"Fecha", "Descripción", "Cuenta", "Valor"},
			[]float64{30, 85, 35, 40}
	}
	return []string{"Fecha", "Cliente", "Concepto", "Cuenta", "Valor"},
		[]float64{28, 52, 45, 30, 35}
}

func rowFor(kind Kind, t core.Transaction) []string {
	date := ""
	if ts, ok := t.Timestamp(); ok {
		date = core.FormatDate(ts)
	}
	if kind == KindGastos {
		return []string{date, t.Concept, string(t.Account), core.FormatCOP(t.Amount)}
	}
	name := t.FullName()
	if name == "" {
		name = core.GenericCustomer
	}
	return []string{date, name, t.Concept, string(t.Account), core.FormatCOP(t.Amount)}
}
