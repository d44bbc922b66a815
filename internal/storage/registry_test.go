package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"caja/internal/report"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := NewRegistry(filepath.Join(t.TempDir(), "caja.db"))
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	t.Cleanup(func() { reg.Close() })
	return reg
}

func testReport(kind report.Kind, filename string, total int64, createdAt time.Time) report.Generated {
	return report.Generated{
		ID:        uuid.NewString(),
		Kind:      kind,
		Filename:  filename,
		Path:      "/tmp/" + filename,
		Rows:      3,
		Total:     decimal.NewFromInt(total),
		CreatedAt: createdAt,
	}
}

func TestRegistry_RecordAndList(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	older := testReport(report.KindVentas, "Reporte_de_Ventas_01_2026.pdf", 150000, time.Date(2026, 1, 31, 12, 0, 0, 0, time.UTC))
	newer := testReport(report.KindGastos, "Reporte_de_Gastos_02_2026.pdf", 40000, time.Date(2026, 2, 28, 12, 0, 0, 0, time.UTC))

	if err := reg.Record(ctx, "tienda-1", older); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := reg.Record(ctx, "tienda-1", newer); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := reg.Record(ctx, "tienda-2", testReport(report.KindVentas, "Reporte_de_Ventas_02_2026.pdf", 9000, time.Now())); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	entries, err := reg.List(ctx, "tienda-1", 10)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("List() returned %d entries, want 2", len(entries))
	}
	if entries[0].ID != newer.ID {
		t.Errorf("List() first entry = %s, want newest %s", entries[0].ID, newer.ID)
	}
	if entries[0].Kind != report.KindGastos {
		t.Errorf("List() first entry kind = %v, want %v", entries[0].Kind, report.KindGastos)
	}
	if !entries[0].Total.Equal(decimal.NewFromInt(40000)) {
		t.Errorf("List() first entry total = %v, want 40000", entries[0].Total)
	}
	if entries[0].Tenant != "tienda-1" {
		t.Errorf("List() first entry tenant = %v, want tienda-1", entries[0].Tenant)
	}
}

func TestRegistry_Get(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	g := testReport(report.KindFactura, "Factura_abc123.pdf", 14280, time.Now().UTC().Truncate(time.Second))
	if err := reg.Record(ctx, "tienda-1", g); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	got, err := reg.Get(ctx, g.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Filename != g.Filename {
		t.Errorf("Get() filename = %v, want %v", got.Filename, g.Filename)
	}
	if !got.CreatedAt.Equal(g.CreatedAt) {
		t.Errorf("Get() createdAt = %v, want %v", got.CreatedAt, g.CreatedAt)
	}

	if _, err := reg.Get(ctx, "missing"); err == nil {
		t.Error("Get() with unknown id should fail")
	}
}
