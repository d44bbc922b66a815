package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"caja/internal/amqp"
	"caja/internal/backend"
	"caja/internal/core"
	"caja/internal/report"
)

type fakeSource struct {
	record     core.Transaction
	err        error
	gotSession backend.Session
	gotID      string
	callCount  int
}

func (f *fakeSource) Get(ctx context.Context, s backend.Session, id string) (core.Transaction, error) {
	f.callCount++
	f.gotSession = s
	f.gotID = id
	return f.record, f.err
}

type fakeRenderer struct {
	generated report.Generated
	err       error
	rendered  int
}

func (f *fakeRenderer) RenderInvoice(t core.Transaction) (report.Generated, error) {
	f.rendered++
	return f.generated, f.err
}

type fakeRecorder struct {
	err       error
	gotTenant string
	recorded  int
}

func (f *fakeRecorder) Record(ctx context.Context, tenant string, g report.Generated) error {
	f.recorded++
	f.gotTenant = tenant
	return f.err
}

func sale(id string) core.Transaction {
	return core.Transaction{
		ID:        id,
		Kind:      core.KindIngreso,
		CreatedAt: "2026-03-14T10:30:00Z",
		Amount:    decimal.NewFromInt(12000),
		Account:   core.AccountNequi,
		FirstName: "Ana",
		LastName:  "Gómez",
	}
}

func TestReceiptWorker_HandleReceiptRequest(t *testing.T) {
	source := &fakeSource{record: sale("tx-1")}
	renderer := &fakeRenderer{generated: report.Generated{
		ID:       "rep-1",
		Kind:     report.KindFactura,
		Filename: "Factura_tx-1.pdf",
		Total:    decimal.NewFromInt(12000),
	}}
	recorder := &fakeRecorder{}

	w := NewReceiptWorker(source, renderer, recorder, "svc-token", "tienda-1")

	msg := &amqp.ReceiptRequest{TransactionID: "tx-1", Tenant: "tienda-2", RequestedAt: time.Now()}
	if err := w.HandleReceiptRequest(context.Background(), msg); err != nil {
		t.Fatalf("HandleReceiptRequest() error = %v", err)
	}

	if source.gotID != "tx-1" {
		t.Errorf("backend queried with id %q, want tx-1", source.gotID)
	}
	if source.gotSession.Token != "svc-token" {
		t.Errorf("backend session token = %q, want svc-token", source.gotSession.Token)
	}
	// Message tenant wins over the worker's configured tenant
	if source.gotSession.Tenant != "tienda-2" {
		t.Errorf("backend session tenant = %q, want tienda-2", source.gotSession.Tenant)
	}
	if renderer.rendered != 1 {
		t.Errorf("rendered %d invoices, want 1", renderer.rendered)
	}
	if recorder.recorded != 1 || recorder.gotTenant != "tienda-2" {
		t.Errorf("recorded %d entries for tenant %q, want 1 for tienda-2", recorder.recorded, recorder.gotTenant)
	}
}

func TestReceiptWorker_FallsBackToConfiguredTenant(t *testing.T) {
	source := &fakeSource{record: sale("tx-2")}
	renderer := &fakeRenderer{generated: report.Generated{ID: "rep-2"}}
	recorder := &fakeRecorder{}

	w := NewReceiptWorker(source, renderer, recorder, "svc-token", "tienda-1")

	msg := &amqp.ReceiptRequest{TransactionID: "tx-2"}
	if err := w.HandleReceiptRequest(context.Background(), msg); err != nil {
		t.Fatalf("HandleReceiptRequest() error = %v", err)
	}
	if source.gotSession.Tenant != "tienda-1" {
		t.Errorf("backend session tenant = %q, want tienda-1", source.gotSession.Tenant)
	}
}

func TestReceiptWorker_SkipsExpenses(t *testing.T) {
	expense := core.Transaction{
		ID:      "tx-3",
		Kind:    core.KindEgreso,
		Fecha:   "2026-03-14",
		Amount:  decimal.NewFromInt(5000),
		Account: core.AccountEfectivo,
		Concept: "Arriendo",
	}
	source := &fakeSource{record: expense}
	renderer := &fakeRenderer{}
	recorder := &fakeRecorder{}

	w := NewReceiptWorker(source, renderer, recorder, "svc-token", "tienda-1")

	msg := &amqp.ReceiptRequest{TransactionID: "tx-3"}
	if err := w.HandleReceiptRequest(context.Background(), msg); err != nil {
		t.Fatalf("HandleReceiptRequest() error = %v, want nil for non-sale", err)
	}
	if renderer.rendered != 0 {
		t.Errorf("rendered %d invoices for an expense, want 0", renderer.rendered)
	}
	if recorder.recorded != 0 {
		t.Errorf("recorded %d entries for an expense, want 0", recorder.recorded)
	}
}

func TestReceiptWorker_PropagatesErrors(t *testing.T) {
	t.Run("backend error", func(t *testing.T) {
		source := &fakeSource{err: errors.New("backend down")}
		w := NewReceiptWorker(source, &fakeRenderer{}, &fakeRecorder{}, "tok", "tienda-1")

		err := w.HandleReceiptRequest(context.Background(), &amqp.ReceiptRequest{TransactionID: "tx-4"})
		if err == nil {
			t.Error("HandleReceiptRequest() error = nil, want backend error")
		}
	})

	t.Run("render error", func(t *testing.T) {
		source := &fakeSource{record: sale("tx-5")}
		renderer := &fakeRenderer{err: errors.New("disk full")}
		w := NewReceiptWorker(source, renderer, &fakeRecorder{}, "tok", "tienda-1")

		err := w.HandleReceiptRequest(context.Background(), &amqp.ReceiptRequest{TransactionID: "tx-5"})
		if err == nil {
			t.Error("HandleReceiptRequest() error = nil, want render error")
		}
	})

	t.Run("registry error", func(t *testing.T) {
		source := &fakeSource{record: sale("tx-6")}
		recorder := &fakeRecorder{err: errors.New("db locked")}
		w := NewReceiptWorker(source, &fakeRenderer{}, recorder, "tok", "tienda-1")

		err := w.HandleReceiptRequest(context.Background(), &amqp.ReceiptRequest{TransactionID: "tx-6"})
		if err == nil {
			t.Error("HandleReceiptRequest() error = nil, want registry error")
		}
	})
}
