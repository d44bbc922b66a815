package worker

import (
	"context"
	"fmt"
	"log/slog"

	"caja/internal/amqp"
	"caja/internal/backend"
	"caja/internal/core"
	"caja/internal/report"
)

// TransactionGetter fetches a single record from the POS backend
type TransactionGetter interface {
	Get(ctx context.Context, s backend.Session, id string) (core.Transaction, error)
}

// InvoiceRenderer writes the invoice PDF for one sale
type InvoiceRenderer interface {
	RenderInvoice(t core.Transaction) (report.Generated, error)
}

// ReportRecorder stores generated report metadata
type ReportRecorder interface {
	Record(ctx context.Context, tenant string, g report.Generated) error
}

// ReceiptWorker renders invoice PDFs for sales queued over AMQP.
// It fetches the full record from the backend using its own service
// credentials, renders the PDF and records the artifact in the registry.
type ReceiptWorker struct {
	source   TransactionGetter
	renderer InvoiceRenderer
	registry ReportRecorder
	token    string
	tenant   string
}

func NewReceiptWorker(source TransactionGetter, renderer InvoiceRenderer, registry ReportRecorder, token, tenant string) *ReceiptWorker {
	return &ReceiptWorker{
		source:   source,
		renderer: renderer,
		registry: registry,
		token:    token,
		tenant:   tenant,
	}
}

// HandleReceiptRequest processes a single receipt render request from AMQP
func (w *ReceiptWorker) HandleReceiptRequest(ctx context.Context, msg *amqp.ReceiptRequest) error {
	slog.InfoContext(ctx, "Processing receipt request",
		"transaction_id", msg.TransactionID,
		"tenant", msg.Tenant)

	tenant := msg.Tenant
	if tenant == "" {
		tenant = w.tenant
	}

	session := backend.Session{Token: w.token, Tenant: tenant}
	record, err := w.source.Get(ctx, session, msg.TransactionID)
	if err != nil {
		return fmt.Errorf("get transaction from backend: %w", err)
	}

	if record.Kind != core.KindIngreso {
		// Only sales get invoices. An expense ID here means a stale or
		// malformed message, so drop it instead of requeueing forever.
		slog.WarnContext(ctx, "Skipping receipt for non-sale record",
			"transaction_id", msg.TransactionID,
			"kind", record.Kind)
		return nil
	}

	generated, err := w.renderer.RenderInvoice(record)
	if err != nil {
		return fmt.Errorf("render invoice: %w", err)
	}

	if err := w.registry.Record(ctx, tenant, generated); err != nil {
		// The PDF exists on disk, only the registry entry failed.
		slog.ErrorContext(ctx, "Failed to record invoice in registry",
			"transaction_id", msg.TransactionID,
			"filename", generated.Filename,
			"error", err)
		return fmt.Errorf("record invoice: %w", err)
	}

	slog.InfoContext(ctx, "Invoice rendered",
		"transaction_id", msg.TransactionID,
		"filename", generated.Filename,
		"total", generated.Total)

	return nil
}
