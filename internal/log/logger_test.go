package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestComponentAttachedToRecords(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Component: ComponentBackend,
		Handler:   slog.NewTextHandler(&buf, nil),
	})

	logger.Info("listing transactions", FieldTenant, "acme")

	out := buf.String()
	if !strings.Contains(out, "component="+ComponentBackend) {
		t.Fatalf("missing component attribute: %s", out)
	}
	if !strings.Contains(out, "tenant=acme") {
		t.Fatalf("missing tenant attribute: %s", out)
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Component: ComponentApp, Handler: slog.NewTextHandler(&buf, nil)})

	child := logger.WithComponent(ComponentWorker)
	if child.Component() != ComponentWorker {
		t.Fatalf("expected %s, got %s", ComponentWorker, child.Component())
	}
	if logger.Component() != ComponentApp {
		t.Fatal("parent logger mutated")
	}
}
