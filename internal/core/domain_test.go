package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestTimestampSelectsFieldByKind(t *testing.T) {
	income := Transaction{Kind: KindIngreso, CreatedAt: "2024-03-05T14:22:00Z"}
	ts, ok := income.Timestamp()
	if !ok {
		t.Fatal("expected timestamp for income record")
	}
	if ts.Year() != 2024 || int(ts.Month()) != 3 || ts.Day() != 5 {
		t.Fatalf("unexpected timestamp %v", ts)
	}

	expense := Transaction{Kind: KindEgreso, Fecha: "2024-03-20"}
	ts, ok = expense.Timestamp()
	if !ok {
		t.Fatal("expected timestamp for expense record")
	}
	if ts.Day() != 20 {
		t.Fatalf("unexpected day %d", ts.Day())
	}
}

func TestTimestampFallsBackToPopulatedField(t *testing.T) {
	// Expense created through an older client that only set created_at.
	tx := Transaction{Kind: KindEgreso, CreatedAt: "2024-01-02"}
	if _, ok := tx.Timestamp(); !ok {
		t.Fatal("expected fallback to created_at")
	}
}

func TestTimestampUnparsable(t *testing.T) {
	cases := []Transaction{
		{Kind: KindIngreso},
		{Kind: KindIngreso, CreatedAt: "not a date"},
		{Kind: KindEgreso, Fecha: "20/03/2024"},
	}
	for i, tx := range cases {
		if _, ok := tx.Timestamp(); ok {
			t.Fatalf("case %d: expected no timestamp", i)
		}
	}
}

func TestHasCustomer(t *testing.T) {
	cases := []struct {
		tx   Transaction
		want bool
	}{
		{Transaction{FirstName: "Ana", LastName: "Gómez"}, true},
		{Transaction{FirstName: GenericCustomer}, false},
		{Transaction{FirstName: "cliente general"}, false},
		{Transaction{}, false},
	}
	for i, tc := range cases {
		if got := tc.tx.HasCustomer(); got != tc.want {
			t.Fatalf("case %d: expected %v, got %v", i, tc.want, got)
		}
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{Kind: KindIngreso, Account: AccountNequi, Amount: decimal.NewFromInt(100)}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{Kind: "venta", Account: AccountNequi},
		{Kind: KindIngreso, Account: "Paypal"},
		{Kind: KindEgreso, Account: AccountEfectivo, Amount: decimal.NewFromInt(-1)},
	}
	for i, tx := range bads {
		if err := tx.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}
