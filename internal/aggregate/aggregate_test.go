package aggregate

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"caja/internal/core"
	"caja/internal/filter"
)

func tx(kind core.Kind, date string, amount int64, account core.Account) core.Transaction {
	t := core.Transaction{Kind: kind, Amount: decimal.NewFromInt(amount), Account: account}
	if kind == core.KindEgreso {
		t.Fecha = date
	} else {
		t.CreatedAt = date
	}
	return t
}

func TestComputeMonthTotals(t *testing.T) {
	records := []core.Transaction{
		tx(core.KindIngreso, "2024-03-05", 50000, core.AccountNequi),
		tx(core.KindIngreso, "2024-03-20", 30000, core.AccountEfectivo),
	}
	res := Compute(records, Scope{State: filter.Month(2024, time.March, "")})

	if !res.TotalIncome.Equal(decimal.NewFromInt(80000)) {
		t.Fatalf("expected income 80000, got %s", res.TotalIncome)
	}
	if res.TransactionCount != 2 {
		t.Fatalf("expected 2 transactions, got %d", res.TransactionCount)
	}
}

func TestComputeAccountScope(t *testing.T) {
	records := []core.Transaction{
		tx(core.KindIngreso, "2024-03-05", 50000, core.AccountNequi),
		tx(core.KindIngreso, "2024-03-20", 30000, core.AccountEfectivo),
	}
	res := Compute(records, Scope{State: filter.Month(2024, time.March, core.AccountNequi)})

	if !res.TotalIncome.Equal(decimal.NewFromInt(50000)) {
		t.Fatalf("expected income 50000, got %s", res.TotalIncome)
	}
	if res.TransactionCount != 1 {
		t.Fatalf("expected 1 transaction, got %d", res.TransactionCount)
	}
}

func TestBalanceIdentity(t *testing.T) {
	records := []core.Transaction{
		tx(core.KindIngreso, "2024-03-05", 120000, core.AccountNequi),
		tx(core.KindEgreso, "2024-03-10", 45000, core.AccountEfectivo),
		tx(core.KindEgreso, "2024-03-12", 5000, core.AccountNequi),
	}
	res := Compute(records, Scope{})

	if !res.Balance.Equal(res.TotalIncome.Sub(res.TotalExpense)) {
		t.Fatalf("balance %s != income %s - expense %s", res.Balance, res.TotalIncome, res.TotalExpense)
	}
	if !res.Balance.Equal(decimal.NewFromInt(70000)) {
		t.Fatalf("expected balance 70000, got %s", res.Balance)
	}
}

func TestMarginZeroWhenNoIncome(t *testing.T) {
	records := []core.Transaction{
		tx(core.KindEgreso, "2024-03-10", 10000, core.AccountEfectivo),
	}
	res := Compute(records, Scope{})

	if !res.Balance.Equal(decimal.NewFromInt(-10000)) {
		t.Fatalf("expected balance -10000, got %s", res.Balance)
	}
	if !res.MarginPercent.IsZero() {
		t.Fatalf("margin must be 0 without income, got %s", res.MarginPercent)
	}
}

func TestMarginPercent(t *testing.T) {
	records := []core.Transaction{
		tx(core.KindIngreso, "2024-03-05", 100000, core.AccountNequi),
		tx(core.KindEgreso, "2024-03-10", 25000, core.AccountEfectivo),
	}
	res := Compute(records, Scope{})
	if !res.MarginPercent.Equal(decimal.NewFromInt(75)) {
		t.Fatalf("expected margin 75, got %s", res.MarginPercent)
	}
}

func TestMonthOnlyScopeIgnoresTextFacets(t *testing.T) {
	records := []core.Transaction{
		tx(core.KindIngreso, "2024-03-05", 50000, core.AccountNequi),
		tx(core.KindIngreso, "2024-03-20", 30000, core.AccountNequi),
	}
	state := filter.Month(2024, time.March, core.AccountNequi)
	state.FreeText = "no match at all"

	full := Compute(records, Scope{State: state})
	if !full.TotalIncome.IsZero() {
		t.Fatalf("full scope should honor free text, got %s", full.TotalIncome)
	}

	monthly := Compute(records, Scope{State: state, MonthOnly: true})
	if !monthly.TotalIncome.Equal(decimal.NewFromInt(80000)) {
		t.Fatalf("month scope should ignore free text, got %s", monthly.TotalIncome)
	}
}

func TestMissingAmountCountsAsZero(t *testing.T) {
	records := []core.Transaction{
		{Kind: core.KindIngreso, CreatedAt: "2024-03-05", Account: core.AccountNequi}, // zero-value amount
		tx(core.KindIngreso, "2024-03-06", 1000, core.AccountNequi),
	}
	res := Compute(records, Scope{})
	if !res.TotalIncome.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("expected 1000, got %s", res.TotalIncome)
	}
	if res.TransactionCount != 2 {
		t.Fatalf("expected both records counted, got %d", res.TransactionCount)
	}
}
