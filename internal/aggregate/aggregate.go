// Package aggregate reduces transaction sets to the totals shown on the
// summary cards and the month tables. There is a single parameterized
// aggregator; the two historical call sites (screen summary over the full
// filter, month table over year+month+account only) are expressed as
// scopes instead of duplicated code.
package aggregate

import (
	"github.com/shopspring/decimal"

	"caja/internal/core"
	"caja/internal/filter"
)

// Scope describes which records enter an aggregation. MonthOnly restricts
// the facets to the date bounds plus account, ignoring concept, free text
// and day of month; whether the month tables should see the text facets is
// an unresolved business question, so both behaviors stay selectable.
type Scope struct {
	State     filter.State
	MonthOnly bool
}

// Result is recomputed on every filter change and never cached beyond the
// current response.
type Result struct {
	TotalIncome      decimal.Decimal `json:"total_ingresos"`
	TotalExpense     decimal.Decimal `json:"total_egresos"`
	Balance          decimal.Decimal `json:"balance"`
	MarginPercent    decimal.Decimal `json:"margen_porcentaje"`
	TransactionCount int             `json:"numero_transacciones"`
}

var hundred = decimal.NewFromInt(100)

func (s Scope) effective() filter.State {
	if !s.MonthOnly {
		return s.State
	}
	return filter.State{
		From:    s.State.From,
		To:      s.State.To,
		Account: s.State.Account,
	}
}

// Compute sums the records passing the scope. Balance is exactly
// income - expense. Margin is balance/income as a percentage, defined as 0
// when there is no income so callers never see NaN or infinities. The
// count covers income records only, matching the "N transacciones" label.
func Compute(records []core.Transaction, scope Scope) Result {
	state := scope.effective()

	res := Result{
		TotalIncome:   decimal.Zero,
		TotalExpense:  decimal.Zero,
		Balance:       decimal.Zero,
		MarginPercent: decimal.Zero,
	}
	for _, t := range records {
		if !state.Matches(t) {
			continue
		}
		// The zero decimal stands in for missing amounts.
		switch t.Kind {
		case core.KindEgreso:
			res.TotalExpense = res.TotalExpense.Add(t.Amount)
		default:
			res.TotalIncome = res.TotalIncome.Add(t.Amount)
			res.TransactionCount++
		}
	}

	res.Balance = res.TotalIncome.Sub(res.TotalExpense)
	if res.TotalIncome.IsPositive() {
		res.MarginPercent = res.Balance.Div(res.TotalIncome).Mul(hundred).Round(2)
	}
	return res
}
