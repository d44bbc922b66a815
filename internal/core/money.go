// Package core holds the transaction domain types shared by every other
// package: records, accounts, amounts and their parsing/formatting rules.
package core

import (
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a user-entered amount string to a decimal.
//
// It accepts both dot (12500.50) and comma (12500,50) decimal separators
// and rejects negative values, signs and anything non-numeric. Amounts are
// Colombian pesos, so fractional digits are unusual but tolerated.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrEmptyAmount
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return decimal.Zero, ErrNegativeAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.Count(s, ".") > 1 {
		return decimal.Zero, ErrEmptyAmount
	}
	for _, r := range s {
		if !unicode.IsDigit(r) && r != '.' {
			return decimal.Zero, ErrEmptyAmount
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrEmptyAmount
	}
	if d.IsNegative() {
		return decimal.Zero, ErrNegativeAmount
	}
	return d, nil
}

// AmountOrZero parses a numeric string, yielding zero for anything that is
// not a valid number. Line-item quantities and unit prices use this so a
// malformed item never fails a whole report.
func AmountOrZero(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(strings.ReplaceAll(s, ",", ".")))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// FormatCOP renders an amount as Colombian pesos with dot thousand
// separators and no decimal places: 1234567 -> "$ 1.234.567".
func FormatCOP(d decimal.Decimal) string {
	neg := d.IsNegative()
	s := d.Abs().Round(0).String()

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString("$ ")
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FormatDate renders a timestamp the way the tables and reports show it.
func FormatDate(t time.Time) string {
	return t.Format("02/01/2006")
}
