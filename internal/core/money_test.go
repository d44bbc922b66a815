package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"50000", "50000", true},
		{"12500.50", "12500.5", true},
		{"12500,50", "12500.5", true},
		{" 30000 ", "30000", true},
		{"0", "0", true},
		{"-1", "", false},
		{"+1", "", false},
		{"1.2.3", "", false},
		{"abc", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got.String() != tc.out {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestAmountOrZero(t *testing.T) {
	if got := AmountOrZero("not a number"); !got.IsZero() {
		t.Fatalf("expected zero, got %s", got)
	}
	if got := AmountOrZero("2"); !got.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("expected 2, got %s", got)
	}
}

func TestFormatCOP(t *testing.T) {
	cases := []struct {
		in  int64
		out string
	}{
		{0, "$ 0"},
		{500, "$ 500"},
		{50000, "$ 50.000"},
		{1234567, "$ 1.234.567"},
		{-10000, "-$ 10.000"},
	}
	for _, tc := range cases {
		if got := FormatCOP(decimal.NewFromInt(tc.in)); got != tc.out {
			t.Fatalf("%d expected %q, got %q", tc.in, tc.out, got)
		}
	}
}

func TestFormatDate(t *testing.T) {
	ts := time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC)
	if got := FormatDate(ts); got != "05/03/2024" {
		t.Fatalf("expected 05/03/2024, got %q", got)
	}
}
