package filter

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"caja/internal/core"
)

func income(id, createdAt string, amount int64, account core.Account) core.Transaction {
	return core.Transaction{
		ID:        id,
		Kind:      core.KindIngreso,
		CreatedAt: createdAt,
		Amount:    decimal.NewFromInt(amount),
		Account:   account,
	}
}

func march2024() State {
	return Month(2024, time.March, "")
}

func TestApplyDateRangeInclusive(t *testing.T) {
	records := []core.Transaction{
		income("a", "2024-03-01", 100, core.AccountNequi),
		income("b", "2024-03-31T23:59:00Z", 200, core.AccountNequi),
		income("c", "2024-02-29", 300, core.AccountNequi),
		income("d", "2024-04-01", 400, core.AccountNequi),
	}
	got := Apply(records, march2024())
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	for _, tx := range got {
		if tx.ID != "a" && tx.ID != "b" {
			t.Fatalf("unexpected record %s", tx.ID)
		}
	}
}

func TestApplyExcludesUnparsableTimestamps(t *testing.T) {
	records := []core.Transaction{
		income("ok", "2024-03-05", 100, core.AccountNequi),
		income("blank", "", 100, core.AccountNequi),
		income("garbage", "05-03-2024", 100, core.AccountNequi),
	}
	got := Apply(records, march2024())
	if len(got) != 1 || got[0].ID != "ok" {
		t.Fatalf("expected only the parsable record, got %v", got)
	}
}

func TestApplyDatelessPassesWithoutDateFacets(t *testing.T) {
	records := []core.Transaction{income("x", "", 100, core.AccountNequi)}
	got := Apply(records, State{Account: core.AccountNequi})
	if len(got) != 1 {
		t.Fatalf("dateless record should pass non-date facets, got %d", len(got))
	}
}

func TestAccountFacet(t *testing.T) {
	// Scenario: two March records, one Nequi and one Efectivo.
	records := []core.Transaction{
		income("a", "2024-03-05", 50000, core.AccountNequi),
		income("b", "2024-03-20", 30000, core.AccountEfectivo),
	}

	all := Apply(records, march2024())
	if len(all) != 2 {
		t.Fatalf("expected both records without account facet, got %d", len(all))
	}

	s := march2024()
	s.Account = core.AccountNequi
	got := Apply(records, s)
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("expected only the Nequi record, got %v", got)
	}
}

func TestDayOfMonthFacet(t *testing.T) {
	records := []core.Transaction{
		income("jan5", "2024-01-05", 100, core.AccountNequi),
		income("mar5", "2024-03-05", 100, core.AccountNequi),
		income("mar6", "2024-03-06", 100, core.AccountNequi),
	}
	got := Apply(records, State{DayOfMonth: 5})
	if len(got) != 2 {
		t.Fatalf("day facet is month-independent, expected 2, got %d", len(got))
	}
}

func TestFreeTextFacet(t *testing.T) {
	records := []core.Transaction{
		{ID: "a", Kind: core.KindIngreso, CreatedAt: "2024-03-01", FirstName: "María", LastName: "Pérez", Account: core.AccountNequi},
		{ID: "b", Kind: core.KindIngreso, CreatedAt: "2024-03-02", Document: "1020304050", Account: core.AccountNequi},
		{ID: "c", Kind: core.KindIngreso, CreatedAt: "2024-03-03", Concept: "Mensualidad", Account: core.AccountNequi},
	}
	cases := []struct {
		needle string
		want   []string
	}{
		{"pérez", []string{"a"}},
		{"1020", []string{"b"}},
		{"mensualidad", []string{"c"}},
		{"nothing", nil},
	}
	for _, tc := range cases {
		got := Apply(records, State{FreeText: tc.needle})
		if len(got) != len(tc.want) {
			t.Fatalf("%q: expected %d records, got %d", tc.needle, len(tc.want), len(got))
		}
		for i, id := range tc.want {
			if got[i].ID != id {
				t.Fatalf("%q: expected %s at %d, got %s", tc.needle, id, i, got[i].ID)
			}
		}
	}
}

func TestFacetsAndCombined(t *testing.T) {
	records := []core.Transaction{
		{ID: "match", Kind: core.KindIngreso, CreatedAt: "2024-03-05", Account: core.AccountNequi, Concept: "Curso", FirstName: "Ana"},
		{ID: "wrongAccount", Kind: core.KindIngreso, CreatedAt: "2024-03-05", Account: core.AccountEfectivo, Concept: "Curso", FirstName: "Ana"},
		{ID: "wrongConcept", Kind: core.KindIngreso, CreatedAt: "2024-03-05", Account: core.AccountNequi, Concept: "Libro", FirstName: "Ana"},
	}
	s := march2024()
	s.Account = core.AccountNequi
	s.Concept = "Curso"
	s.FreeText = "ana"
	got := Apply(records, s)
	if len(got) != 1 || got[0].ID != "match" {
		t.Fatalf("expected only the fully matching record, got %v", got)
	}
}

func TestApplySortsNewestFirst(t *testing.T) {
	records := []core.Transaction{
		income("old", "2024-03-01", 100, core.AccountNequi),
		income("new", "2024-03-28", 100, core.AccountNequi),
		income("mid", "2024-03-15", 100, core.AccountNequi),
	}
	got := Apply(records, State{})
	want := []string{"new", "mid", "old"}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, got[i].ID)
		}
	}
}

func TestApplyIdempotent(t *testing.T) {
	records := []core.Transaction{
		income("a", "2024-03-05", 100, core.AccountNequi),
		income("b", "2024-03-20", 200, core.AccountEfectivo),
		income("c", "2024-03-20", 300, core.AccountNequi),
	}
	s := march2024()
	once := Apply(records, s)
	twice := Apply(once, s)
	if len(once) != len(twice) {
		t.Fatalf("idempotence broken: %d vs %d", len(once), len(twice))
	}
	for i := range once {
		if once[i].ID != twice[i].ID {
			t.Fatalf("order changed at %d: %s vs %s", i, once[i].ID, twice[i].ID)
		}
	}
}

func TestReset(t *testing.T) {
	s := march2024()
	s.FreeText = "x"
	s.DayOfMonth = 5
	s.Reset()
	if s.dateBounded() || s.Account != "" || s.Concept != "" || s.FreeText != "" {
		t.Fatalf("reset should clear every facet: %+v", s)
	}
}
