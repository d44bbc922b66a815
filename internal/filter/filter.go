// Package filter narrows a fetched transaction list by the facets the
// admin tables expose: date range, account, concept, day of month and a
// free-text search. Facets are AND-combined; an unset facet always passes.
package filter

import (
	"sort"
	"strings"
	"time"

	"caja/internal/core"
)

// State is the transient filter selection held by a list view. The zero
// value matches everything.
type State struct {
	From       time.Time    // zero = unbounded
	To         time.Time    // zero = unbounded
	Account    core.Account // "" = facet off
	Concept    string       // "" = facet off
	FreeText   string       // "" = facet off
	DayOfMonth int          // 0 = facet off
}

// Reset clears every facet at once.
func (s *State) Reset() {
	*s = State{}
}

// Month returns a state bounded to a calendar month, optionally scoped to
// one account. The month-level summary tables filter with exactly this.
func Month(year int, month time.Month, account core.Account) State {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return State{
		From:    first,
		To:      first.AddDate(0, 1, -1),
		Account: account,
	}
}

// dateBounded reports whether any facet needs a parsable timestamp.
func (s State) dateBounded() bool {
	return !s.From.IsZero() || !s.To.IsZero() || s.DayOfMonth != 0
}

// Matches applies every active facet to a single record. Records whose
// timestamp field is absent or unparsable fail any date-bounded facet but
// are still eligible when only non-date facets are active.
func (s State) Matches(t core.Transaction) bool {
	ts, ok := t.Timestamp()
	if s.dateBounded() {
		if !ok {
			return false
		}
		if !s.From.IsZero() && dayOf(ts).Before(dayOf(s.From)) {
			return false
		}
		if !s.To.IsZero() && dayOf(ts).After(dayOf(s.To)) {
			return false
		}
		if s.DayOfMonth != 0 && ts.Day() != s.DayOfMonth {
			return false
		}
	}
	if s.Account != "" && t.Account != s.Account {
		return false
	}
	if s.Concept != "" && t.Concept != s.Concept {
		return false
	}
	if s.FreeText != "" && !matchesFreeText(t, s.FreeText) {
		return false
	}
	return true
}

// Apply filters records by the state and returns them newest first. The
// descending order is part of the contract: the tables and the report
// renderer both rely on it. The input slice is never mutated.
func Apply(records []core.Transaction, s State) []core.Transaction {
	out := make([]core.Transaction, 0, len(records))
	for _, t := range records {
		if s.Matches(t) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ti, iok := out[i].Timestamp()
		tj, jok := out[j].Timestamp()
		if iok != jok {
			return iok // dateless records sink to the end
		}
		return ti.After(tj)
	})
	return out
}

// matchesFreeText does a case-insensitive substring search over the
// fields the search box covers: name, surname, document, payment
// reference and concept.
func matchesFreeText(t core.Transaction, needle string) bool {
	needle = strings.ToLower(strings.TrimSpace(needle))
	if needle == "" {
		return true
	}
	for _, field := range []string{t.FirstName, t.LastName, t.Document, t.Reference, t.Concept} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// dayOf truncates a timestamp to day granularity for inclusive range
// comparison.
func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
