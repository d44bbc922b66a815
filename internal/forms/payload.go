package forms

import (
	"encoding/json"
	"strings"
	"time"

	"caja/internal/core"
	"caja/internal/report"
)

// BuildPayload merges the form values with the derived fields into the
// record the backend expects. When catalog line items are selected the
// total is computed from them, overriding the typed amount.
func BuildPayload(f Form) (core.Transaction, error) {
	amount, err := core.ParseAmount(f.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	if len(f.Items) > 0 {
		amount = report.ItemsTotal(f.Items)
	}

	t := core.Transaction{
		ID:        f.ID,
		Kind:      f.Kind,
		Amount:    amount,
		Account:   f.Account,
		Concept:   strings.TrimSpace(f.Concept),
		Document:  strings.TrimSpace(f.Document),
		Reference: strings.TrimSpace(f.Reference),
		Seller:    strings.TrimSpace(f.Seller),
	}

	if f.Kind == core.KindEgreso {
		t.Fecha = f.Date.Format("2006-01-02")
	} else if !f.Date.IsZero() {
		t.CreatedAt = f.Date.UTC().Format(time.RFC3339)
	}

	if f.Kind == core.KindIngreso {
		if f.HasCustomer {
			t.FirstName = strings.TrimSpace(f.FirstName)
			t.LastName = strings.TrimSpace(f.LastName)
		} else {
			t.FirstName = core.GenericCustomer
		}
	}

	if len(f.Items) > 0 {
		if encoded, err := json.Marshal(f.Items); err == nil {
			t.ItemsJSON = string(encoded)
		}
	}
	return t, nil
}

// SplitFullName breaks a legacy single-field name at its last whitespace
// token. The split is lossy for multi-word surnames, which is why the
// form captures first and last name separately; this only normalizes old
// records on the way in.
func SplitFullName(full string) (first, last string) {
	full = strings.TrimSpace(full)
	if full == "" {
		return "", ""
	}
	idx := strings.LastIndexFunc(full, func(r rune) bool { return r == ' ' || r == '\t' })
	if idx < 0 {
		return full, ""
	}
	return strings.TrimSpace(full[:idx]), strings.TrimSpace(full[idx+1:])
}
