package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	KindIngreso Kind = "ingreso"
	KindEgreso  Kind = "egreso"
)

const (
	AccountNequi       Account = "Nequi"
	AccountDaviplata   Account = "Daviplata"
	AccountBancolombia Account = "Bancolombia"
	AccountEfectivo    Account = "Efectivo"
	AccountOtra        Account = "Otra"
)

// GenericCustomer is the placeholder buyer name used for walk-in sales
// that have no associated customer.
const GenericCustomer = "Cliente General"

type (
	Kind    string
	Account string

	// Transaction is a single income or expense record as the backend
	// returns it. Income records carry their date in CreatedAt, expense
	// records in Fecha; exactly one of the two is populated per record.
	Transaction struct {
		ID        string          `json:"id,omitempty"`
		Kind      Kind            `json:"tipo"`
		CreatedAt string          `json:"created_at,omitempty"`
		Fecha     string          `json:"fecha,omitempty"`
		Amount    decimal.Decimal `json:"valor"`
		Account   Account         `json:"cuenta"`
		Concept   string          `json:"concepto,omitempty"`
		FirstName string          `json:"nombre,omitempty"`
		LastName  string          `json:"apellido,omitempty"`
		Document  string          `json:"documento,omitempty"`
		Reference string          `json:"referencia,omitempty"`
		Seller    string          `json:"vendedor,omitempty"`
		ItemsJSON string          `json:"items_detalle,omitempty"`
	}
)

var (
	ErrInvalidKind    = errors.New("invalid transaction kind")
	ErrInvalidAccount = errors.New("invalid account")
	ErrNegativeAmount = errors.New("amount cannot be negative")
	ErrEmptyName      = errors.New("empty name")
	ErrEmptyAmount    = errors.New("empty amount")
)

// Accounts lists every account the system knows about, in display order.
var Accounts = []Account{
	AccountNequi,
	AccountDaviplata,
	AccountBancolombia,
	AccountEfectivo,
	AccountOtra,
}

func (k Kind) Valid() bool {
	return k == KindIngreso || k == KindEgreso
}

func (a Account) Valid() bool {
	for _, known := range Accounts {
		if a == known {
			return true
		}
	}
	return false
}

// timestampLayouts are the wire formats the backends emit. RFC3339 for
// server-assigned creation times, plain dates for user-entered ones.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Timestamp returns the record's effective date: CreatedAt for income,
// Fecha for expenses, falling back to whichever field is populated. The
// second return is false when the field is absent or unparsable; such
// records must be skipped by date-bounded consumers, never treated as an
// error.
func (t Transaction) Timestamp() (time.Time, bool) {
	raw := t.CreatedAt
	if t.Kind == KindEgreso {
		raw = t.Fecha
	}
	if raw == "" {
		if t.Kind == KindEgreso {
			raw = t.CreatedAt
		} else {
			raw = t.Fecha
		}
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// FullName joins the customer name parts for display and matching.
func (t Transaction) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(t.FirstName) + " " + strings.TrimSpace(t.LastName))
}

// HasCustomer reports whether the record is tied to a real customer
// rather than the generic walk-in placeholder.
func (t Transaction) HasCustomer() bool {
	name := t.FullName()
	return name != "" && !strings.EqualFold(t.FirstName, GenericCustomer)
}

func (t Transaction) Validate() error {
	if !t.Kind.Valid() {
		return ErrInvalidKind
	}
	if !t.Account.Valid() {
		return ErrInvalidAccount
	}
	if t.Amount.IsNegative() {
		return ErrNegativeAmount
	}
	return nil
}
