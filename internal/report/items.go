package report

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"caja/internal/core"
)

// LineItem is one catalog row inside a sale's items_detalle blob.
// Quantities and prices travel as strings because the POS clients are not
// consistent about numeric types.
type LineItem struct {
	Product  string `json:"producto"`
	Quantity string `json:"cantidad"`
	Price    string `json:"precio"`
}

// Subtotal multiplies quantity by unit price, treating anything
// non-numeric as zero so a single malformed row never breaks an invoice.
func (li LineItem) Subtotal() decimal.Decimal {
	return core.AmountOrZero(li.Quantity).Mul(core.AmountOrZero(li.Price))
}

// ParseItems decodes a line-item blob. Malformed JSON degrades to an
// empty list: the invoice simply renders with no body rows.
func ParseItems(blob string) []LineItem {
	blob = strings.TrimSpace(blob)
	if blob == "" {
		return nil
	}
	var items []LineItem
	if err := json.Unmarshal([]byte(blob), &items); err != nil {
		return nil
	}
	return items
}

// ItemsTotal sums every line subtotal.
func ItemsTotal(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, li := range items {
		total = total.Add(li.Subtotal())
	}
	return total
}
