package amqp

import (
	"encoding/json"
	"time"
)

// ReceiptRequest asks the worker to render an invoice PDF for one sale.
// It carries only the transaction ID and tenant; the worker fetches the
// full record from the backend before rendering.
type ReceiptRequest struct {
	TransactionID string    `json:"transaction_id"`
	Tenant        string    `json:"tenant,omitempty"`
	RequestedAt   time.Time `json:"requested_at"`
}

// NewReceiptRequest creates a render request for the given sale
func NewReceiptRequest(transactionID, tenant string) *ReceiptRequest {
	return &ReceiptRequest{
		TransactionID: transactionID,
		Tenant:        tenant,
		RequestedAt:   time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ReceiptRequest) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReceiptRequestFromJSON creates a message from JSON bytes
func ReceiptRequestFromJSON(data []byte) (*ReceiptRequest, error) {
	var msg ReceiptRequest
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
