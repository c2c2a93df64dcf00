// Package outbox folds placed orders into customer records. Order placement
// writes an intent row in the same transaction as the kitchen order; the
// worker here consumes intents so customer bookkeeping never blocks an order.
package outbox

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pedinu/api/internal/database"
)

// Payload is the customer-side snapshot of an order stored on its intent.
type Payload struct {
	CustomerName  string                 `json:"customer_name"`
	CustomerPhone string                 `json:"customer_phone"`
	Neighborhood  string                 `json:"neighborhood"`
	Address       string                 `json:"address"`
	Items         json.RawMessage        `json:"items"`
	Subtotal      decimal.Decimal        `json:"subtotal"`
	DeliveryFee   decimal.Decimal        `json:"delivery_fee"`
	Total         decimal.Decimal        `json:"total"`
	PaymentMethod database.PaymentMethod `json:"payment_method"`
	Notes         string                 `json:"notes,omitempty"`
	OrderDate     time.Time              `json:"order_date"`
}

func (p Payload) Encode() ([]byte, error) {
	return json.Marshal(p)
}

func DecodePayload(raw []byte) (Payload, error) {
	var p Payload
	err := json.Unmarshal(raw, &p)
	return p, err
}
