package kitchen

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/pedinu/api/internal/database"
	"github.com/pedinu/api/internal/enum"
)

// OrderView is the JSON shape of a kitchen order on the board, in API
// responses and in live events.
type OrderView struct {
	ID              uuid.UUID                   `json:"id"`
	OrderNumber     string                      `json:"order_number"`
	BusinessID      uuid.UUID                   `json:"business_id"`
	CustomerName    string                      `json:"customer_name"`
	Items           []Item                      `json:"items"`
	Total           string                      `json:"total"`
	Status          database.KitchenOrderStatus `json:"status"`
	OrderTime       time.Time                   `json:"order_time"`
	OrderType       database.OrderType          `json:"order_type"`
	PaymentMethod   database.PaymentMethod      `json:"payment_method"`
	PaymentLabel    string                      `json:"payment_label"`
	DeliveryAddress *string                     `json:"delivery_address"`
	Notes           *string                     `json:"notes"`
	UpdatedAt       time.Time                   `json:"updated_at"`
}

// NewView decodes the stored items; malformed items JSON yields an empty
// list rather than failing the whole board.
func NewView(o database.KitchenOrder) OrderView {
	items := []Item{}
	if len(o.Items) > 0 {
		_ = json.Unmarshal(o.Items, &items)
	}

	v := OrderView{
		ID:            o.ID,
		OrderNumber:   OrderNumber(o.ID),
		BusinessID:    o.BusinessID,
		CustomerName:  o.CustomerName,
		Items:         items,
		Total:         database.FromNumeric(o.Total).StringFixed(2),
		Status:        o.Status,
		OrderTime:     o.OrderTime,
		OrderType:     o.OrderType,
		PaymentMethod: o.PaymentMethod,
		PaymentLabel:  enum.PaymentMethodLabel(string(o.PaymentMethod)),
		UpdatedAt:     o.UpdatedAt,
	}
	if o.DeliveryAddress.Valid {
		v.DeliveryAddress = &o.DeliveryAddress.String
	}
	if o.Notes.Valid {
		v.Notes = &o.Notes.String
	}
	return v
}
