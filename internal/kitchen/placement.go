package kitchen

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pedinu/api/internal/database"
)

// Item is one line of a kitchen order as stored in its items JSON.
type Item struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// Placement is everything needed to put a new order on the board.
// CustomerPhone may be empty for orders that should not feed customer stats.
type Placement struct {
	BusinessID      uuid.UUID
	CustomerName    string
	CustomerPhone   string
	Neighborhood    string
	Address         string
	Items           []Item
	Subtotal        decimal.Decimal
	DeliveryFee     decimal.Decimal
	Total           decimal.Decimal
	OrderType       database.OrderType
	PaymentMethod   database.PaymentMethod
	DeliveryAddress string
	Notes           string
}

// Placer persists a new order. Satisfied by *service.OrderService.
type Placer interface {
	PlaceOrder(ctx context.Context, p Placement) (database.KitchenOrder, error)
}
