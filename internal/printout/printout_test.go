package printout

import (
	"bytes"
	"image/png"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pedinu/api/internal/database"
	"github.com/pedinu/api/internal/kitchen"
)

func TestCatalogQR(t *testing.T) {
	data, err := CatalogQR("https://pedinu.app/pizzaria-bella", 0)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, DefaultQRSize, img.Bounds().Dx())
}

func TestCatalogPoster(t *testing.T) {
	data, err := CatalogPoster("Pizzaria Bella", "https://pedinu.app/pizzaria-bella")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestKitchenTicket(t *testing.T) {
	addr := "Rua das Flores, 10 - Centro"
	notes := "Sem cebola"
	o := kitchen.OrderView{
		ID:           uuid.New(),
		OrderNumber:  "a1b2",
		CustomerName: "João",
		Items: []kitchen.Item{
			{Name: "Pizza Margherita", Quantity: 2, Price: decimal.RequireFromString("35.00")},
			{Name: "Refrigerante", Quantity: 1, Price: decimal.RequireFromString("6.50")},
		},
		Total:           "81.50",
		Status:          database.KitchenOrderStatusReceived,
		OrderTime:       time.Date(2026, 3, 1, 19, 30, 0, 0, time.UTC),
		OrderType:       database.OrderTypeDelivery,
		PaymentLabel:    "Pix",
		DeliveryAddress: &addr,
		Notes:           &notes,
	}

	data, err := KitchenTicket("Pizzaria Bella", o)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}
