package kitchen

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pedinu/api/internal/database"
)

const (
	DefaultSimulatorInterval    = 25 * time.Second
	DefaultSimulatorProbability = 0.15
	DemoNote                    = "[demo]"
)

var (
	sampleItems = []Item{
		{Name: "Pizza Calabresa", Price: decimal.RequireFromString("45.90")},
		{Name: "X-Tudo", Price: decimal.RequireFromString("28.50")},
		{Name: "Açaí 500ml", Price: decimal.RequireFromString("22.00")},
		{Name: "Refrigerante 2L", Price: decimal.RequireFromString("12.00")},
	}
	sampleCustomers = []string{"Roberto Alves", "Fernanda Costa", "Lucas Martins", "Beatriz Santos"}
	sampleMethods   = []database.PaymentMethod{
		database.PaymentMethodPix,
		database.PaymentMethodCreditCard,
		database.PaymentMethodCash,
	}
)

// SettingsReader reports whether the business is taking orders.
// Satisfied by *database.Queries.
type SettingsReader interface {
	GetBusinessSettings(ctx context.Context, businessID uuid.UUID) (database.BusinessSetting, error)
}

// Simulator fabricates demo orders for one business so the board can be
// shown without real customers.
type Simulator struct {
	BusinessID  uuid.UUID
	Interval    time.Duration
	Probability float64
	Rand        *rand.Rand
	Placer      Placer
	Settings    SettingsReader
	Logger      *slog.Logger
}

// NewSimulator uses the default interval and probability with a randomly
// seeded source.
func NewSimulator(businessID uuid.UUID, placer Placer, settings SettingsReader, logger *slog.Logger) *Simulator {
	return &Simulator{
		BusinessID:  businessID,
		Interval:    DefaultSimulatorInterval,
		Probability: DefaultSimulatorProbability,
		Rand:        rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		Placer:      placer,
		Settings:    settings,
		Logger:      logger,
	}
}

// Run ticks until ctx is done.
func (s *Simulator) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Logger.Info("kitchen simulator started", "business_id", s.BusinessID, "interval", s.Interval)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			order, placed, err := s.Tick(ctx)
			if err != nil {
				s.Logger.Warn("simulated order failed", "business_id", s.BusinessID, "error", err)
				continue
			}
			if placed {
				s.Logger.Info("simulated order placed", "order_id", order.ID, "order_number", OrderNumber(order.ID))
			}
		}
	}
}

// Tick rolls once and places a sample order on a hit. Nothing is placed
// while the business is closed.
func (s *Simulator) Tick(ctx context.Context) (database.KitchenOrder, bool, error) {
	if s.Rand.Float64() >= s.Probability {
		return database.KitchenOrder{}, false, nil
	}

	settings, err := s.Settings.GetBusinessSettings(ctx, s.BusinessID)
	if err != nil {
		return database.KitchenOrder{}, false, fmt.Errorf("load settings: %w", err)
	}
	if !settings.IsOpen {
		return database.KitchenOrder{}, false, nil
	}

	order, err := s.Placer.PlaceOrder(ctx, s.samplePlacement())
	if err != nil {
		return database.KitchenOrder{}, false, err
	}
	return order, true, nil
}

func (s *Simulator) samplePlacement() Placement {
	r := s.Rand

	n := r.IntN(2) + 1
	items := make([]Item, 0, n)
	subtotal := decimal.Zero
	for range n {
		item := sampleItems[r.IntN(len(sampleItems))]
		item.Quantity = r.IntN(2) + 1
		items = append(items, item)
		subtotal = subtotal.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	orderType := database.OrderTypePickup
	address := ""
	if r.Float64() > 0.5 {
		orderType = database.OrderTypeDelivery
		address = fmt.Sprintf("Rua Exemplo, %d", r.IntN(1000)+1)
	}

	// The board shows a round total; item prices are only illustrative.
	total := decimal.NewFromInt(int64(r.IntN(80) + 20))

	return Placement{
		BusinessID:      s.BusinessID,
		CustomerName:    sampleCustomers[r.IntN(len(sampleCustomers))],
		Items:           items,
		Subtotal:        subtotal,
		DeliveryFee:     decimal.Zero,
		Total:           total,
		OrderType:       orderType,
		PaymentMethod:   sampleMethods[r.IntN(len(sampleMethods))],
		DeliveryAddress: address,
		Notes:           DemoNote,
	}
}
