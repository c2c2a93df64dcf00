package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pedinu/api/internal/database"
	"github.com/pedinu/api/internal/kitchen"
	"github.com/pedinu/api/internal/outbox"
	"github.com/pedinu/api/internal/ws"
)

// Errors returned by the order service.
var (
	ErrEmptyItems           = errors.New("items are required")
	ErrInvalidQuantity      = errors.New("quantity must be > 0")
	ErrMissingCustomerName  = errors.New("customer_name is required")
	ErrInvalidOrderType     = errors.New("invalid order_type")
	ErrInvalidPaymentMethod = errors.New("invalid payment_method")
	ErrNegativeTotal        = errors.New("total must not be negative")
	ErrOrderNotFound        = errors.New("order not found")
	ErrStatusChanged        = errors.New("order status changed, please retry")
	ErrCannotCancel         = errors.New("order cannot be cancelled")
)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods needed for kitchen orders.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	CreateKitchenOrder(ctx context.Context, arg database.CreateKitchenOrderParams) (database.KitchenOrder, error)
	CreateOrderIntent(ctx context.Context, arg database.CreateOrderIntentParams) (database.OrderIntent, error)
	GetKitchenOrder(ctx context.Context, arg database.GetKitchenOrderParams) (database.KitchenOrder, error)
	UpdateKitchenOrderStatus(ctx context.Context, arg database.UpdateKitchenOrderStatusParams) (database.KitchenOrder, error)
	CancelKitchenOrder(ctx context.Context, arg database.CancelKitchenOrderParams) (database.KitchenOrder, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
type NewOrderStore func(db database.DBTX) OrderStore

// Notifier pushes board events. Satisfied by *ws.Hub.
type Notifier interface {
	BroadcastToBusiness(businessID uuid.UUID, event ws.Event)
}

// OrderService places kitchen orders and moves them across the board.
type OrderService struct {
	pool     TxBeginner
	newStore NewOrderStore
	notifier Notifier
}

// NewOrderService creates a new OrderService. notifier may be nil.
func NewOrderService(pool TxBeginner, newStore NewOrderStore, notifier Notifier) *OrderService {
	return &OrderService{pool: pool, newStore: newStore, notifier: notifier}
}

// PlaceOrder inserts the kitchen order with status received and, when the
// customer left a phone number, the outbox intent that feeds customer
// stats. Both rows commit or neither does.
func (s *OrderService) PlaceOrder(ctx context.Context, p kitchen.Placement) (database.KitchenOrder, error) {
	if err := validatePlacement(p); err != nil {
		return database.KitchenOrder{}, err
	}

	items, err := json.Marshal(p.Items)
	if err != nil {
		return database.KitchenOrder{}, fmt.Errorf("encode items: %w", err)
	}

	var order database.KitchenOrder
	err = s.withTx(ctx, func(store OrderStore) error {
		order, err = store.CreateKitchenOrder(ctx, database.CreateKitchenOrderParams{
			BusinessID:      p.BusinessID,
			CustomerName:    strings.TrimSpace(p.CustomerName),
			Items:           items,
			Total:           database.ToNumeric(p.Total),
			Status:          database.KitchenOrderStatusReceived,
			OrderType:       p.OrderType,
			PaymentMethod:   p.PaymentMethod,
			DeliveryAddress: database.Text(p.DeliveryAddress),
			Notes:           database.Text(p.Notes),
		})
		if err != nil {
			return fmt.Errorf("create kitchen order: %w", err)
		}

		if strings.TrimSpace(p.CustomerPhone) == "" {
			return nil
		}

		payload, err := outbox.Payload{
			CustomerName:  p.CustomerName,
			CustomerPhone: p.CustomerPhone,
			Neighborhood:  p.Neighborhood,
			Address:       p.Address,
			Items:         items,
			Subtotal:      p.Subtotal,
			DeliveryFee:   p.DeliveryFee,
			Total:         p.Total,
			PaymentMethod: p.PaymentMethod,
			Notes:         p.Notes,
			OrderDate:     order.OrderTime,
		}.Encode()
		if err != nil {
			return fmt.Errorf("encode intent: %w", err)
		}

		if _, err := store.CreateOrderIntent(ctx, database.CreateOrderIntentParams{
			BusinessID:     p.BusinessID,
			KitchenOrderID: order.ID,
			Payload:        payload,
		}); err != nil {
			return fmt.Errorf("create order intent: %w", err)
		}
		return nil
	})
	if err != nil {
		return database.KitchenOrder{}, err
	}

	s.notify(ws.EventOrderCreated, order)
	return order, nil
}

// UpdateStatus moves an order to next if the board allows it. The write is
// conditioned on the status we read, so a concurrent change yields
// ErrStatusChanged instead of a silent overwrite.
func (s *OrderService) UpdateStatus(ctx context.Context, businessID, orderID uuid.UUID, next database.KitchenOrderStatus) (database.KitchenOrder, error) {
	return s.transition(ctx, businessID, orderID, func(current database.KitchenOrderStatus) (database.KitchenOrderStatus, error) {
		return next, kitchen.ValidateTransition(current, next)
	})
}

// Advance moves an order to the stage after its current one.
func (s *OrderService) Advance(ctx context.Context, businessID, orderID uuid.UUID) (database.KitchenOrder, error) {
	return s.transition(ctx, businessID, orderID, func(current database.KitchenOrderStatus) (database.KitchenOrderStatus, error) {
		next, ok := kitchen.NextStatus(current)
		if !ok {
			return "", fmt.Errorf("%w: cannot advance from %s", kitchen.ErrInvalidTransition, current)
		}
		return next, nil
	})
}

// Cancel cancels an order from any non-terminal stage in one statement.
func (s *OrderService) Cancel(ctx context.Context, businessID, orderID uuid.UUID) (database.KitchenOrder, error) {
	var order database.KitchenOrder
	err := s.withTx(ctx, func(store OrderStore) error {
		var err error
		order, err = store.CancelKitchenOrder(ctx, database.CancelKitchenOrderParams{ID: orderID, BusinessID: businessID})
		if err == nil {
			return nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("cancel order: %w", err)
		}

		current, err := store.GetKitchenOrder(ctx, database.GetKitchenOrderParams{ID: orderID, BusinessID: businessID})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("get order: %w", err)
		}
		return fmt.Errorf("%w: order is already %s", ErrCannotCancel, current.Status)
	})
	if err != nil {
		return database.KitchenOrder{}, err
	}

	s.notify(ws.EventOrderUpdated, order)
	return order, nil
}

func (s *OrderService) transition(ctx context.Context, businessID, orderID uuid.UUID, pick func(database.KitchenOrderStatus) (database.KitchenOrderStatus, error)) (database.KitchenOrder, error) {
	var updated database.KitchenOrder
	err := s.withTx(ctx, func(store OrderStore) error {
		current, err := store.GetKitchenOrder(ctx, database.GetKitchenOrderParams{ID: orderID, BusinessID: businessID})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("get order: %w", err)
		}

		next, err := pick(current.Status)
		if err != nil {
			return err
		}

		updated, err = store.UpdateKitchenOrderStatus(ctx, database.UpdateKitchenOrderStatusParams{
			ID:         orderID,
			BusinessID: businessID,
			Status:     next,
			Status_2:   current.Status,
		})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrStatusChanged
			}
			return fmt.Errorf("update status: %w", err)
		}
		return nil
	})
	if err != nil {
		return database.KitchenOrder{}, err
	}

	s.notify(ws.EventOrderUpdated, updated)
	return updated, nil
}

func (s *OrderService) withTx(ctx context.Context, fn func(OrderStore) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(s.newStore(tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *OrderService) notify(eventType string, order database.KitchenOrder) {
	if s.notifier == nil {
		return
	}
	event, err := ws.NewEvent(eventType, kitchen.NewView(order))
	if err != nil {
		log.Printf("ERROR: encode %s event: %v", eventType, err)
		return
	}
	s.notifier.BroadcastToBusiness(order.BusinessID, event)
}

func validatePlacement(p kitchen.Placement) error {
	if strings.TrimSpace(p.CustomerName) == "" {
		return ErrMissingCustomerName
	}
	if len(p.Items) == 0 {
		return ErrEmptyItems
	}
	for i, it := range p.Items {
		if it.Quantity <= 0 {
			return fmt.Errorf("item[%d]: %w", i, ErrInvalidQuantity)
		}
	}
	switch p.OrderType {
	case database.OrderTypeDelivery, database.OrderTypePickup:
	default:
		return ErrInvalidOrderType
	}
	switch p.PaymentMethod {
	case database.PaymentMethodPix, database.PaymentMethodCash, database.PaymentMethodCreditCard, database.PaymentMethodDebitCard:
	default:
		return ErrInvalidPaymentMethod
	}
	if p.Total.IsNegative() {
		return ErrNegativeTotal
	}
	return nil
}
