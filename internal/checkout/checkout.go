// Package checkout turns a public catalog cart into either a hosted payment
// link or a kitchen order announced over WhatsApp.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pedinu/api/internal/cart"
	"github.com/pedinu/api/internal/database"
	"github.com/pedinu/api/internal/enum"
	"github.com/pedinu/api/internal/kitchen"
	"github.com/pedinu/api/internal/payment"
	"github.com/pedinu/api/internal/whatsapp"
	"github.com/pedinu/api/internal/zone"
)

const (
	KindPayment  = "payment"
	KindWhatsApp = "whatsapp"

	msgInvalidNeighborhood = "Selecione um bairro válido da lista"
)

// Store is satisfied by *database.Queries; narrow interface for testability.
type Store interface {
	GetBusinessSettings(ctx context.Context, businessID uuid.UUID) (database.BusinessSetting, error)
	ListDeliveryZones(ctx context.Context, businessID uuid.UUID) ([]database.DeliveryZone, error)
}

// Gateway creates hosted payment links. Satisfied by *payment.Client.
type Gateway interface {
	CreatePaymentWithSplit(ctx context.Context, req payment.SplitRequest, creds payment.Credentials) (*payment.SplitResult, error)
}

// Customer is what the checkout form collects.
type Customer struct {
	Name          string
	Phone         string
	Neighborhood  string
	Address       string
	PaymentMethod string // code or label
	Notes         string
}

type Request struct {
	BusinessID   uuid.UUID
	BusinessName string
	CartID       uuid.UUID
	Customer     Customer
}

type Result struct {
	Kind         string     `json:"kind"`
	PaymentURL   string     `json:"payment_url,omitempty"`
	PreferenceID string     `json:"preference_id,omitempty"`
	WhatsAppURL  string     `json:"whatsapp_url,omitempty"`
	Message      string     `json:"message,omitempty"`
	OrderID      *uuid.UUID `json:"order_id,omitempty"`
	OrderNumber  string     `json:"order_number,omitempty"`
	Subtotal     string     `json:"subtotal"`
	DeliveryFee  string     `json:"delivery_fee"`
	Total        string     `json:"total"`
}

type Orchestrator struct {
	store   Store
	carts   cart.Store
	placer  kitchen.Placer
	gateway Gateway
	guard   Guard
	mode    zone.MatchMode
	logger  *slog.Logger
}

func New(store Store, carts cart.Store, placer kitchen.Placer, gateway Gateway, guard Guard, mode zone.MatchMode, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		store:   store,
		carts:   carts,
		placer:  placer,
		gateway: gateway,
		guard:   guard,
		mode:    mode,
		logger:  logger,
	}
}

// quote is the validated checkout before it branches.
type quote struct {
	cart     *cart.Cart
	settings database.BusinessSetting
	method   database.PaymentMethod
	subtotal decimal.Decimal
	fee      decimal.Decimal
	total    decimal.Decimal
}

// Checkout validates the cart and customer, then either opens a payment
// preference (online methods) or places the order and builds the WhatsApp
// link (cash). The cart is cleared only after a cash order is stored.
func (o *Orchestrator) Checkout(ctx context.Context, req Request) (*Result, error) {
	lockKey := "checkout:" + req.CartID.String()
	ok, err := o.guard.Acquire(ctx, lockKey)
	if err != nil {
		return nil, fmt.Errorf("acquire checkout lock: %w", err)
	}
	if !ok {
		return nil, ErrCheckoutInProgress
	}
	defer func() {
		if err := o.guard.Release(context.WithoutCancel(ctx), lockKey); err != nil {
			o.logger.Warn("release checkout lock", "cart_id", req.CartID, "error", err)
		}
	}()

	q, err := o.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	if enum.IsOnlinePayment(string(q.method)) {
		return o.payOnline(ctx, req, q)
	}
	return o.placeCashOrder(ctx, req, q)
}

func (o *Orchestrator) prepare(ctx context.Context, req Request) (*quote, error) {
	c, err := o.carts.Get(ctx, req.CartID)
	if err != nil {
		if errors.Is(err, cart.ErrNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if c.BusinessID != req.BusinessID {
		return nil, ErrCartNotFound
	}
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	method, verr := validateCustomer(req.Customer)
	if verr != nil {
		return nil, verr
	}

	settings, err := o.store.GetBusinessSettings(ctx, req.BusinessID)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if !settings.IsOpen {
		return nil, ErrBusinessClosed
	}

	rows, err := o.store.ListDeliveryZones(ctx, req.BusinessID)
	if err != nil {
		return nil, fmt.Errorf("load zones: %w", err)
	}
	zones := zone.FromRows(rows)

	fee, err := zone.Fee(zones, req.Customer.Neighborhood, o.mode)
	if err != nil {
		if !errors.Is(err, zone.ErrUnknownNeighborhood) {
			return nil, err
		}
		verr := &ValidationError{Fields: map[string]string{"neighborhood": msgInvalidNeighborhood}}
		s := zone.Suggest(zones, req.Customer.Neighborhood)
		switch s.Status {
		case zone.Matched:
			verr.Suggestions = []string{s.Zone.NeighborhoodName}
		case zone.Ambiguous:
			for _, z := range s.Candidates {
				verr.Suggestions = append(verr.Suggestions, z.NeighborhoodName)
			}
		}
		return nil, verr
	}

	subtotal := c.Total()
	minValue := database.FromNumeric(settings.MinOrderValue)
	if minValue.IsPositive() && subtotal.LessThan(minValue) {
		return nil, fmt.Errorf("%w of R$ %s", ErrBelowMinimum, whatsapp.FormatBRL(minValue))
	}

	return &quote{
		cart:     c,
		settings: settings,
		method:   method,
		subtotal: subtotal,
		fee:      fee,
		total:    subtotal.Add(fee),
	}, nil
}

func validateCustomer(c Customer) (database.PaymentMethod, *ValidationError) {
	fields := make(map[string]string)
	if strings.TrimSpace(c.Name) == "" {
		fields["name"] = "Nome é obrigatório"
	}
	if strings.TrimSpace(c.Phone) == "" {
		fields["phone"] = "Telefone é obrigatório"
	}
	if strings.TrimSpace(c.Neighborhood) == "" {
		fields["neighborhood"] = "Bairro é obrigatório"
	}
	if strings.TrimSpace(c.Address) == "" {
		fields["address"] = "Endereço é obrigatório"
	}

	var method database.PaymentMethod
	if strings.TrimSpace(c.PaymentMethod) == "" {
		fields["payment_method"] = "Forma de pagamento é obrigatória"
	} else if code, ok := enum.ParsePaymentMethod(strings.TrimSpace(c.PaymentMethod)); ok {
		method = database.PaymentMethod(code)
	} else {
		fields["payment_method"] = "Forma de pagamento inválida"
	}

	if len(fields) > 0 {
		return "", &ValidationError{Fields: fields}
	}
	return method, nil
}

func (o *Orchestrator) payOnline(ctx context.Context, req Request, q *quote) (*Result, error) {
	items := make([]payment.Item, 0, len(q.cart.Lines))
	for _, l := range q.cart.Lines {
		items = append(items, payment.Item{
			Title:     l.Product.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.Product.UnitPrice(),
		})
	}

	res, err := o.gateway.CreatePaymentWithSplit(ctx, payment.SplitRequest{
		BusinessID:    req.BusinessID,
		BusinessName:  req.BusinessName,
		Amount:        q.total,
		DeliveryFee:   q.fee,
		CustomerName:  req.Customer.Name,
		CustomerEmail: payment.SyntheticEmail(req.Customer.Name),
		CustomerPhone: req.Customer.Phone,
		PaymentMethod: q.method,
		Items:         items,
	}, payment.Credentials{
		PublicKey:   q.settings.MercadopagoPublicKey.String,
		AccessToken: q.settings.MercadopagoAccessToken.String,
	})
	if err != nil {
		return nil, err
	}

	return &Result{
		Kind:         KindPayment,
		PaymentURL:   res.PaymentURL(),
		PreferenceID: res.PreferenceID,
		Subtotal:     q.subtotal.StringFixed(2),
		DeliveryFee:  q.fee.StringFixed(2),
		Total:        q.total.StringFixed(2),
	}, nil
}

func (o *Orchestrator) placeCashOrder(ctx context.Context, req Request, q *quote) (*Result, error) {
	number := whatsappNumber(q.settings)
	if number == "" {
		return nil, ErrWhatsAppNotConfigured
	}

	c := req.Customer
	items := make([]kitchen.Item, 0, len(q.cart.Lines))
	msgItems := make([]whatsapp.Item, 0, len(q.cart.Lines))
	for _, l := range q.cart.Lines {
		unit := l.Product.UnitPrice()
		items = append(items, kitchen.Item{Name: l.Product.Name, Quantity: l.Quantity, Price: unit})
		msgItems = append(msgItems, whatsapp.Item{Name: l.Product.Name, Quantity: l.Quantity, UnitPrice: unit})
	}

	order, err := o.placer.PlaceOrder(ctx, kitchen.Placement{
		BusinessID:      req.BusinessID,
		CustomerName:    c.Name,
		CustomerPhone:   c.Phone,
		Neighborhood:    c.Neighborhood,
		Address:         c.Address,
		Items:           items,
		Subtotal:        q.subtotal,
		DeliveryFee:     q.fee,
		Total:           q.total,
		OrderType:       database.OrderTypeDelivery,
		PaymentMethod:   q.method,
		DeliveryAddress: c.Address + ", " + c.Neighborhood,
		Notes:           strings.TrimSpace(c.Notes),
	})
	if err != nil {
		pe := classifyPersistError(err)
		o.logger.Error("place checkout order",
			"business_id", req.BusinessID, "cart_id", req.CartID, "pg_code", pe.Code, "error", err)
		return nil, pe
	}

	message := whatsapp.BuildOrderMessage(whatsapp.Order{
		BusinessName:  req.BusinessName,
		CustomerName:  c.Name,
		CustomerPhone: c.Phone,
		Neighborhood:  c.Neighborhood,
		Address:       c.Address,
		PaymentLabel:  enum.PaymentMethodLabel(string(q.method)),
		Items:         msgItems,
		Subtotal:      q.subtotal,
		DeliveryFee:   q.fee,
		Total:         q.total,
		Notes:         strings.TrimSpace(c.Notes),
	})

	ordered := q.cart.Lines
	if _, err := o.carts.Update(ctx, req.CartID, func(c *cart.Cart) error {
		c.Subtract(ordered)
		return nil
	}); err != nil {
		o.logger.Warn("clear cart after order", "cart_id", req.CartID, "order_id", order.ID, "error", err)
	}

	orderID := order.ID
	return &Result{
		Kind:        KindWhatsApp,
		WhatsAppURL: whatsapp.Link(number, message),
		Message:     message,
		OrderID:     &orderID,
		OrderNumber: kitchen.OrderNumber(order.ID),
		Subtotal:    q.subtotal.StringFixed(2),
		DeliveryFee: q.fee.StringFixed(2),
		Total:       q.total.StringFixed(2),
	}, nil
}

// whatsappNumber prefers the WhatsApp field over the general phone.
func whatsappNumber(s database.BusinessSetting) string {
	raw := s.Whatsapp.String
	if strings.TrimSpace(raw) == "" {
		raw = s.Phone.String
	}
	return whatsapp.Digits(raw)
}
