package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type KitchenOrderStatus string

const (
	KitchenOrderStatusReceived  KitchenOrderStatus = "received"
	KitchenOrderStatusPreparing KitchenOrderStatus = "preparing"
	KitchenOrderStatusReady     KitchenOrderStatus = "ready"
	KitchenOrderStatusCompleted KitchenOrderStatus = "completed"
	KitchenOrderStatusCancelled KitchenOrderStatus = "cancelled"
)

func (e *KitchenOrderStatus) Scan(src interface{}) error {
	switch s := src.(type) {
	case []byte:
		*e = KitchenOrderStatus(s)
	case string:
		*e = KitchenOrderStatus(s)
	default:
		return fmt.Errorf("unsupported scan type for KitchenOrderStatus: %T", src)
	}
	return nil
}

type OrderType string

const (
	OrderTypeDelivery OrderType = "delivery"
	OrderTypePickup   OrderType = "pickup"
)

func (e *OrderType) Scan(src interface{}) error {
	switch s := src.(type) {
	case []byte:
		*e = OrderType(s)
	case string:
		*e = OrderType(s)
	default:
		return fmt.Errorf("unsupported scan type for OrderType: %T", src)
	}
	return nil
}

type PaymentMethod string

const (
	PaymentMethodPix        PaymentMethod = "pix"
	PaymentMethodCash       PaymentMethod = "cash"
	PaymentMethodCreditCard PaymentMethod = "credit_card"
	PaymentMethodDebitCard  PaymentMethod = "debit_card"
)

func (e *PaymentMethod) Scan(src interface{}) error {
	switch s := src.(type) {
	case []byte:
		*e = PaymentMethod(s)
	case string:
		*e = PaymentMethod(s)
	default:
		return fmt.Errorf("unsupported scan type for PaymentMethod: %T", src)
	}
	return nil
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusApproved  PaymentStatus = "approved"
	PaymentStatusRejected  PaymentStatus = "rejected"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

func (e *PaymentStatus) Scan(src interface{}) error {
	switch s := src.(type) {
	case []byte:
		*e = PaymentStatus(s)
	case string:
		*e = PaymentStatus(s)
	default:
		return fmt.Errorf("unsupported scan type for PaymentStatus: %T", src)
	}
	return nil
}

type WithdrawalStatus string

const (
	WithdrawalStatusPending  WithdrawalStatus = "pending"
	WithdrawalStatusApproved WithdrawalStatus = "approved"
	WithdrawalStatusRejected WithdrawalStatus = "rejected"
)

func (e *WithdrawalStatus) Scan(src interface{}) error {
	switch s := src.(type) {
	case []byte:
		*e = WithdrawalStatus(s)
	case string:
		*e = WithdrawalStatus(s)
	default:
		return fmt.Errorf("unsupported scan type for WithdrawalStatus: %T", src)
	}
	return nil
}

type BusinessSetting struct {
	BusinessID             uuid.UUID      `json:"business_id"`
	IsOpen                 bool           `json:"is_open"`
	Description            pgtype.Text    `json:"description"`
	Address                pgtype.Text    `json:"address"`
	Phone                  pgtype.Text    `json:"phone"`
	Whatsapp               pgtype.Text    `json:"whatsapp"`
	LogoUrl                pgtype.Text    `json:"logo_url"`
	BannerUrl              pgtype.Text    `json:"banner_url"`
	DeliveryFee            pgtype.Numeric `json:"delivery_fee"`
	MinOrderValue          pgtype.Numeric `json:"min_order_value"`
	MercadopagoPublicKey   pgtype.Text    `json:"mercadopago_public_key"`
	MercadopagoAccessToken pgtype.Text    `json:"mercadopago_access_token"`
	UpdatedAt              time.Time      `json:"updated_at"`
}

type Category struct {
	ID         uuid.UUID `json:"id"`
	BusinessID uuid.UUID `json:"business_id"`
	Name       string    `json:"name"`
	OrderIndex int32     `json:"order_index"`
	CreatedAt  time.Time `json:"created_at"`
}

type Customer struct {
	ID            uuid.UUID          `json:"id"`
	BusinessID    uuid.UUID          `json:"business_id"`
	Name          string             `json:"name"`
	Phone         string             `json:"phone"`
	Neighborhood  pgtype.Text        `json:"neighborhood"`
	Address       pgtype.Text        `json:"address"`
	TotalOrders   int32              `json:"total_orders"`
	TotalSpent    pgtype.Numeric     `json:"total_spent"`
	LastOrderDate pgtype.Timestamptz `json:"last_order_date"`
	CreatedAt     time.Time          `json:"created_at"`
}

type CustomerOrder struct {
	ID            uuid.UUID      `json:"id"`
	BusinessID    uuid.UUID      `json:"business_id"`
	CustomerID    uuid.UUID      `json:"customer_id"`
	IntentID      pgtype.UUID    `json:"intent_id"`
	CustomerName  string         `json:"customer_name"`
	CustomerPhone string         `json:"customer_phone"`
	Neighborhood  pgtype.Text    `json:"neighborhood"`
	Address       pgtype.Text    `json:"address"`
	Items         []byte         `json:"items"`
	Subtotal      pgtype.Numeric `json:"subtotal"`
	DeliveryFee   pgtype.Numeric `json:"delivery_fee"`
	Total         pgtype.Numeric `json:"total"`
	PaymentMethod PaymentMethod  `json:"payment_method"`
	Notes         pgtype.Text    `json:"notes"`
	OrderDate     time.Time      `json:"order_date"`
}

type DeliveryZone struct {
	ID               uuid.UUID      `json:"id"`
	BusinessID       uuid.UUID      `json:"business_id"`
	NeighborhoodName string         `json:"neighborhood_name"`
	Fee              pgtype.Numeric `json:"fee"`
	CreatedAt        time.Time      `json:"created_at"`
}

type KitchenOrder struct {
	ID              uuid.UUID          `json:"id"`
	BusinessID      uuid.UUID          `json:"business_id"`
	CustomerName    string             `json:"customer_name"`
	Items           []byte             `json:"items"`
	Total           pgtype.Numeric     `json:"total"`
	Status          KitchenOrderStatus `json:"status"`
	OrderTime       time.Time          `json:"order_time"`
	OrderType       OrderType          `json:"order_type"`
	PaymentMethod   PaymentMethod      `json:"payment_method"`
	DeliveryAddress pgtype.Text        `json:"delivery_address"`
	Notes           pgtype.Text        `json:"notes"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

type OrderIntent struct {
	ID             uuid.UUID          `json:"id"`
	BusinessID     uuid.UUID          `json:"business_id"`
	KitchenOrderID uuid.UUID          `json:"kitchen_order_id"`
	Payload        []byte             `json:"payload"`
	Attempts       int32              `json:"attempts"`
	LastError      pgtype.Text        `json:"last_error"`
	ProcessedAt    pgtype.Timestamptz `json:"processed_at"`
	CreatedAt      time.Time          `json:"created_at"`
}

type Payment struct {
	ID                uuid.UUID      `json:"id"`
	PreferenceID      string         `json:"preference_id"`
	ExternalReference string         `json:"external_reference"`
	BusinessID        uuid.UUID      `json:"business_id"`
	Amount            pgtype.Numeric `json:"amount"`
	PlatformFee       pgtype.Numeric `json:"platform_fee"`
	BusinessAmount    pgtype.Numeric `json:"business_amount"`
	CustomerName      string         `json:"customer_name"`
	CustomerPhone     string         `json:"customer_phone"`
	CustomerEmail     string         `json:"customer_email"`
	PaymentMethod     PaymentMethod  `json:"payment_method"`
	Items             []byte         `json:"items"`
	Status            PaymentStatus  `json:"status"`
	GatewayPaymentID  pgtype.Text    `json:"gateway_payment_id"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

type Product struct {
	ID               uuid.UUID      `json:"id"`
	BusinessID       uuid.UUID      `json:"business_id"`
	CategoryID       pgtype.UUID    `json:"category_id"`
	Name             string         `json:"name"`
	Description      pgtype.Text    `json:"description"`
	Price            pgtype.Numeric `json:"price"`
	PromotionalPrice pgtype.Numeric `json:"promotional_price"`
	ImageUrl         pgtype.Text    `json:"image_url"`
	IsAvailable      bool           `json:"is_available"`
	OrderIndex       int32          `json:"order_index"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

type User struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"hashed_password"`
	BusinessName   string    `json:"business_name"`
	BusinessSlug   string    `json:"business_slug"`
	Role           string    `json:"role"`
	Status         string    `json:"status"`
	MenuViews      int64     `json:"menu_views"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type Withdrawal struct {
	ID              uuid.UUID          `json:"id"`
	BusinessID      uuid.UUID          `json:"business_id"`
	Amount          pgtype.Numeric     `json:"amount"`
	BankInfo        string             `json:"bank_info"`
	Status          WithdrawalStatus   `json:"status"`
	RejectionReason pgtype.Text        `json:"rejection_reason"`
	CreatedAt       time.Time          `json:"created_at"`
	ProcessedAt     pgtype.Timestamptz `json:"processed_at"`
}
