package enum

// ── Group A: State machines (enum types in DB) ──

const (
	KitchenStatusReceived  = "received"
	KitchenStatusPreparing = "preparing"
	KitchenStatusReady     = "ready"
	KitchenStatusCompleted = "completed"
	KitchenStatusCancelled = "cancelled"
)

const (
	PaymentStatusPending   = "pending"
	PaymentStatusApproved  = "approved"
	PaymentStatusRejected  = "rejected"
	PaymentStatusCancelled = "cancelled"
)

const (
	WithdrawalStatusPending  = "pending"
	WithdrawalStatusApproved = "approved"
	WithdrawalStatusRejected = "rejected"
)

// ── Group C: Borderline (CHECK constrained in DB) ──

const (
	UserRoleOwner = "OWNER"
	UserRoleAdmin = "ADMIN"
)

const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
	UserStatusPending  = "pending"
)

const (
	OrderTypeDelivery = "delivery"
	OrderTypePickup   = "pickup"
)

const (
	PaymentMethodPix        = "pix"
	PaymentMethodCash       = "cash"
	PaymentMethodCreditCard = "credit_card"
	PaymentMethodDebitCard  = "debit_card"
)

// ── Group B: Configurable labels (no DB constraint) ──

const (
	UploadPurposeProducts = "products"
	UploadPurposeLogo     = "logo"
	UploadPurposeBanner   = "banner"
)

// paymentMethodLabels are the customer-facing names shown in the catalog.
var paymentMethodLabels = map[string]string{
	PaymentMethodPix:        "Pix",
	PaymentMethodCash:       "Dinheiro",
	PaymentMethodCreditCard: "Cartão de Crédito",
	PaymentMethodDebitCard:  "Cartão de Débito",
}

// ParsePaymentMethod accepts either a stored code or its display label.
func ParsePaymentMethod(s string) (string, bool) {
	if _, ok := paymentMethodLabels[s]; ok {
		return s, true
	}
	for code, label := range paymentMethodLabels {
		if label == s {
			return code, true
		}
	}
	return "", false
}

// PaymentMethodLabel returns the display label, or the input when unknown.
func PaymentMethodLabel(code string) string {
	if label, ok := paymentMethodLabels[code]; ok {
		return label
	}
	return code
}

// IsOnlinePayment reports whether the method goes through the hosted
// payment page instead of the WhatsApp order flow.
func IsOnlinePayment(code string) bool {
	switch code {
	case PaymentMethodPix, PaymentMethodCreditCard, PaymentMethodDebitCard:
		return true
	}
	return false
}

// PaymentMethodLabels lists the labels in the order the checkout offers them.
func PaymentMethodLabels() []string {
	return []string{
		paymentMethodLabels[PaymentMethodPix],
		paymentMethodLabels[PaymentMethodCash],
		paymentMethodLabels[PaymentMethodCreditCard],
		paymentMethodLabels[PaymentMethodDebitCard],
	}
}
