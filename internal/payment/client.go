// Package payment talks to the Mercado Pago API: checkout preferences with
// a platform fee split, and payment status lookups for the webhook.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pedinu/api/internal/database"
	"github.com/pedinu/api/internal/enum"
)

const (
	DefaultBaseURL      = "https://api.mercadopago.com"
	defaultTimeout      = 15 * time.Second
	preferenceTTL       = 30 * time.Minute
	platformFeePercent  = 5
	defaultDescriptor   = "Pedinu"
	deliveryFeeTitle    = "Taxa de entrega"
	creditInstallments  = 12
	defaultInstallments = 1
)

var ErrMissingAccessToken = errors.New("business payment credentials are not configured")

// APIError is a non-2xx answer from the gateway.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("payment gateway: status %d: %s", e.StatusCode, e.Message)
}

type Item struct {
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// SplitRequest is a checkout the customer pays online. Amount is the sum of
// Items plus DeliveryFee.
type SplitRequest struct {
	BusinessID    uuid.UUID
	BusinessName  string
	Amount        decimal.Decimal
	DeliveryFee   decimal.Decimal
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	PaymentMethod database.PaymentMethod
	Items         []Item
}

// Credentials are the business's own gateway keys.
type Credentials struct {
	PublicKey   string
	AccessToken string
}

type SplitResult struct {
	PreferenceID      string
	ExternalReference string
	InitPoint         string
	SandboxInitPoint  string
	PlatformFee       decimal.Decimal
	BusinessAmount    decimal.Decimal
}

// PaymentURL prefers the production checkout link.
func (r *SplitResult) PaymentURL() string {
	if r.InitPoint != "" {
		return r.InitPoint
	}
	return r.SandboxInitPoint
}

// PaymentInfo is the subset of /v1/payments/{id} the webhook needs.
type PaymentInfo struct {
	ID                int64  `json:"id"`
	Status            string `json:"status"`
	ExternalReference string `json:"external_reference"`
}

// Recorder stores the pending payment. Satisfied by *database.Queries.
type Recorder interface {
	CreatePayment(ctx context.Context, arg database.CreatePaymentParams) (database.Payment, error)
}

type Client struct {
	BaseURL         string
	PlatformToken   string
	NotificationURL string
	AppURL          string
	HTTP            *http.Client
	Recorder        Recorder

	now func() time.Time
}

func NewClient(baseURL, platformToken, notificationURL, appURL string, recorder Recorder) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:         strings.TrimRight(baseURL, "/"),
		PlatformToken:   platformToken,
		NotificationURL: notificationURL,
		AppURL:          strings.TrimRight(appURL, "/"),
		HTTP:            &http.Client{Timeout: defaultTimeout},
		Recorder:        recorder,
		now:             time.Now,
	}
}

// PlatformFee is 5% of amount, rounded to the cent.
func PlatformFee(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(decimal.NewFromInt(platformFeePercent)).Round(0).Div(decimal.NewFromInt(100))
}

// SyntheticEmail derives a payer email from the customer name, which the
// gateway requires but checkout does not collect.
func SyntheticEmail(name string) string {
	local := strings.Join(strings.Fields(strings.ToLower(name)), ".")
	if local == "" {
		local = "cliente"
	}
	return local + "@pedinu.com"
}

// --- Wire types ---

type preferenceItem struct {
	Title     string  `json:"title"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

type idRef struct {
	ID string `json:"id"`
}

type preference struct {
	Items  []preferenceItem `json:"items"`
	Payer  payer            `json:"payer"`
	Method paymentMethods   `json:"payment_methods"`

	ApplicationFee    float64  `json:"application_fee"`
	ExternalReference string   `json:"external_reference"`
	NotificationURL   string   `json:"notification_url,omitempty"`
	BackURLs          backURLs `json:"back_urls"`
	AutoReturn        string   `json:"auto_return"`
	Expires           bool     `json:"expires"`
	ExpirationDateTo  string   `json:"expiration_date_to"`
	Descriptor        string   `json:"statement_descriptor"`
}

type payer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone struct {
		Number string `json:"number"`
	} `json:"phone"`
}

type paymentMethods struct {
	ExcludedPaymentTypes   []idRef `json:"excluded_payment_types"`
	ExcludedPaymentMethods []idRef `json:"excluded_payment_methods"`
	Installments           int     `json:"installments"`
}

type backURLs struct {
	Success string `json:"success"`
	Failure string `json:"failure"`
	Pending string `json:"pending"`
}

type preferenceResponse struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}

// --- Operations ---

// CreatePaymentWithSplit opens a checkout preference on the business's
// account, with the platform fee taken as application_fee, and records it
// as a pending payment.
func (c *Client) CreatePaymentWithSplit(ctx context.Context, req SplitRequest, creds Credentials) (*SplitResult, error) {
	if strings.TrimSpace(creds.AccessToken) == "" {
		return nil, ErrMissingAccessToken
	}

	fee := PlatformFee(req.Amount)
	businessAmount := req.Amount.Sub(fee)
	now := c.now()
	externalRef := fmt.Sprintf("order_%d_%s", now.UnixMilli(), req.BusinessID)

	pref := c.buildPreference(req, fee, externalRef, now)

	var resp preferenceResponse
	if err := c.do(ctx, http.MethodPost, "/checkout/preferences", creds.AccessToken, pref, &resp); err != nil {
		return nil, err
	}

	items, err := json.Marshal(req.Items)
	if err != nil {
		return nil, fmt.Errorf("encode items: %w", err)
	}

	if c.Recorder != nil {
		_, err = c.Recorder.CreatePayment(ctx, database.CreatePaymentParams{
			PreferenceID:      resp.ID,
			ExternalReference: externalRef,
			BusinessID:        req.BusinessID,
			Amount:            database.ToNumeric(req.Amount),
			PlatformFee:       database.ToNumeric(fee),
			BusinessAmount:    database.ToNumeric(businessAmount),
			CustomerName:      req.CustomerName,
			CustomerPhone:     req.CustomerPhone,
			CustomerEmail:     req.CustomerEmail,
			PaymentMethod:     req.PaymentMethod,
			Items:             items,
		})
		if err != nil {
			return nil, fmt.Errorf("record payment: %w", err)
		}
	}

	return &SplitResult{
		PreferenceID:      resp.ID,
		ExternalReference: externalRef,
		InitPoint:         resp.InitPoint,
		SandboxInitPoint:  resp.SandboxInitPoint,
		PlatformFee:       fee,
		BusinessAmount:    businessAmount,
	}, nil
}

// GetPaymentStatus looks a payment up with the platform token.
func (c *Client) GetPaymentStatus(ctx context.Context, paymentID string) (*PaymentInfo, error) {
	var info PaymentInfo
	if err := c.do(ctx, http.MethodGet, "/v1/payments/"+paymentID, c.PlatformToken, nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) buildPreference(req SplitRequest, fee decimal.Decimal, externalRef string, now time.Time) preference {
	items := make([]preferenceItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, preferenceItem{
			Title:     it.Title,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice.InexactFloat64(),
		})
	}
	if req.DeliveryFee.IsPositive() {
		items = append(items, preferenceItem{
			Title:     deliveryFeeTitle,
			Quantity:  1,
			UnitPrice: req.DeliveryFee.InexactFloat64(),
		})
	}

	methods := paymentMethods{
		ExcludedPaymentTypes:   []idRef{{ID: "ticket"}},
		ExcludedPaymentMethods: []idRef{},
		Installments:           defaultInstallments,
	}
	if req.PaymentMethod != database.PaymentMethodPix {
		methods.ExcludedPaymentMethods = append(methods.ExcludedPaymentMethods, idRef{ID: "pix"})
	}
	if req.PaymentMethod == database.PaymentMethodCreditCard {
		methods.Installments = creditInstallments
	}

	descriptor := req.BusinessName
	if descriptor == "" {
		descriptor = defaultDescriptor
	}

	p := preference{
		Items:             items,
		Method:            methods,
		ApplicationFee:    fee.InexactFloat64(),
		ExternalReference: externalRef,
		NotificationURL:   c.NotificationURL,
		BackURLs: backURLs{
			Success: c.AppURL + "/payment/success",
			Failure: c.AppURL + "/payment/failure",
			Pending: c.AppURL + "/payment/pending",
		},
		AutoReturn:       "approved",
		Expires:          true,
		ExpirationDateTo: now.Add(preferenceTTL).UTC().Format(time.RFC3339),
		Descriptor:       descriptor,
	}
	p.Payer.Name = req.CustomerName
	p.Payer.Email = req.CustomerEmail
	p.Payer.Phone.Number = req.CustomerPhone
	return p
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("payment gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Message == "" {
			apiErr.Message = "unknown error"
		}
		return &APIError{StatusCode: resp.StatusCode, Message: apiErr.Message}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// MapStatus folds a gateway payment status into the stored payment status.
// Unknown statuses stay pending.
func MapStatus(gatewayStatus string) string {
	switch gatewayStatus {
	case "approved":
		return enum.PaymentStatusApproved
	case "rejected":
		return enum.PaymentStatusRejected
	case "cancelled", "refunded", "charged_back":
		return enum.PaymentStatusCancelled
	default:
		return enum.PaymentStatusPending
	}
}
