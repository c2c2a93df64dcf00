package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createPayment = `-- name: CreatePayment :one
INSERT INTO payments (
    preference_id, external_reference, business_id, amount, platform_fee, business_amount,
    customer_name, customer_phone, customer_email, payment_method, items, status
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 'pending')
RETURNING id, preference_id, external_reference, business_id, amount, platform_fee, business_amount, customer_name, customer_phone, customer_email, payment_method, items, status, gateway_payment_id, created_at, updated_at
`

type CreatePaymentParams struct {
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
}

func (q *Queries) CreatePayment(ctx context.Context, arg CreatePaymentParams) (Payment, error) {
	row := q.db.QueryRow(ctx, createPayment,
		arg.PreferenceID,
		arg.ExternalReference,
		arg.BusinessID,
		arg.Amount,
		arg.PlatformFee,
		arg.BusinessAmount,
		arg.CustomerName,
		arg.CustomerPhone,
		arg.CustomerEmail,
		arg.PaymentMethod,
		arg.Items,
	)
	var i Payment
	err := row.Scan(
		&i.ID,
		&i.PreferenceID,
		&i.ExternalReference,
		&i.BusinessID,
		&i.Amount,
		&i.PlatformFee,
		&i.BusinessAmount,
		&i.CustomerName,
		&i.CustomerPhone,
		&i.CustomerEmail,
		&i.PaymentMethod,
		&i.Items,
		&i.Status,
		&i.GatewayPaymentID,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getPlatformPaymentStats = `-- name: GetPlatformPaymentStats :many
SELECT
    status,
    COUNT(*)::bigint AS count,
    COALESCE(SUM(amount), 0)::numeric(12,2) AS total_amount,
    COALESCE(SUM(platform_fee), 0)::numeric(12,2) AS total_fees
FROM payments
GROUP BY status
ORDER BY status
`

type GetPlatformPaymentStatsRow struct {
	Status      PaymentStatus  `json:"status"`
	Count       int64          `json:"count"`
	TotalAmount pgtype.Numeric `json:"total_amount"`
	TotalFees   pgtype.Numeric `json:"total_fees"`
}

func (q *Queries) GetPlatformPaymentStats(ctx context.Context) ([]GetPlatformPaymentStatsRow, error) {
	rows, err := q.db.Query(ctx, getPlatformPaymentStats)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []GetPlatformPaymentStatsRow{}
	for rows.Next() {
		var i GetPlatformPaymentStatsRow
		if err := rows.Scan(
			&i.Status,
			&i.Count,
			&i.TotalAmount,
			&i.TotalFees,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listBusinessPayments = `-- name: ListBusinessPayments :many
SELECT id, preference_id, external_reference, business_id, amount, platform_fee, business_amount, customer_name, customer_phone, customer_email, payment_method, items, status, gateway_payment_id, created_at, updated_at FROM payments
WHERE business_id = $1
ORDER BY created_at DESC
LIMIT $2
`

type ListBusinessPaymentsParams struct {
	BusinessID uuid.UUID `json:"business_id"`
	Limit      int32     `json:"limit"`
}

func (q *Queries) ListBusinessPayments(ctx context.Context, arg ListBusinessPaymentsParams) ([]Payment, error) {
	rows, err := q.db.Query(ctx, listBusinessPayments, arg.BusinessID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Payment{}
	for rows.Next() {
		var i Payment
		if err := rows.Scan(
			&i.ID,
			&i.PreferenceID,
			&i.ExternalReference,
			&i.BusinessID,
			&i.Amount,
			&i.PlatformFee,
			&i.BusinessAmount,
			&i.CustomerName,
			&i.CustomerPhone,
			&i.CustomerEmail,
			&i.PaymentMethod,
			&i.Items,
			&i.Status,
			&i.GatewayPaymentID,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updatePaymentStatus = `-- name: UpdatePaymentStatus :one
UPDATE payments SET
    status = $2,
    gateway_payment_id = COALESCE($3, gateway_payment_id),
    updated_at = now()
WHERE preference_id = $1 AND business_id = $4
RETURNING id, preference_id, external_reference, business_id, amount, platform_fee, business_amount, customer_name, customer_phone, customer_email, payment_method, items, status, gateway_payment_id, created_at, updated_at
`

type UpdatePaymentStatusParams struct {
	PreferenceID     string        `json:"preference_id"`
	Status           PaymentStatus `json:"status"`
	GatewayPaymentID pgtype.Text   `json:"gateway_payment_id"`
	BusinessID       uuid.UUID     `json:"business_id"`
}

func (q *Queries) UpdatePaymentStatus(ctx context.Context, arg UpdatePaymentStatusParams) (Payment, error) {
	row := q.db.QueryRow(ctx, updatePaymentStatus, arg.PreferenceID, arg.Status, arg.GatewayPaymentID, arg.BusinessID)
	var i Payment
	err := row.Scan(
		&i.ID,
		&i.PreferenceID,
		&i.ExternalReference,
		&i.BusinessID,
		&i.Amount,
		&i.PlatformFee,
		&i.BusinessAmount,
		&i.CustomerName,
		&i.CustomerPhone,
		&i.CustomerEmail,
		&i.PaymentMethod,
		&i.Items,
		&i.Status,
		&i.GatewayPaymentID,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const updatePaymentStatusByReference = `-- name: UpdatePaymentStatusByReference :one
UPDATE payments SET
    status = $2,
    gateway_payment_id = $3,
    updated_at = now()
WHERE external_reference = $1
RETURNING id, preference_id, external_reference, business_id, amount, platform_fee, business_amount, customer_name, customer_phone, customer_email, payment_method, items, status, gateway_payment_id, created_at, updated_at
`

type UpdatePaymentStatusByReferenceParams struct {
	ExternalReference string        `json:"external_reference"`
	Status            PaymentStatus `json:"status"`
	GatewayPaymentID  pgtype.Text   `json:"gateway_payment_id"`
}

func (q *Queries) UpdatePaymentStatusByReference(ctx context.Context, arg UpdatePaymentStatusByReferenceParams) (Payment, error) {
	row := q.db.QueryRow(ctx, updatePaymentStatusByReference, arg.ExternalReference, arg.Status, arg.GatewayPaymentID)
	var i Payment
	err := row.Scan(
		&i.ID,
		&i.PreferenceID,
		&i.ExternalReference,
		&i.BusinessID,
		&i.Amount,
		&i.PlatformFee,
		&i.BusinessAmount,
		&i.CustomerName,
		&i.CustomerPhone,
		&i.CustomerEmail,
		&i.PaymentMethod,
		&i.Items,
		&i.Status,
		&i.GatewayPaymentID,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
