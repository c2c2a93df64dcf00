package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createDefaultBusinessSettings = `-- name: CreateDefaultBusinessSettings :one
INSERT INTO business_settings (business_id, is_open, description)
VALUES ($1, true, $2)
ON CONFLICT (business_id) DO UPDATE SET business_id = EXCLUDED.business_id
RETURNING business_id, is_open, description, address, phone, whatsapp, logo_url, banner_url, delivery_fee, min_order_value, mercadopago_public_key, mercadopago_access_token, updated_at
`

type CreateDefaultBusinessSettingsParams struct {
	BusinessID  uuid.UUID   `json:"business_id"`
	Description pgtype.Text `json:"description"`
}

func (q *Queries) CreateDefaultBusinessSettings(ctx context.Context, arg CreateDefaultBusinessSettingsParams) (BusinessSetting, error) {
	row := q.db.QueryRow(ctx, createDefaultBusinessSettings, arg.BusinessID, arg.Description)
	var i BusinessSetting
	err := row.Scan(
		&i.BusinessID,
		&i.IsOpen,
		&i.Description,
		&i.Address,
		&i.Phone,
		&i.Whatsapp,
		&i.LogoUrl,
		&i.BannerUrl,
		&i.DeliveryFee,
		&i.MinOrderValue,
		&i.MercadopagoPublicKey,
		&i.MercadopagoAccessToken,
		&i.UpdatedAt,
	)
	return i, err
}

const getBusinessSettings = `-- name: GetBusinessSettings :one
SELECT business_id, is_open, description, address, phone, whatsapp, logo_url, banner_url, delivery_fee, min_order_value, mercadopago_public_key, mercadopago_access_token, updated_at FROM business_settings
WHERE business_id = $1
`

func (q *Queries) GetBusinessSettings(ctx context.Context, businessID uuid.UUID) (BusinessSetting, error) {
	row := q.db.QueryRow(ctx, getBusinessSettings, businessID)
	var i BusinessSetting
	err := row.Scan(
		&i.BusinessID,
		&i.IsOpen,
		&i.Description,
		&i.Address,
		&i.Phone,
		&i.Whatsapp,
		&i.LogoUrl,
		&i.BannerUrl,
		&i.DeliveryFee,
		&i.MinOrderValue,
		&i.MercadopagoPublicKey,
		&i.MercadopagoAccessToken,
		&i.UpdatedAt,
	)
	return i, err
}

const setBusinessOpen = `-- name: SetBusinessOpen :one
UPDATE business_settings SET is_open = $2, updated_at = now()
WHERE business_id = $1
RETURNING business_id, is_open, description, address, phone, whatsapp, logo_url, banner_url, delivery_fee, min_order_value, mercadopago_public_key, mercadopago_access_token, updated_at
`

type SetBusinessOpenParams struct {
	BusinessID uuid.UUID `json:"business_id"`
	IsOpen     bool      `json:"is_open"`
}

func (q *Queries) SetBusinessOpen(ctx context.Context, arg SetBusinessOpenParams) (BusinessSetting, error) {
	row := q.db.QueryRow(ctx, setBusinessOpen, arg.BusinessID, arg.IsOpen)
	var i BusinessSetting
	err := row.Scan(
		&i.BusinessID,
		&i.IsOpen,
		&i.Description,
		&i.Address,
		&i.Phone,
		&i.Whatsapp,
		&i.LogoUrl,
		&i.BannerUrl,
		&i.DeliveryFee,
		&i.MinOrderValue,
		&i.MercadopagoPublicKey,
		&i.MercadopagoAccessToken,
		&i.UpdatedAt,
	)
	return i, err
}

const updateBusinessSettings = `-- name: UpdateBusinessSettings :one
UPDATE business_settings SET
    description = $2,
    address = $3,
    phone = $4,
    whatsapp = $5,
    logo_url = $6,
    banner_url = $7,
    delivery_fee = $8,
    min_order_value = $9,
    mercadopago_public_key = $10,
    mercadopago_access_token = COALESCE($11, mercadopago_access_token),
    updated_at = now()
WHERE business_id = $1
RETURNING business_id, is_open, description, address, phone, whatsapp, logo_url, banner_url, delivery_fee, min_order_value, mercadopago_public_key, mercadopago_access_token, updated_at
`

type UpdateBusinessSettingsParams struct {
	BusinessID             uuid.UUID      `json:"business_id"`
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
}

func (q *Queries) UpdateBusinessSettings(ctx context.Context, arg UpdateBusinessSettingsParams) (BusinessSetting, error) {
	row := q.db.QueryRow(ctx, updateBusinessSettings,
		arg.BusinessID,
		arg.Description,
		arg.Address,
		arg.Phone,
		arg.Whatsapp,
		arg.LogoUrl,
		arg.BannerUrl,
		arg.DeliveryFee,
		arg.MinOrderValue,
		arg.MercadopagoPublicKey,
		arg.MercadopagoAccessToken,
	)
	var i BusinessSetting
	err := row.Scan(
		&i.BusinessID,
		&i.IsOpen,
		&i.Description,
		&i.Address,
		&i.Phone,
		&i.Whatsapp,
		&i.LogoUrl,
		&i.BannerUrl,
		&i.DeliveryFee,
		&i.MinOrderValue,
		&i.MercadopagoPublicKey,
		&i.MercadopagoAccessToken,
		&i.UpdatedAt,
	)
	return i, err
}
