package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const getCatalogBySlug = `-- name: GetCatalogBySlug :one
SELECT
    u.id AS business_id,
    u.business_name,
    u.business_slug,
    COALESCE(s.is_open, true)::boolean AS is_open,
    s.description,
    s.address,
    s.phone,
    s.whatsapp,
    s.logo_url,
    s.banner_url,
    COALESCE(s.delivery_fee, 0)::numeric(12,2) AS delivery_fee,
    COALESCE(s.min_order_value, 0)::numeric(12,2) AS min_order_value,
    COALESCE((
        SELECT json_agg(json_build_object(
            'id', c.id,
            'name', c.name,
            'order_index', c.order_index
        ) ORDER BY c.order_index)
        FROM categories c WHERE c.business_id = u.id
    ), '[]')::jsonb AS categories,
    COALESCE((
        SELECT json_agg(json_build_object(
            'id', p.id,
            'category_id', p.category_id,
            'name', p.name,
            'description', p.description,
            'price', p.price,
            'promotional_price', p.promotional_price,
            'image_url', p.image_url,
            'is_available', p.is_available,
            'order_index', p.order_index
        ) ORDER BY p.order_index)
        FROM products p WHERE p.business_id = u.id
    ), '[]')::jsonb AS products
FROM users u
LEFT JOIN business_settings s ON s.business_id = u.id
WHERE u.business_slug = $1 AND u.role = 'OWNER' AND u.status = 'active'
`

type GetCatalogBySlugRow struct {
	BusinessID    uuid.UUID      `json:"business_id"`
	BusinessName  string         `json:"business_name"`
	BusinessSlug  string         `json:"business_slug"`
	IsOpen        bool           `json:"is_open"`
	Description   pgtype.Text    `json:"description"`
	Address       pgtype.Text    `json:"address"`
	Phone         pgtype.Text    `json:"phone"`
	Whatsapp      pgtype.Text    `json:"whatsapp"`
	LogoUrl       pgtype.Text    `json:"logo_url"`
	BannerUrl     pgtype.Text    `json:"banner_url"`
	DeliveryFee   pgtype.Numeric `json:"delivery_fee"`
	MinOrderValue pgtype.Numeric `json:"min_order_value"`
	Categories    []byte         `json:"categories"`
	Products      []byte         `json:"products"`
}

// GetCatalogBySlug loads the business, its categories and its products in one
// round trip. Filtering of unavailable products happens in the caller.
func (q *Queries) GetCatalogBySlug(ctx context.Context, businessSlug string) (GetCatalogBySlugRow, error) {
	row := q.db.QueryRow(ctx, getCatalogBySlug, businessSlug)
	var i GetCatalogBySlugRow
	err := row.Scan(
		&i.BusinessID,
		&i.BusinessName,
		&i.BusinessSlug,
		&i.IsOpen,
		&i.Description,
		&i.Address,
		&i.Phone,
		&i.Whatsapp,
		&i.LogoUrl,
		&i.BannerUrl,
		&i.DeliveryFee,
		&i.MinOrderValue,
		&i.Categories,
		&i.Products,
	)
	return i, err
}
