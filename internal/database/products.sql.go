package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createProduct = `-- name: CreateProduct :one
INSERT INTO products (business_id, category_id, name, description, price, promotional_price, image_url, is_available, order_index)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8,
    (SELECT COUNT(*) FROM products WHERE business_id = $1 AND category_id = $2))
RETURNING id, business_id, category_id, name, description, price, promotional_price, image_url, is_available, order_index, created_at, updated_at
`

type CreateProductParams struct {
	BusinessID       uuid.UUID      `json:"business_id"`
	CategoryID       pgtype.UUID    `json:"category_id"`
	Name             string         `json:"name"`
	Description      pgtype.Text    `json:"description"`
	Price            pgtype.Numeric `json:"price"`
	PromotionalPrice pgtype.Numeric `json:"promotional_price"`
	ImageUrl         pgtype.Text    `json:"image_url"`
	IsAvailable      bool           `json:"is_available"`
}

func (q *Queries) CreateProduct(ctx context.Context, arg CreateProductParams) (Product, error) {
	row := q.db.QueryRow(ctx, createProduct,
		arg.BusinessID,
		arg.CategoryID,
		arg.Name,
		arg.Description,
		arg.Price,
		arg.PromotionalPrice,
		arg.ImageUrl,
		arg.IsAvailable,
	)
	var i Product
	err := row.Scan(
		&i.ID,
		&i.BusinessID,
		&i.CategoryID,
		&i.Name,
		&i.Description,
		&i.Price,
		&i.PromotionalPrice,
		&i.ImageUrl,
		&i.IsAvailable,
		&i.OrderIndex,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const deleteProduct = `-- name: DeleteProduct :one
DELETE FROM products
WHERE id = $1 AND business_id = $2
RETURNING id
`

type DeleteProductParams struct {
	ID         uuid.UUID `json:"id"`
	BusinessID uuid.UUID `json:"business_id"`
}

func (q *Queries) DeleteProduct(ctx context.Context, arg DeleteProductParams) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, deleteProduct, arg.ID, arg.BusinessID)
	var id uuid.UUID
	err := row.Scan(&id)
	return id, err
}

const getProduct = `-- name: GetProduct :one
SELECT id, business_id, category_id, name, description, price, promotional_price, image_url, is_available, order_index, created_at, updated_at FROM products
WHERE id = $1 AND business_id = $2
`

type GetProductParams struct {
	ID         uuid.UUID `json:"id"`
	BusinessID uuid.UUID `json:"business_id"`
}

func (q *Queries) GetProduct(ctx context.Context, arg GetProductParams) (Product, error) {
	row := q.db.QueryRow(ctx, getProduct, arg.ID, arg.BusinessID)
	var i Product
	err := row.Scan(
		&i.ID,
		&i.BusinessID,
		&i.CategoryID,
		&i.Name,
		&i.Description,
		&i.Price,
		&i.PromotionalPrice,
		&i.ImageUrl,
		&i.IsAvailable,
		&i.OrderIndex,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listProductsByBusiness = `-- name: ListProductsByBusiness :many
SELECT id, business_id, category_id, name, description, price, promotional_price, image_url, is_available, order_index, created_at, updated_at FROM products
WHERE business_id = $1
ORDER BY order_index, name
`

func (q *Queries) ListProductsByBusiness(ctx context.Context, businessID uuid.UUID) ([]Product, error) {
	rows, err := q.db.Query(ctx, listProductsByBusiness, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

const listProductsByCategory = `-- name: ListProductsByCategory :many
SELECT id, business_id, category_id, name, description, price, promotional_price, image_url, is_available, order_index, created_at, updated_at FROM products
WHERE business_id = $1 AND category_id = $2
ORDER BY order_index, name
`

type ListProductsByCategoryParams struct {
	BusinessID uuid.UUID   `json:"business_id"`
	CategoryID pgtype.UUID `json:"category_id"`
}

func (q *Queries) ListProductsByCategory(ctx context.Context, arg ListProductsByCategoryParams) ([]Product, error) {
	rows, err := q.db.Query(ctx, listProductsByCategory, arg.BusinessID, arg.CategoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanProducts(rows rowScanner) ([]Product, error) {
	items := []Product{}
	for rows.Next() {
		var i Product
		if err := rows.Scan(
			&i.ID,
			&i.BusinessID,
			&i.CategoryID,
			&i.Name,
			&i.Description,
			&i.Price,
			&i.PromotionalPrice,
			&i.ImageUrl,
			&i.IsAvailable,
			&i.OrderIndex,
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

const setProductAvailability = `-- name: SetProductAvailability :one
UPDATE products SET is_available = $3, updated_at = now()
WHERE id = $1 AND business_id = $2
RETURNING id, business_id, category_id, name, description, price, promotional_price, image_url, is_available, order_index, created_at, updated_at
`

type SetProductAvailabilityParams struct {
	ID          uuid.UUID `json:"id"`
	BusinessID  uuid.UUID `json:"business_id"`
	IsAvailable bool      `json:"is_available"`
}

func (q *Queries) SetProductAvailability(ctx context.Context, arg SetProductAvailabilityParams) (Product, error) {
	row := q.db.QueryRow(ctx, setProductAvailability, arg.ID, arg.BusinessID, arg.IsAvailable)
	var i Product
	err := row.Scan(
		&i.ID,
		&i.BusinessID,
		&i.CategoryID,
		&i.Name,
		&i.Description,
		&i.Price,
		&i.PromotionalPrice,
		&i.ImageUrl,
		&i.IsAvailable,
		&i.OrderIndex,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const setProductOrder = `-- name: SetProductOrder :execrows
UPDATE products SET order_index = $4, updated_at = now()
WHERE id = $1 AND business_id = $2 AND category_id = $3
`

type SetProductOrderParams struct {
	ID         uuid.UUID   `json:"id"`
	BusinessID uuid.UUID   `json:"business_id"`
	CategoryID pgtype.UUID `json:"category_id"`
	OrderIndex int32       `json:"order_index"`
}

func (q *Queries) SetProductOrder(ctx context.Context, arg SetProductOrderParams) (int64, error) {
	result, err := q.db.Exec(ctx, setProductOrder, arg.ID, arg.BusinessID, arg.CategoryID, arg.OrderIndex)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const updateProduct = `-- name: UpdateProduct :one
UPDATE products SET
    category_id = $3,
    name = $4,
    description = $5,
    price = $6,
    promotional_price = $7,
    image_url = $8,
    is_available = $9,
    updated_at = now()
WHERE id = $1 AND business_id = $2
RETURNING id, business_id, category_id, name, description, price, promotional_price, image_url, is_available, order_index, created_at, updated_at
`

type UpdateProductParams struct {
	ID               uuid.UUID      `json:"id"`
	BusinessID       uuid.UUID      `json:"business_id"`
	CategoryID       pgtype.UUID    `json:"category_id"`
	Name             string         `json:"name"`
	Description      pgtype.Text    `json:"description"`
	Price            pgtype.Numeric `json:"price"`
	PromotionalPrice pgtype.Numeric `json:"promotional_price"`
	ImageUrl         pgtype.Text    `json:"image_url"`
	IsAvailable      bool           `json:"is_available"`
}

func (q *Queries) UpdateProduct(ctx context.Context, arg UpdateProductParams) (Product, error) {
	row := q.db.QueryRow(ctx, updateProduct,
		arg.ID,
		arg.BusinessID,
		arg.CategoryID,
		arg.Name,
		arg.Description,
		arg.Price,
		arg.PromotionalPrice,
		arg.ImageUrl,
		arg.IsAvailable,
	)
	var i Product
	err := row.Scan(
		&i.ID,
		&i.BusinessID,
		&i.CategoryID,
		&i.Name,
		&i.Description,
		&i.Price,
		&i.PromotionalPrice,
		&i.ImageUrl,
		&i.IsAvailable,
		&i.OrderIndex,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
