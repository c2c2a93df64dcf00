package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const clearProductsCategory = `-- name: ClearProductsCategory :exec
UPDATE products SET category_id = NULL, updated_at = now()
WHERE category_id = $1 AND business_id = $2
`

type ClearProductsCategoryParams struct {
	CategoryID pgtype.UUID `json:"category_id"`
	BusinessID uuid.UUID   `json:"business_id"`
}

func (q *Queries) ClearProductsCategory(ctx context.Context, arg ClearProductsCategoryParams) error {
	_, err := q.db.Exec(ctx, clearProductsCategory, arg.CategoryID, arg.BusinessID)
	return err
}

const createCategory = `-- name: CreateCategory :one
INSERT INTO categories (business_id, name, order_index)
VALUES ($1, $2, COALESCE((SELECT MAX(order_index) FROM categories WHERE business_id = $1), -1) + 1)
RETURNING id, business_id, name, order_index, created_at
`

type CreateCategoryParams struct {
	BusinessID uuid.UUID `json:"business_id"`
	Name       string    `json:"name"`
}

func (q *Queries) CreateCategory(ctx context.Context, arg CreateCategoryParams) (Category, error) {
	row := q.db.QueryRow(ctx, createCategory, arg.BusinessID, arg.Name)
	var i Category
	err := row.Scan(
		&i.ID,
		&i.BusinessID,
		&i.Name,
		&i.OrderIndex,
		&i.CreatedAt,
	)
	return i, err
}

const deleteCategory = `-- name: DeleteCategory :one
DELETE FROM categories
WHERE id = $1 AND business_id = $2
RETURNING id
`

type DeleteCategoryParams struct {
	ID         uuid.UUID `json:"id"`
	BusinessID uuid.UUID `json:"business_id"`
}

func (q *Queries) DeleteCategory(ctx context.Context, arg DeleteCategoryParams) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, deleteCategory, arg.ID, arg.BusinessID)
	var id uuid.UUID
	err := row.Scan(&id)
	return id, err
}

const listCategoriesByBusiness = `-- name: ListCategoriesByBusiness :many
SELECT id, business_id, name, order_index, created_at FROM categories
WHERE business_id = $1
ORDER BY order_index, created_at
`

func (q *Queries) ListCategoriesByBusiness(ctx context.Context, businessID uuid.UUID) ([]Category, error) {
	rows, err := q.db.Query(ctx, listCategoriesByBusiness, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Category{}
	for rows.Next() {
		var i Category
		if err := rows.Scan(
			&i.ID,
			&i.BusinessID,
			&i.Name,
			&i.OrderIndex,
			&i.CreatedAt,
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

const setCategoryOrder = `-- name: SetCategoryOrder :execrows
UPDATE categories SET order_index = $3
WHERE id = $1 AND business_id = $2
`

type SetCategoryOrderParams struct {
	ID         uuid.UUID `json:"id"`
	BusinessID uuid.UUID `json:"business_id"`
	OrderIndex int32     `json:"order_index"`
}

func (q *Queries) SetCategoryOrder(ctx context.Context, arg SetCategoryOrderParams) (int64, error) {
	result, err := q.db.Exec(ctx, setCategoryOrder, arg.ID, arg.BusinessID, arg.OrderIndex)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const updateCategory = `-- name: UpdateCategory :one
UPDATE categories SET name = $3
WHERE id = $1 AND business_id = $2
RETURNING id, business_id, name, order_index, created_at
`

type UpdateCategoryParams struct {
	ID         uuid.UUID `json:"id"`
	BusinessID uuid.UUID `json:"business_id"`
	Name       string    `json:"name"`
}

func (q *Queries) UpdateCategory(ctx context.Context, arg UpdateCategoryParams) (Category, error) {
	row := q.db.QueryRow(ctx, updateCategory, arg.ID, arg.BusinessID, arg.Name)
	var i Category
	err := row.Scan(
		&i.ID,
		&i.BusinessID,
		&i.Name,
		&i.OrderIndex,
		&i.CreatedAt,
	)
	return i, err
}
