package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const cancelKitchenOrder = `-- name: CancelKitchenOrder :one
UPDATE kitchen_orders SET status = 'cancelled', updated_at = now()
WHERE id = $1 AND business_id = $2 AND status IN ('received', 'preparing', 'ready')
RETURNING id, business_id, customer_name, items, total, status, order_time, order_type, payment_method, delivery_address, notes, updated_at
`

type CancelKitchenOrderParams struct {
	ID         uuid.UUID `json:"id"`
	BusinessID uuid.UUID `json:"business_id"`
}

func (q *Queries) CancelKitchenOrder(ctx context.Context, arg CancelKitchenOrderParams) (KitchenOrder, error) {
	row := q.db.QueryRow(ctx, cancelKitchenOrder, arg.ID, arg.BusinessID)
	var i KitchenOrder
	err := row.Scan(
		&i.ID,
		&i.BusinessID,
		&i.CustomerName,
		&i.Items,
		&i.Total,
		&i.Status,
		&i.OrderTime,
		&i.OrderType,
		&i.PaymentMethod,
		&i.DeliveryAddress,
		&i.Notes,
		&i.UpdatedAt,
	)
	return i, err
}

const countKitchenOrders = `-- name: CountKitchenOrders :one
SELECT COUNT(*)::bigint FROM kitchen_orders
`

func (q *Queries) CountKitchenOrders(ctx context.Context) (int64, error) {
	row := q.db.QueryRow(ctx, countKitchenOrders)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const createKitchenOrder = `-- name: CreateKitchenOrder :one
INSERT INTO kitchen_orders (
    business_id, customer_name, items, total, status,
    order_type, payment_method, delivery_address, notes
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id, business_id, customer_name, items, total, status, order_time, order_type, payment_method, delivery_address, notes, updated_at
`

type CreateKitchenOrderParams struct {
	BusinessID      uuid.UUID          `json:"business_id"`
	CustomerName    string             `json:"customer_name"`
	Items           []byte             `json:"items"`
	Total           pgtype.Numeric     `json:"total"`
	Status          KitchenOrderStatus `json:"status"`
	OrderType       OrderType          `json:"order_type"`
	PaymentMethod   PaymentMethod      `json:"payment_method"`
	DeliveryAddress pgtype.Text        `json:"delivery_address"`
	Notes           pgtype.Text        `json:"notes"`
}

func (q *Queries) CreateKitchenOrder(ctx context.Context, arg CreateKitchenOrderParams) (KitchenOrder, error) {
	row := q.db.QueryRow(ctx, createKitchenOrder,
		arg.BusinessID,
		arg.CustomerName,
		arg.Items,
		arg.Total,
		arg.Status,
		arg.OrderType,
		arg.PaymentMethod,
		arg.DeliveryAddress,
		arg.Notes,
	)
	var i KitchenOrder
	err := row.Scan(
		&i.ID,
		&i.BusinessID,
		&i.CustomerName,
		&i.Items,
		&i.Total,
		&i.Status,
		&i.OrderTime,
		&i.OrderType,
		&i.PaymentMethod,
		&i.DeliveryAddress,
		&i.Notes,
		&i.UpdatedAt,
	)
	return i, err
}

const getKitchenOrder = `-- name: GetKitchenOrder :one
SELECT id, business_id, customer_name, items, total, status, order_time, order_type, payment_method, delivery_address, notes, updated_at FROM kitchen_orders
WHERE id = $1 AND business_id = $2
`

type GetKitchenOrderParams struct {
	ID         uuid.UUID `json:"id"`
	BusinessID uuid.UUID `json:"business_id"`
}

func (q *Queries) GetKitchenOrder(ctx context.Context, arg GetKitchenOrderParams) (KitchenOrder, error) {
	row := q.db.QueryRow(ctx, getKitchenOrder, arg.ID, arg.BusinessID)
	var i KitchenOrder
	err := row.Scan(
		&i.ID,
		&i.BusinessID,
		&i.CustomerName,
		&i.Items,
		&i.Total,
		&i.Status,
		&i.OrderTime,
		&i.OrderType,
		&i.PaymentMethod,
		&i.DeliveryAddress,
		&i.Notes,
		&i.UpdatedAt,
	)
	return i, err
}

const listKitchenOrders = `-- name: ListKitchenOrders :many
SELECT id, business_id, customer_name, items, total, status, order_time, order_type, payment_method, delivery_address, notes, updated_at FROM kitchen_orders
WHERE business_id = $1
ORDER BY order_time DESC
`

func (q *Queries) ListKitchenOrders(ctx context.Context, businessID uuid.UUID) ([]KitchenOrder, error) {
	rows, err := q.db.Query(ctx, listKitchenOrders, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []KitchenOrder{}
	for rows.Next() {
		var i KitchenOrder
		if err := rows.Scan(
			&i.ID,
			&i.BusinessID,
			&i.CustomerName,
			&i.Items,
			&i.Total,
			&i.Status,
			&i.OrderTime,
			&i.OrderType,
			&i.PaymentMethod,
			&i.DeliveryAddress,
			&i.Notes,
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

const updateKitchenOrderStatus = `-- name: UpdateKitchenOrderStatus :one
UPDATE kitchen_orders SET status = $3, updated_at = now()
WHERE id = $1 AND business_id = $2 AND status = $4
RETURNING id, business_id, customer_name, items, total, status, order_time, order_type, payment_method, delivery_address, notes, updated_at
`

type UpdateKitchenOrderStatusParams struct {
	ID         uuid.UUID          `json:"id"`
	BusinessID uuid.UUID          `json:"business_id"`
	Status     KitchenOrderStatus `json:"status"`
	Status_2   KitchenOrderStatus `json:"status_2"`
}

func (q *Queries) UpdateKitchenOrderStatus(ctx context.Context, arg UpdateKitchenOrderStatusParams) (KitchenOrder, error) {
	row := q.db.QueryRow(ctx, updateKitchenOrderStatus,
		arg.ID,
		arg.BusinessID,
		arg.Status,
		arg.Status_2,
	)
	var i KitchenOrder
	err := row.Scan(
		&i.ID,
		&i.BusinessID,
		&i.CustomerName,
		&i.Items,
		&i.Total,
		&i.Status,
		&i.OrderTime,
		&i.OrderType,
		&i.PaymentMethod,
		&i.DeliveryAddress,
		&i.Notes,
		&i.UpdatedAt,
	)
	return i, err
}
