package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createCustomerOrder = `-- name: CreateCustomerOrder :one
INSERT INTO customer_orders (
    business_id, customer_id, intent_id, customer_name, customer_phone,
    neighborhood, address, items, subtotal, delivery_fee, total,
    payment_method, notes, order_date
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
RETURNING id, business_id, customer_id, intent_id, customer_name, customer_phone, neighborhood, address, items, subtotal, delivery_fee, total, payment_method, notes, order_date
`

type CreateCustomerOrderParams struct {
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

func (q *Queries) CreateCustomerOrder(ctx context.Context, arg CreateCustomerOrderParams) (CustomerOrder, error) {
	row := q.db.QueryRow(ctx, createCustomerOrder,
		arg.BusinessID,
		arg.CustomerID,
		arg.IntentID,
		arg.CustomerName,
		arg.CustomerPhone,
		arg.Neighborhood,
		arg.Address,
		arg.Items,
		arg.Subtotal,
		arg.DeliveryFee,
		arg.Total,
		arg.PaymentMethod,
		arg.Notes,
		arg.OrderDate,
	)
	var i CustomerOrder
	err := row.Scan(
		&i.ID,
		&i.BusinessID,
		&i.CustomerID,
		&i.IntentID,
		&i.CustomerName,
		&i.CustomerPhone,
		&i.Neighborhood,
		&i.Address,
		&i.Items,
		&i.Subtotal,
		&i.DeliveryFee,
		&i.Total,
		&i.PaymentMethod,
		&i.Notes,
		&i.OrderDate,
	)
	return i, err
}

const getCustomer = `-- name: GetCustomer :one
SELECT id, business_id, name, phone, neighborhood, address, total_orders, total_spent, last_order_date, created_at FROM customers
WHERE id = $1 AND business_id = $2
`

type GetCustomerParams struct {
	ID         uuid.UUID `json:"id"`
	BusinessID uuid.UUID `json:"business_id"`
}

func (q *Queries) GetCustomer(ctx context.Context, arg GetCustomerParams) (Customer, error) {
	row := q.db.QueryRow(ctx, getCustomer, arg.ID, arg.BusinessID)
	var i Customer
	err := row.Scan(
		&i.ID,
		&i.BusinessID,
		&i.Name,
		&i.Phone,
		&i.Neighborhood,
		&i.Address,
		&i.TotalOrders,
		&i.TotalSpent,
		&i.LastOrderDate,
		&i.CreatedAt,
	)
	return i, err
}

const getCustomerStats = `-- name: GetCustomerStats :one
SELECT
    COUNT(*)::bigint AS total_customers,
    COALESCE(SUM(total_orders), 0)::bigint AS total_orders,
    COALESCE(SUM(total_spent), 0)::numeric(12,2) AS total_revenue
FROM customers
WHERE business_id = $1
`

type GetCustomerStatsRow struct {
	TotalCustomers int64          `json:"total_customers"`
	TotalOrders    int64          `json:"total_orders"`
	TotalRevenue   pgtype.Numeric `json:"total_revenue"`
}

func (q *Queries) GetCustomerStats(ctx context.Context, businessID uuid.UUID) (GetCustomerStatsRow, error) {
	row := q.db.QueryRow(ctx, getCustomerStats, businessID)
	var i GetCustomerStatsRow
	err := row.Scan(&i.TotalCustomers, &i.TotalOrders, &i.TotalRevenue)
	return i, err
}

const listCustomerOrders = `-- name: ListCustomerOrders :many
SELECT id, business_id, customer_id, intent_id, customer_name, customer_phone, neighborhood, address, items, subtotal, delivery_fee, total, payment_method, notes, order_date FROM customer_orders
WHERE business_id = $1 AND customer_id = $2
ORDER BY order_date DESC
`

type ListCustomerOrdersParams struct {
	BusinessID uuid.UUID `json:"business_id"`
	CustomerID uuid.UUID `json:"customer_id"`
}

func (q *Queries) ListCustomerOrders(ctx context.Context, arg ListCustomerOrdersParams) ([]CustomerOrder, error) {
	rows, err := q.db.Query(ctx, listCustomerOrders, arg.BusinessID, arg.CustomerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []CustomerOrder{}
	for rows.Next() {
		var i CustomerOrder
		if err := rows.Scan(
			&i.ID,
			&i.BusinessID,
			&i.CustomerID,
			&i.IntentID,
			&i.CustomerName,
			&i.CustomerPhone,
			&i.Neighborhood,
			&i.Address,
			&i.Items,
			&i.Subtotal,
			&i.DeliveryFee,
			&i.Total,
			&i.PaymentMethod,
			&i.Notes,
			&i.OrderDate,
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

const listCustomersByBusiness = `-- name: ListCustomersByBusiness :many
SELECT id, business_id, name, phone, neighborhood, address, total_orders, total_spent, last_order_date, created_at FROM customers
WHERE business_id = $1
ORDER BY last_order_date DESC NULLS LAST, name
`

func (q *Queries) ListCustomersByBusiness(ctx context.Context, businessID uuid.UUID) ([]Customer, error) {
	rows, err := q.db.Query(ctx, listCustomersByBusiness, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Customer{}
	for rows.Next() {
		var i Customer
		if err := rows.Scan(
			&i.ID,
			&i.BusinessID,
			&i.Name,
			&i.Phone,
			&i.Neighborhood,
			&i.Address,
			&i.TotalOrders,
			&i.TotalSpent,
			&i.LastOrderDate,
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

const upsertCustomerForOrder = `-- name: UpsertCustomerForOrder :one
INSERT INTO customers (business_id, name, phone, neighborhood, address, total_orders, total_spent, last_order_date)
VALUES ($1, $2, $3, $4, $5, 1, $6, $7)
ON CONFLICT (business_id, phone) DO UPDATE SET
    name = EXCLUDED.name,
    neighborhood = EXCLUDED.neighborhood,
    address = EXCLUDED.address,
    total_orders = customers.total_orders + 1,
    total_spent = customers.total_spent + EXCLUDED.total_spent,
    last_order_date = EXCLUDED.last_order_date
RETURNING id, business_id, name, phone, neighborhood, address, total_orders, total_spent, last_order_date, created_at
`

type UpsertCustomerForOrderParams struct {
	BusinessID    uuid.UUID          `json:"business_id"`
	Name          string             `json:"name"`
	Phone         string             `json:"phone"`
	Neighborhood  pgtype.Text        `json:"neighborhood"`
	Address       pgtype.Text        `json:"address"`
	TotalSpent    pgtype.Numeric     `json:"total_spent"`
	LastOrderDate pgtype.Timestamptz `json:"last_order_date"`
}

// UpsertCustomerForOrder matches on (business_id, phone) and folds one order
// into the running counters.
func (q *Queries) UpsertCustomerForOrder(ctx context.Context, arg UpsertCustomerForOrderParams) (Customer, error) {
	row := q.db.QueryRow(ctx, upsertCustomerForOrder,
		arg.BusinessID,
		arg.Name,
		arg.Phone,
		arg.Neighborhood,
		arg.Address,
		arg.TotalSpent,
		arg.LastOrderDate,
	)
	var i Customer
	err := row.Scan(
		&i.ID,
		&i.BusinessID,
		&i.Name,
		&i.Phone,
		&i.Neighborhood,
		&i.Address,
		&i.TotalOrders,
		&i.TotalSpent,
		&i.LastOrderDate,
		&i.CreatedAt,
	)
	return i, err
}
