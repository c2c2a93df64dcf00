package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createOrderIntent = `-- name: CreateOrderIntent :one
INSERT INTO order_intents (business_id, kitchen_order_id, payload)
VALUES ($1, $2, $3)
RETURNING id, business_id, kitchen_order_id, payload, attempts, last_error, processed_at, created_at
`

type CreateOrderIntentParams struct {
	BusinessID     uuid.UUID `json:"business_id"`
	KitchenOrderID uuid.UUID `json:"kitchen_order_id"`
	Payload        []byte    `json:"payload"`
}

func (q *Queries) CreateOrderIntent(ctx context.Context, arg CreateOrderIntentParams) (OrderIntent, error) {
	row := q.db.QueryRow(ctx, createOrderIntent, arg.BusinessID, arg.KitchenOrderID, arg.Payload)
	var i OrderIntent
	err := row.Scan(
		&i.ID,
		&i.BusinessID,
		&i.KitchenOrderID,
		&i.Payload,
		&i.Attempts,
		&i.LastError,
		&i.ProcessedAt,
		&i.CreatedAt,
	)
	return i, err
}

const listPendingIntents = `-- name: ListPendingIntents :many
SELECT id, business_id, kitchen_order_id, payload, attempts, last_error, processed_at, created_at FROM order_intents
WHERE processed_at IS NULL AND attempts < $1
ORDER BY created_at
LIMIT $2
`

type ListPendingIntentsParams struct {
	Attempts int32 `json:"attempts"`
	Limit    int32 `json:"limit"`
}

func (q *Queries) ListPendingIntents(ctx context.Context, arg ListPendingIntentsParams) ([]OrderIntent, error) {
	rows, err := q.db.Query(ctx, listPendingIntents, arg.Attempts, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []OrderIntent{}
	for rows.Next() {
		var i OrderIntent
		if err := rows.Scan(
			&i.ID,
			&i.BusinessID,
			&i.KitchenOrderID,
			&i.Payload,
			&i.Attempts,
			&i.LastError,
			&i.ProcessedAt,
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

const lockOrderIntent = `-- name: LockOrderIntent :one
SELECT id, business_id, kitchen_order_id, payload, attempts, last_error, processed_at, created_at FROM order_intents
WHERE id = $1 AND processed_at IS NULL
FOR UPDATE SKIP LOCKED
`

// LockOrderIntent returns pgx.ErrNoRows when the intent is already processed
// or another worker holds it.
func (q *Queries) LockOrderIntent(ctx context.Context, id uuid.UUID) (OrderIntent, error) {
	row := q.db.QueryRow(ctx, lockOrderIntent, id)
	var i OrderIntent
	err := row.Scan(
		&i.ID,
		&i.BusinessID,
		&i.KitchenOrderID,
		&i.Payload,
		&i.Attempts,
		&i.LastError,
		&i.ProcessedAt,
		&i.CreatedAt,
	)
	return i, err
}

const markIntentProcessed = `-- name: MarkIntentProcessed :exec
UPDATE order_intents SET processed_at = now(), last_error = NULL
WHERE id = $1
`

func (q *Queries) MarkIntentProcessed(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, markIntentProcessed, id)
	return err
}

const recordIntentFailure = `-- name: RecordIntentFailure :one
UPDATE order_intents SET attempts = attempts + 1, last_error = $2
WHERE id = $1
RETURNING attempts
`

type RecordIntentFailureParams struct {
	ID        uuid.UUID   `json:"id"`
	LastError pgtype.Text `json:"last_error"`
}

func (q *Queries) RecordIntentFailure(ctx context.Context, arg RecordIntentFailureParams) (int32, error) {
	row := q.db.QueryRow(ctx, recordIntentFailure, arg.ID, arg.LastError)
	var attempts int32
	err := row.Scan(&attempts)
	return attempts, err
}
