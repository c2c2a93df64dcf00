package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createDeliveryZone = `-- name: CreateDeliveryZone :one
INSERT INTO delivery_zones (business_id, neighborhood_name, fee)
VALUES ($1, $2, $3)
RETURNING id, business_id, neighborhood_name, fee, created_at
`

type CreateDeliveryZoneParams struct {
	BusinessID       uuid.UUID      `json:"business_id"`
	NeighborhoodName string         `json:"neighborhood_name"`
	Fee              pgtype.Numeric `json:"fee"`
}

func (q *Queries) CreateDeliveryZone(ctx context.Context, arg CreateDeliveryZoneParams) (DeliveryZone, error) {
	row := q.db.QueryRow(ctx, createDeliveryZone, arg.BusinessID, arg.NeighborhoodName, arg.Fee)
	var i DeliveryZone
	err := row.Scan(
		&i.ID,
		&i.BusinessID,
		&i.NeighborhoodName,
		&i.Fee,
		&i.CreatedAt,
	)
	return i, err
}

const deleteDeliveryZone = `-- name: DeleteDeliveryZone :one
DELETE FROM delivery_zones
WHERE id = $1 AND business_id = $2
RETURNING id
`

type DeleteDeliveryZoneParams struct {
	ID         uuid.UUID `json:"id"`
	BusinessID uuid.UUID `json:"business_id"`
}

func (q *Queries) DeleteDeliveryZone(ctx context.Context, arg DeleteDeliveryZoneParams) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, deleteDeliveryZone, arg.ID, arg.BusinessID)
	var id uuid.UUID
	err := row.Scan(&id)
	return id, err
}

const listDeliveryZones = `-- name: ListDeliveryZones :many
SELECT id, business_id, neighborhood_name, fee, created_at FROM delivery_zones
WHERE business_id = $1
ORDER BY neighborhood_name
`

func (q *Queries) ListDeliveryZones(ctx context.Context, businessID uuid.UUID) ([]DeliveryZone, error) {
	rows, err := q.db.Query(ctx, listDeliveryZones, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []DeliveryZone{}
	for rows.Next() {
		var i DeliveryZone
		if err := rows.Scan(
			&i.ID,
			&i.BusinessID,
			&i.NeighborhoodName,
			&i.Fee,
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

const updateDeliveryZone = `-- name: UpdateDeliveryZone :one
UPDATE delivery_zones SET neighborhood_name = $3, fee = $4
WHERE id = $1 AND business_id = $2
RETURNING id, business_id, neighborhood_name, fee, created_at
`

type UpdateDeliveryZoneParams struct {
	ID               uuid.UUID      `json:"id"`
	BusinessID       uuid.UUID      `json:"business_id"`
	NeighborhoodName string         `json:"neighborhood_name"`
	Fee              pgtype.Numeric `json:"fee"`
}

func (q *Queries) UpdateDeliveryZone(ctx context.Context, arg UpdateDeliveryZoneParams) (DeliveryZone, error) {
	row := q.db.QueryRow(ctx, updateDeliveryZone,
		arg.ID,
		arg.BusinessID,
		arg.NeighborhoodName,
		arg.Fee,
	)
	var i DeliveryZone
	err := row.Scan(
		&i.ID,
		&i.BusinessID,
		&i.NeighborhoodName,
		&i.Fee,
		&i.CreatedAt,
	)
	return i, err
}
