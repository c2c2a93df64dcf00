package database

import (
	"context"

	"github.com/google/uuid"
)

const countUsersByStatus = `-- name: CountUsersByStatus :many
SELECT status, COUNT(*)::bigint AS count
FROM users
WHERE role = 'OWNER'
GROUP BY status
ORDER BY status
`

type CountUsersByStatusRow struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

func (q *Queries) CountUsersByStatus(ctx context.Context) ([]CountUsersByStatusRow, error) {
	rows, err := q.db.Query(ctx, countUsersByStatus)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []CountUsersByStatusRow{}
	for rows.Next() {
		var i CountUsersByStatusRow
		if err := rows.Scan(&i.Status, &i.Count); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createUser = `-- name: CreateUser :one
INSERT INTO users (email, hashed_password, business_name, business_slug, role, status)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, email, hashed_password, business_name, business_slug, role, status, menu_views, created_at, updated_at
`

type CreateUserParams struct {
	Email          string `json:"email"`
	HashedPassword string `json:"hashed_password"`
	BusinessName   string `json:"business_name"`
	BusinessSlug   string `json:"business_slug"`
	Role           string `json:"role"`
	Status         string `json:"status"`
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRow(ctx, createUser,
		arg.Email,
		arg.HashedPassword,
		arg.BusinessName,
		arg.BusinessSlug,
		arg.Role,
		arg.Status,
	)
	var i User
	err := row.Scan(
		&i.ID,
		&i.Email,
		&i.HashedPassword,
		&i.BusinessName,
		&i.BusinessSlug,
		&i.Role,
		&i.Status,
		&i.MenuViews,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const deleteUser = `-- name: DeleteUser :one
DELETE FROM users
WHERE id = $1 AND role = 'OWNER'
RETURNING id
`

func (q *Queries) DeleteUser(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, deleteUser, id)
	err := row.Scan(&id)
	return id, err
}

const getUserByEmail = `-- name: GetUserByEmail :one
SELECT id, email, hashed_password, business_name, business_slug, role, status, menu_views, created_at, updated_at FROM users
WHERE email = $1
`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRow(ctx, getUserByEmail, email)
	var i User
	err := row.Scan(
		&i.ID,
		&i.Email,
		&i.HashedPassword,
		&i.BusinessName,
		&i.BusinessSlug,
		&i.Role,
		&i.Status,
		&i.MenuViews,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getUserByID = `-- name: GetUserByID :one
SELECT id, email, hashed_password, business_name, business_slug, role, status, menu_views, created_at, updated_at FROM users
WHERE id = $1
`

func (q *Queries) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	row := q.db.QueryRow(ctx, getUserByID, id)
	var i User
	err := row.Scan(
		&i.ID,
		&i.Email,
		&i.HashedPassword,
		&i.BusinessName,
		&i.BusinessSlug,
		&i.Role,
		&i.Status,
		&i.MenuViews,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getUserBySlug = `-- name: GetUserBySlug :one
SELECT id, email, hashed_password, business_name, business_slug, role, status, menu_views, created_at, updated_at FROM users
WHERE business_slug = $1 AND role = 'OWNER'
`

func (q *Queries) GetUserBySlug(ctx context.Context, businessSlug string) (User, error) {
	row := q.db.QueryRow(ctx, getUserBySlug, businessSlug)
	var i User
	err := row.Scan(
		&i.ID,
		&i.Email,
		&i.HashedPassword,
		&i.BusinessName,
		&i.BusinessSlug,
		&i.Role,
		&i.Status,
		&i.MenuViews,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const incrementMenuViews = `-- name: IncrementMenuViews :exec
UPDATE users SET menu_views = menu_views + $2
WHERE id = $1
`

type IncrementMenuViewsParams struct {
	ID        uuid.UUID `json:"id"`
	MenuViews int64     `json:"menu_views"`
}

func (q *Queries) IncrementMenuViews(ctx context.Context, arg IncrementMenuViewsParams) error {
	_, err := q.db.Exec(ctx, incrementMenuViews, arg.ID, arg.MenuViews)
	return err
}

const listUsers = `-- name: ListUsers :many
SELECT id, email, hashed_password, business_name, business_slug, role, status, menu_views, created_at, updated_at FROM users
WHERE role = 'OWNER'
ORDER BY created_at DESC
`

func (q *Queries) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := q.db.Query(ctx, listUsers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []User{}
	for rows.Next() {
		var i User
		if err := rows.Scan(
			&i.ID,
			&i.Email,
			&i.HashedPassword,
			&i.BusinessName,
			&i.BusinessSlug,
			&i.Role,
			&i.Status,
			&i.MenuViews,
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

const updateUserStatus = `-- name: UpdateUserStatus :one
UPDATE users SET status = $2, updated_at = now()
WHERE id = $1 AND role = 'OWNER'
RETURNING id, email, hashed_password, business_name, business_slug, role, status, menu_views, created_at, updated_at
`

type UpdateUserStatusParams struct {
	ID     uuid.UUID `json:"id"`
	Status string    `json:"status"`
}

func (q *Queries) UpdateUserStatus(ctx context.Context, arg UpdateUserStatusParams) (User, error) {
	row := q.db.QueryRow(ctx, updateUserStatus, arg.ID, arg.Status)
	var i User
	err := row.Scan(
		&i.ID,
		&i.Email,
		&i.HashedPassword,
		&i.BusinessName,
		&i.BusinessSlug,
		&i.Role,
		&i.Status,
		&i.MenuViews,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
