package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const approveWithdrawal = `-- name: ApproveWithdrawal :one
UPDATE withdrawals SET status = 'approved', processed_at = now()
WHERE id = $1 AND status = 'pending'
RETURNING id, business_id, amount, bank_info, status, rejection_reason, created_at, processed_at
`

func (q *Queries) ApproveWithdrawal(ctx context.Context, id uuid.UUID) (Withdrawal, error) {
	row := q.db.QueryRow(ctx, approveWithdrawal, id)
	var i Withdrawal
	err := row.Scan(
		&i.ID,
		&i.BusinessID,
		&i.Amount,
		&i.BankInfo,
		&i.Status,
		&i.RejectionReason,
		&i.CreatedAt,
		&i.ProcessedAt,
	)
	return i, err
}

const createWithdrawal = `-- name: CreateWithdrawal :one
INSERT INTO withdrawals (business_id, amount, bank_info)
VALUES ($1, $2, $3)
RETURNING id, business_id, amount, bank_info, status, rejection_reason, created_at, processed_at
`

type CreateWithdrawalParams struct {
	BusinessID uuid.UUID      `json:"business_id"`
	Amount     pgtype.Numeric `json:"amount"`
	BankInfo   string         `json:"bank_info"`
}

func (q *Queries) CreateWithdrawal(ctx context.Context, arg CreateWithdrawalParams) (Withdrawal, error) {
	row := q.db.QueryRow(ctx, createWithdrawal, arg.BusinessID, arg.Amount, arg.BankInfo)
	var i Withdrawal
	err := row.Scan(
		&i.ID,
		&i.BusinessID,
		&i.Amount,
		&i.BankInfo,
		&i.Status,
		&i.RejectionReason,
		&i.CreatedAt,
		&i.ProcessedAt,
	)
	return i, err
}

const listWithdrawals = `-- name: ListWithdrawals :many
SELECT id, business_id, amount, bank_info, status, rejection_reason, created_at, processed_at FROM withdrawals
WHERE ($1::text = '' OR status::text = $1::text)
ORDER BY created_at DESC
`

func (q *Queries) ListWithdrawals(ctx context.Context, status string) ([]Withdrawal, error) {
	rows, err := q.db.Query(ctx, listWithdrawals, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWithdrawals(rows)
}

const listWithdrawalsByBusiness = `-- name: ListWithdrawalsByBusiness :many
SELECT id, business_id, amount, bank_info, status, rejection_reason, created_at, processed_at FROM withdrawals
WHERE business_id = $1
ORDER BY created_at DESC
`

func (q *Queries) ListWithdrawalsByBusiness(ctx context.Context, businessID uuid.UUID) ([]Withdrawal, error) {
	rows, err := q.db.Query(ctx, listWithdrawalsByBusiness, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWithdrawals(rows)
}

func scanWithdrawals(rows rowScanner) ([]Withdrawal, error) {
	items := []Withdrawal{}
	for rows.Next() {
		var i Withdrawal
		if err := rows.Scan(
			&i.ID,
			&i.BusinessID,
			&i.Amount,
			&i.BankInfo,
			&i.Status,
			&i.RejectionReason,
			&i.CreatedAt,
			&i.ProcessedAt,
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

const rejectWithdrawal = `-- name: RejectWithdrawal :one
UPDATE withdrawals SET status = 'rejected', rejection_reason = $2, processed_at = now()
WHERE id = $1 AND status = 'pending'
RETURNING id, business_id, amount, bank_info, status, rejection_reason, created_at, processed_at
`

type RejectWithdrawalParams struct {
	ID              uuid.UUID   `json:"id"`
	RejectionReason pgtype.Text `json:"rejection_reason"`
}

func (q *Queries) RejectWithdrawal(ctx context.Context, arg RejectWithdrawalParams) (Withdrawal, error) {
	row := q.db.QueryRow(ctx, rejectWithdrawal, arg.ID, arg.RejectionReason)
	var i Withdrawal
	err := row.Scan(
		&i.ID,
		&i.BusinessID,
		&i.Amount,
		&i.BankInfo,
		&i.Status,
		&i.RejectionReason,
		&i.CreatedAt,
		&i.ProcessedAt,
	)
	return i, err
}
