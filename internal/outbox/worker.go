package outbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pedinu/api/internal/database"
)

const (
	DefaultInterval    = 5 * time.Second
	DefaultBatchSize   = 50
	DefaultMaxAttempts = 10
	inTickRetries      = 2
)

// errSkip marks an intent that another worker holds or already finished.
var errSkip = errors.New("intent locked or already processed")

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store is satisfied by *database.Queries; narrow interface for testability.
type Store interface {
	ListPendingIntents(ctx context.Context, arg database.ListPendingIntentsParams) ([]database.OrderIntent, error)
	LockOrderIntent(ctx context.Context, id uuid.UUID) (database.OrderIntent, error)
	UpsertCustomerForOrder(ctx context.Context, arg database.UpsertCustomerForOrderParams) (database.Customer, error)
	CreateCustomerOrder(ctx context.Context, arg database.CreateCustomerOrderParams) (database.CustomerOrder, error)
	MarkIntentProcessed(ctx context.Context, id uuid.UUID) error
	RecordIntentFailure(ctx context.Context, arg database.RecordIntentFailureParams) (int32, error)
}

// NewStore creates a Store from a DBTX (pool or tx).
type NewStore func(db database.DBTX) Store

type Worker struct {
	pool     TxBeginner
	store    Store
	newStore NewStore
	logger   *slog.Logger

	Interval    time.Duration
	BatchSize   int32
	MaxAttempts int32

	newBackOff func() backoff.BackOff
}

// NewWorker uses store outside transactions (listing, failure counts) and
// newStore inside the per-intent transaction.
func NewWorker(pool TxBeginner, store Store, newStore NewStore, logger *slog.Logger) *Worker {
	return &Worker{
		pool:        pool,
		store:       store,
		newStore:    newStore,
		logger:      logger,
		Interval:    DefaultInterval,
		BatchSize:   DefaultBatchSize,
		MaxAttempts: DefaultMaxAttempts,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 100 * time.Millisecond
			b.MaxElapsedTime = 2 * time.Second
			return b
		},
	}
}

// Run processes a batch every Interval until ctx is done.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	w.logger.Info("outbox worker started", "interval", w.Interval)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := w.ProcessBatch(ctx); err != nil && ctx.Err() == nil {
				w.logger.Error("outbox batch failed", "error", err)
			}
		}
	}
}

// ProcessBatch handles up to BatchSize pending intents and returns how many
// were applied.
func (w *Worker) ProcessBatch(ctx context.Context) (int, error) {
	intents, err := w.store.ListPendingIntents(ctx, database.ListPendingIntentsParams{
		Attempts: w.MaxAttempts,
		Limit:    w.BatchSize,
	})
	if err != nil {
		return 0, fmt.Errorf("list pending intents: %w", err)
	}

	processed := 0
	for _, intent := range intents {
		b := backoff.WithContext(backoff.WithMaxRetries(w.newBackOff(), inTickRetries), ctx)
		err := backoff.Retry(func() error { return w.apply(ctx, intent.ID) }, b)
		switch {
		case err == nil:
			processed++
		case errors.Is(err, errSkip):
		default:
			w.recordFailure(ctx, intent, err)
		}
	}
	return processed, nil
}

// apply runs the customer upsert, the customer order insert and the
// processed mark in one transaction, so the customer's counters always
// equal the sum of their orders.
func (w *Worker) apply(ctx context.Context, intentID uuid.UUID) error {
	tx, err := w.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := w.newStore(tx)

	intent, err := store.LockOrderIntent(ctx, intentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return backoff.Permanent(errSkip)
		}
		return fmt.Errorf("lock intent: %w", err)
	}

	p, err := DecodePayload(intent.Payload)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("decode payload: %w", err))
	}

	customer, err := store.UpsertCustomerForOrder(ctx, database.UpsertCustomerForOrderParams{
		BusinessID:    intent.BusinessID,
		Name:          p.CustomerName,
		Phone:         p.CustomerPhone,
		Neighborhood:  database.Text(p.Neighborhood),
		Address:       database.Text(p.Address),
		TotalSpent:    database.ToNumeric(p.Total),
		LastOrderDate: pgtype.Timestamptz{Time: p.OrderDate, Valid: true},
	})
	if err != nil {
		return fmt.Errorf("upsert customer: %w", err)
	}

	items := []byte(p.Items)
	if len(items) == 0 {
		items = []byte("[]")
	}

	if _, err := store.CreateCustomerOrder(ctx, database.CreateCustomerOrderParams{
		BusinessID:    intent.BusinessID,
		CustomerID:    customer.ID,
		IntentID:      database.UUID(intent.ID),
		CustomerName:  p.CustomerName,
		CustomerPhone: p.CustomerPhone,
		Neighborhood:  database.Text(p.Neighborhood),
		Address:       database.Text(p.Address),
		Items:         items,
		Subtotal:      database.ToNumeric(p.Subtotal),
		DeliveryFee:   database.ToNumeric(p.DeliveryFee),
		Total:         database.ToNumeric(p.Total),
		PaymentMethod: p.PaymentMethod,
		Notes:         database.Text(p.Notes),
		OrderDate:     p.OrderDate,
	}); err != nil {
		return fmt.Errorf("create customer order: %w", err)
	}

	if err := store.MarkIntentProcessed(ctx, intent.ID); err != nil {
		return fmt.Errorf("mark processed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (w *Worker) recordFailure(ctx context.Context, intent database.OrderIntent, cause error) {
	attempts, err := w.store.RecordIntentFailure(ctx, database.RecordIntentFailureParams{
		ID:        intent.ID,
		LastError: database.Text(cause.Error()),
	})
	if err != nil {
		w.logger.Error("record intent failure",
			"intent_id", intent.ID, "business_id", intent.BusinessID, "cause", cause, "error", err)
		return
	}

	if attempts >= w.MaxAttempts {
		w.logger.Error("customer stats intent abandoned",
			"intent_id", intent.ID, "business_id", intent.BusinessID, "attempt", attempts, "error", cause)
		return
	}
	w.logger.Warn("customer stats intent failed",
		"intent_id", intent.ID, "business_id", intent.BusinessID, "attempt", attempts, "error", cause)
}
