package views

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pedinu/api/internal/database"
)

const DefaultFlushInterval = 30 * time.Second

// Store is satisfied by *database.Queries; narrow interface for testability.
type Store interface {
	IncrementMenuViews(ctx context.Context, arg database.IncrementMenuViewsParams) error
}

type Flusher struct {
	counter  Counter
	store    Store
	logger   *slog.Logger
	Interval time.Duration
}

func NewFlusher(counter Counter, store Store, logger *slog.Logger) *Flusher {
	return &Flusher{counter: counter, store: store, logger: logger, Interval: DefaultFlushInterval}
}

// Run flushes every Interval and once more on shutdown.
func (f *Flusher) Run(ctx context.Context) error {
	ticker := time.NewTicker(f.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			f.Flush(context.WithoutCancel(ctx))
			return nil
		case <-ticker.C:
			f.Flush(ctx)
		}
	}
}

// Flush writes drained counts to the database. Counts that fail to write
// go back into the counter for the next round.
func (f *Flusher) Flush(ctx context.Context) int {
	counts, err := f.counter.Drain(ctx)
	if err != nil {
		f.logger.Error("drain menu views", "error", err)
		return 0
	}

	flushed := 0
	for id, n := range counts {
		err := f.store.IncrementMenuViews(ctx, database.IncrementMenuViewsParams{ID: id, MenuViews: n})
		if err == nil {
			flushed++
			continue
		}
		f.logger.Warn("flush menu views", "business_id", id, "views", n, "error", err)
		f.restore(ctx, id, n)
	}
	return flushed
}

func (f *Flusher) restore(ctx context.Context, id uuid.UUID, n int64) {
	if err := f.counter.Add(ctx, id, n); err != nil {
		f.logger.Error("restore menu views", "business_id", id, "views", n, "error", err)
	}
}
