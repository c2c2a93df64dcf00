package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/pedinu/api/internal/cart"
	"github.com/pedinu/api/internal/checkout"
	"github.com/pedinu/api/internal/config"
	"github.com/pedinu/api/internal/database"
	"github.com/pedinu/api/internal/kitchen"
	"github.com/pedinu/api/internal/logger"
	mw "github.com/pedinu/api/internal/middleware"
	"github.com/pedinu/api/internal/outbox"
	"github.com/pedinu/api/internal/payment"
	"github.com/pedinu/api/internal/router"
	"github.com/pedinu/api/internal/service"
	"github.com/pedinu/api/internal/views"
	"github.com/pedinu/api/internal/ws"
	"github.com/pedinu/api/internal/zone"
)

const (
	shutdownTimeout = 10 * time.Second
	limiterCleanup  = time.Minute
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using system environment")
	}

	cfg := config.Load()
	lg := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Component:   "api",
		Environment: cfg.Environment,
	})
	slog.SetDefault(lg)

	if err := run(cfg, lg); err != nil {
		lg.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, lg *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		return err
	}
	queries := database.New(pool)

	var (
		carts   cart.Store
		counter views.Counter
		guard   checkout.Guard
	)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return err
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return err
		}
		carts = cart.NewRedisStore(rdb, cart.DefaultTTL)
		counter = views.NewRedisCounter(rdb)
		guard = checkout.NewRedisGuard(rdb, checkout.DefaultLockTTL)
		lg.Info("using redis for carts, view counts and checkout locks")
	} else {
		carts = cart.NewMemoryStore(cart.DefaultTTL)
		counter = views.NewMemoryCounter()
		guard = checkout.NewMemoryGuard(checkout.DefaultLockTTL)
		lg.Warn("REDIS_URL not set; carts and view counts live in process memory")
	}

	hub := ws.NewHub()
	orders := service.NewOrderService(pool,
		func(db database.DBTX) service.OrderStore { return database.New(db) },
		hub,
	)
	gateway := payment.NewClient(cfg.MercadoPagoBaseURL, cfg.MercadoPagoPlatformToken,
		cfg.MercadoPagoNotificationURL, cfg.AppURL, queries)
	orchestrator := checkout.New(queries, carts, orders, gateway, guard,
		zone.ParseMode(cfg.ZoneMatch), logger.WithComponent(lg, "checkout"))
	limiter := mw.NewRateLimiter(cfg.PublicRate, cfg.PublicBurst)

	r := router.New(cfg, router.Deps{
		Queries:  queries,
		Pool:     pool,
		Hub:      hub,
		Orders:   orders,
		Checkout: orchestrator,
		Payments: gateway,
		Carts:    carts,
		Views:    counter,
		Limiter:  limiter,
		Logger:   logger.WithComponent(lg, "http"),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	worker := outbox.NewWorker(pool, queries,
		func(db database.DBTX) outbox.Store { return database.New(db) },
		logger.WithComponent(lg, "outbox"),
	)
	worker.Interval = cfg.OutboxInterval

	flusher := views.NewFlusher(counter, queries, logger.WithComponent(lg, "views"))
	flusher.Interval = cfg.ViewFlushInterval

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		lg.Info("server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		lg.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error { return hub.Run(gctx) })
	g.Go(func() error { return worker.Run(gctx) })
	g.Go(func() error { return flusher.Run(gctx) })
	g.Go(func() error {
		ticker := time.NewTicker(limiterCleanup)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				limiter.Cleanup()
			}
		}
	})

	if cfg.KitchenSimulateSlug != "" {
		owner, err := queries.GetUserBySlug(ctx, cfg.KitchenSimulateSlug)
		if err != nil {
			lg.Error("kitchen simulator disabled: business not found", "slug", cfg.KitchenSimulateSlug, "error", err)
		} else {
			sim := kitchen.NewSimulator(owner.ID, orders, queries, logger.WithComponent(lg, "simulator"))
			g.Go(func() error { return sim.Run(gctx) })
			lg.Info("kitchen simulator enabled", "slug", cfg.KitchenSimulateSlug)
		}
	}

	return g.Wait()
}
