package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pedinu/api/internal/cart"
	"github.com/pedinu/api/internal/config"
	"github.com/pedinu/api/internal/database"
	"github.com/pedinu/api/internal/enum"
	"github.com/pedinu/api/internal/handler"
	mw "github.com/pedinu/api/internal/middleware"
	"github.com/pedinu/api/internal/service"
	"github.com/pedinu/api/internal/storage"
	"github.com/pedinu/api/internal/views"
	"github.com/pedinu/api/internal/ws"
)

// Deps carries the long-lived services built in cmd/server.
type Deps struct {
	Queries  *database.Queries
	Pool     *pgxpool.Pool
	Hub      *ws.Hub
	Orders   *service.OrderService
	Checkout handler.CheckoutService
	Payments handler.PaymentGateway
	Carts    cart.Store
	Views    views.Counter
	Limiter  *mw.RateLimiter
	Logger   *slog.Logger
}

// New creates a Chi router with all application routes wired up.
// Owner routes are scoped to the business in the token; admin routes
// require the ADMIN role.
func New(cfg *config.Config, d Deps) chi.Router {
	r := chi.NewRouter()
	queries := d.Queries

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.RequestLogger(d.Logger))
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.AppURL, "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck
	})

	// Uploaded images
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))

	r.Route("/api", func(r chi.Router) {
		authHandler := handler.NewAuthHandler(queries, d.Pool,
			func(db database.DBTX) handler.RegisterStore { return database.New(db) },
			cfg.JWTSecret,
		)
		authHandler.RegisterRoutes(r)

		// WebSocket route (handles auth internally via query param)
		r.Get("/ws/kitchen", func(w http.ResponseWriter, r *http.Request) {
			ws.ServeWS(d.Hub, cfg.JWTSecret, w, r)
		})

		paymentHandler := handler.NewPaymentHandler(queries, d.Payments)
		r.Route("/webhooks", paymentHandler.RegisterWebhook)

		// Storefront
		catalogHandler := handler.NewCatalogHandler(queries, d.Carts, d.Views, d.Checkout)
		r.Route("/public/{slug}", func(r chi.Router) {
			if d.Limiter != nil {
				r.Use(d.Limiter.Limit)
			}
			catalogHandler.RegisterRoutes(r)
		})

		// Business owner routes
		r.Group(func(r chi.Router) {
			r.Use(mw.Authenticate(cfg.JWTSecret))
			r.Use(mw.RequireBusiness)

			r.Route("/settings", handler.NewSettingsHandler(queries).RegisterRoutes)

			categoryHandler := handler.NewCategoryHandler(queries, d.Pool,
				func(db database.DBTX) handler.CategoryStore { return database.New(db) },
			)
			r.Route("/categories", categoryHandler.RegisterRoutes)

			productHandler := handler.NewProductHandler(queries, d.Pool,
				func(db database.DBTX) handler.ProductStore { return database.New(db) },
			)
			r.Route("/products", productHandler.RegisterRoutes)

			r.Route("/zones", handler.NewZoneHandler(queries).RegisterRoutes)
			r.Route("/kitchen/orders", handler.NewOrderHandler(d.Orders, queries).RegisterRoutes)
			r.Route("/customers", handler.NewCustomerHandler(queries).RegisterRoutes)
			r.Route("/payments", paymentHandler.RegisterRoutes)
			r.Route("/withdrawals", handler.NewWithdrawalHandler(queries).RegisterRoutes)
			r.Route("/uploads", handler.NewUploadHandler(storage.NewUploader(cfg.UploadDir)).RegisterRoutes)
			r.Route("/catalog-link", handler.NewCatalogLinkHandler(queries, cfg.AppURL).RegisterRoutes)
		})

		// Platform admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Use(mw.Authenticate(cfg.JWTSecret))
			r.Use(mw.RequireRole(enum.UserRoleAdmin))

			r.Route("/users", handler.NewUserHandler(queries).RegisterRoutes)
			r.Route("/withdrawals", handler.NewWithdrawalHandler(queries).RegisterAdminRoutes)
			r.Route("/dashboard", handler.NewReportsHandler(queries).RegisterRoutes)
		})
	})

	d.Logger.Info("router initialized")
	return r
}
