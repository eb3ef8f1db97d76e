package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rststore/storefront/internal/auth"
	"github.com/rststore/storefront/internal/service"
	"github.com/rststore/storefront/pkg/health"
	"github.com/rststore/storefront/pkg/middleware"
)

// RouterDeps bundles everything the router needs.
type RouterDeps struct {
	Catalog  *service.CatalogService
	Reviews  *service.ReviewService
	Orders   *service.OrderService
	Users    *service.UserService
	Cart     *service.CartService
	Uploads  *UploadHandler
	JWT      *auth.JWTManager
	Health   *health.Handler
	Logger   *slog.Logger
	CORS     middleware.CORSConfig

	// RateLimitRPS of zero turns the public API limiter off.
	RateLimitRPS   int
	RateLimitBurst int

	// PprofCIDRs of empty leaves the /debug/pprof endpoints unregistered.
	PprofCIDRs []string
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.CORS(deps.CORS))
	r.Use(middleware.RequestLogging(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.Tracing("storefront"))
	r.Use(middleware.PrometheusMetrics("storefront"))

	// Operational endpoints
	r.Get("/healthz", deps.Health.LivenessHandler())
	r.Get("/readyz", deps.Health.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})
	if len(deps.PprofCIDRs) > 0 {
		middleware.RegisterPprof(r, deps.PprofCIDRs, deps.Logger)
	}

	requireAuth := middleware.Auth(NewTokenValidator(deps.JWT))
	requireAdmin := middleware.RequireRole(RoleAdmin)

	productHandler := NewProductHandler(deps.Catalog, deps.Logger)
	reviewHandler := NewReviewHandler(deps.Reviews, deps.Users, deps.Logger)
	orderHandler := NewOrderHandler(deps.Orders, deps.Logger)
	userHandler := NewUserHandler(deps.Users, deps.Logger)
	cartHandler := NewCartHandler(deps.Cart, deps.Logger)

	r.Route("/api/v1", func(r chi.Router) {
		if deps.RateLimitRPS > 0 {
			r.Use(middleware.RateLimit(deps.RateLimitRPS, deps.RateLimitBurst, deps.Logger))
		}

		// Catalog (public reads, cacheable)
		r.Group(func(r chi.Router) {
			r.Use(middleware.CacheControl(60))

			r.Get("/products", productHandler.List)
			r.Get("/products/{id}", productHandler.Get)
			r.Get("/products/{id}/reviews", reviewHandler.List)
		})

		// Catalog mutations (admin)
		r.Group(func(r chi.Router) {
			r.Use(ContentTypeJSON, requireAuth, requireAdmin)

			r.Post("/products", productHandler.Create)
			r.Put("/products/{id}", productHandler.Update)
			r.Delete("/products/{id}", productHandler.Delete)
		})

		// Reviews (auth)
		r.Group(func(r chi.Router) {
			r.Use(ContentTypeJSON, requireAuth)

			r.Post("/products/{id}/reviews", reviewHandler.Create)
		})

		// Accounts (public)
		r.Group(func(r chi.Router) {
			r.Use(ContentTypeJSON)

			r.Post("/users", userHandler.Register)
			r.Post("/users/login", userHandler.Login)
		})

		// Accounts (auth)
		r.Group(func(r chi.Router) {
			r.Use(ContentTypeJSON, requireAuth)

			r.Get("/users/me", userHandler.GetProfile)
			r.Put("/users/me", userHandler.UpdateProfile)
		})

		// Accounts (admin)
		r.Group(func(r chi.Router) {
			r.Use(requireAuth, requireAdmin)

			r.Get("/users", userHandler.List)
		})

		// Orders
		r.Group(func(r chi.Router) {
			r.Use(ContentTypeJSON, requireAuth)

			r.Post("/orders", orderHandler.Place)
			r.Get("/orders/mine", orderHandler.ListMine)
			r.Get("/orders/{id}", orderHandler.Get)
			r.Put("/orders/{id}/pay", orderHandler.Pay)
		})
		r.Group(func(r chi.Router) {
			r.Use(requireAuth, requireAdmin)

			r.Get("/orders", orderHandler.ListAll)
			r.Put("/orders/{id}/deliver", orderHandler.Deliver)
		})

		// Cart (auth)
		r.Group(func(r chi.Router) {
			r.Use(ContentTypeJSON, requireAuth)

			r.Get("/cart", cartHandler.Get)
			r.Put("/cart/items/{productId}", cartHandler.SetItem)
			r.Delete("/cart", cartHandler.Clear)
		})

		// Uploads (admin, multipart)
		r.Group(func(r chi.Router) {
			r.Use(requireAuth, requireAdmin)

			r.Post("/uploads", deps.Uploads.Create)
		})
	})

	return r
}
