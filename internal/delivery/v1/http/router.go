package http

import (
	"context"
	"net/http"
	"time"

	_ "github.com/DRSN-tech/storefront/docs" // Регистрация спецификации swagger
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

const healthTimeout = 2 * time.Second

// HealthCheck проверяет доступность зависимости для /healthz.
type HealthCheck func(ctx context.Context) error

// Handlers - обработчики, подключаемые роутером.
type Handlers struct {
	Auth    *AuthHandler
	Catalog *CatalogHandler
	Order   *OrderHandler
	Admin   *AdminHandler
}

// NewHandlers собирает обработчики поверх use case'ов.
func NewHandlers(
	catalogUC usecase.CatalogUC,
	orderUC usecase.OrderUC,
	adminUC usecase.AdminUC,
	authUC usecase.AuthUC,
	sessions SessionSubscriber,
	maxImageSize int64,
	logger logger.Logger,
) *Handlers {
	return &Handlers{
		Auth:    NewAuthHandler(authUC, sessions, logger),
		Catalog: NewCatalogHandler(catalogUC, logger),
		Order:   NewOrderHandler(orderUC, logger),
		Admin:   NewAdminHandler(adminUC, maxImageSize, logger),
	}
}

type Router struct {
	router   *chi.Mux
	registry *prometheus.Registry
	logger   logger.Logger
}

func NewRouter(router *chi.Mux, registry *prometheus.Registry, logger logger.Logger) *Router {
	return &Router{router: router, registry: registry, logger: logger}
}

func (r *Router) Init(h *Handlers, checks map[string]HealthCheck) {
	metrics := NewMetrics(r.registry)

	r.router.Use(middleware.RequestID)
	r.router.Use(middleware.Recoverer)
	r.router.Use(accessLog(r.logger))
	r.router.Use(metrics.Middleware)

	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	r.router.Handle("/metrics", promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{}))
	r.router.Get("/healthz", healthz(checks, r.logger))

	r.router.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(bearerToken)

		registerAuthRoutes(v1, h.Auth)
		registerCatalogRoutes(v1, h.Catalog)
		registerOrderRoutes(v1, h.Order)
		registerAdminRoutes(v1, h.Admin)
	})
}

func registerAuthRoutes(router chi.Router, h *AuthHandler) {
	router.Route("/auth", func(a chi.Router) {
		a.Post("/signup", h.signUp)
		a.Post("/signin", h.signIn)
		a.Post("/signout", h.signOut)
		a.Get("/session", h.currentSession)
		a.Get("/events", h.events)
	})
}

func registerCatalogRoutes(router chi.Router, h *CatalogHandler) {
	router.Route("/products", func(pr chi.Router) {
		pr.Get("/", h.listProducts)
		pr.Get("/featured", h.listFeatured)
		pr.Get("/{id}", h.getProduct)
	})
	router.Get("/categories", h.listCategories)
}

func registerOrderRoutes(router chi.Router, h *OrderHandler) {
	router.Route("/orders", func(o chi.Router) {
		o.Post("/", h.placeOrder)
		o.Get("/", h.listOrders)
	})
	router.Get("/profile", h.myProfile)
}

func registerAdminRoutes(router chi.Router, h *AdminHandler) {
	router.Route("/admin", func(a chi.Router) {
		a.Get("/stats", h.stats)

		a.Post("/categories", h.createCategory)
		a.Put("/categories/{id}", h.updateCategory)
		a.Delete("/categories/{id}", h.deleteCategory)

		a.Post("/products", h.createProduct)
		a.Put("/products/{id}", h.updateProduct)
		a.Delete("/products/{id}", h.deleteProduct)
		a.Post("/products/{id}/image", h.uploadImage)
	})
}

// healthz отвечает 200, если все зависимости доступны, и 503 со списком недоступных.
func healthz(checks map[string]HealthCheck, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		failed := make(map[string]string)
		for name, check := range checks {
			if err := check(ctx); err != nil {
				log.Warnf("health check %s failed: %s", name, err.Error())
				failed[name] = err.Error()
			}
		}

		if len(failed) > 0 {
			WriteSuccess(w, http.StatusServiceUnavailable, map[string]interface{}{"status": "unavailable", "failed": failed})
			return
		}

		WriteSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
