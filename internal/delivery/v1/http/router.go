package http

import (
	"net/http"
	"time"

	_ "github.com/brasil-hosp/go-backend/docs" // Импорт сгенерированных файлов
	"github.com/brasil-hosp/go-backend/internal/usecase"
	"github.com/brasil-hosp/go-backend/pkg/logger"
	"github.com/brasil-hosp/go-backend/pkg/telemetry"
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// Deps — зависимости HTTP-слоя.
type Deps struct {
	CatalogUC     usecase.CatalogUC
	CartUC        usecase.CartUC
	AdminUC       usecase.AdminUC
	AuthUC        usecase.AuthUC
	ContactUC     usecase.ContactUC
	CartCookie    string
	CartTTL       time.Duration
	MaxImportSize int64
	ServiceName   string // если пусто, без трассировки
}

type Router struct {
	router *chi.Mux
	logger logger.Logger
}

func NewRouter(router *chi.Mux, logger logger.Logger) *Router {
	return &Router{router: router, logger: logger}
}

func (r *Router) Init(deps *Deps) {
	if deps.ServiceName != "" {
		r.router.Use(telemetry.Middleware(deps.ServiceName, "/healthz"))
	}

	r.router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"), // ссылка на JSON
	))

	r.router.Route("/api/v1", func(v1 chi.Router) {
		registerCatalogRoutes(v1, NewCatalogHandler(deps.CatalogUC, r.logger))
		registerCartRoutes(v1, NewCartHandler(deps.CartUC, deps.CartCookie, deps.CartTTL, r.logger))
		registerContactRoutes(v1, NewContactHandler(deps.ContactUC, r.logger))

		authHandler := NewAuthHandler(deps.AuthUC, r.logger)
		v1.Post("/auth/login", authHandler.login)

		v1.Group(func(admin chi.Router) {
			admin.Use(authHandler.RequireAdmin)
			registerAdminRoutes(admin, NewAdminHandler(deps.AdminUC, deps.MaxImportSize, r.logger))
		})
	})
}

func registerCatalogRoutes(router chi.Router, h *CatalogHandler) {
	router.Get("/categories", h.categories)
	router.Route("/products", func(pr chi.Router) {
		pr.Get("/", h.searchProducts)
		pr.Get("/subcategories", h.subcategories)
		pr.Get("/{id}", h.product)
		pr.Get("/{id}/quote-link", h.quoteLink)
	})
}

func registerCartRoutes(router chi.Router, h *CartHandler) {
	router.Route("/cart", func(c chi.Router) {
		c.Get("/", h.getCart)
		c.Delete("/", h.clear)
		c.Post("/items", h.addItem)
		c.Delete("/items/{id}", h.removeItem)
		c.Post("/checkout", h.checkout)
	})
}

func registerContactRoutes(router chi.Router, h *ContactHandler) {
	router.Post("/contact", h.submit)
}

func registerAdminRoutes(router chi.Router, h *AdminHandler) {
	router.Get("/admin/stats", h.stats)
	router.Route("/admin/products", func(pr chi.Router) {
		pr.Get("/", h.listProducts)
		pr.Post("/", h.createProduct)
		pr.Post("/import", h.importProducts)
		pr.Put("/{id}", h.updateProduct)
		pr.Delete("/{id}", h.deleteProduct)
	})
}
