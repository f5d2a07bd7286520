package masterdata

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/rudraroyaltypython/inventory-sys/internal/masterdata/categories"
	"github.com/rudraroyaltypython/inventory-sys/internal/masterdata/customers"
	"github.com/rudraroyaltypython/inventory-sys/internal/masterdata/products"
	"github.com/rudraroyaltypython/inventory-sys/internal/masterdata/suppliers"
	"github.com/rudraroyaltypython/inventory-sys/internal/platform/db"
)

// Handler mounts the catalog and party endpoints under one router.
type Handler struct {
	Categories *categories.Handler
	Products   *products.Handler
	Suppliers  *suppliers.Handler
	Customers  *customers.Handler
}

// Services exposes the master data services for use by other modules.
type Services struct {
	Categories *categories.Service
	Products   *products.Service
	Suppliers  *suppliers.Service
	Customers  *customers.Service
}

// New wires repositories, services and handlers over a shared connection.
func New(conn db.DBTX, logger *slog.Logger) (*Handler, Services) {
	svc := Services{
		Categories: categories.NewService(categories.NewRepository(conn)),
		Products:   products.NewService(products.NewRepository(conn)),
		Suppliers:  suppliers.NewService(suppliers.NewRepository(conn)),
		Customers:  customers.NewService(customers.NewRepository(conn)),
	}
	h := &Handler{
		Categories: categories.NewHandler(logger, svc.Categories),
		Products:   products.NewHandler(logger, svc.Products),
		Suppliers:  suppliers.NewHandler(logger, svc.Suppliers),
		Customers:  customers.NewHandler(logger, svc.Customers),
	}
	return h, svc
}

// MountRoutes registers master data routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/categories", h.Categories.MountRoutes)
	r.Route("/products", h.Products.MountRoutes)
	r.Route("/suppliers", h.Suppliers.MountRoutes)
	r.Route("/customers", h.Customers.MountRoutes)
}
