// Package handler exposes the application over HTTP: session auth, CRUD for
// products, customers, and orders, and the report endpoints.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bizdeskhq/bizdesk/internal/domain/auth"
	"github.com/bizdeskhq/bizdesk/internal/domain/customer"
	"github.com/bizdeskhq/bizdesk/internal/domain/order"
	"github.com/bizdeskhq/bizdesk/internal/domain/product"
	"github.com/bizdeskhq/bizdesk/internal/export"
)

// Handler carries the domain dependencies for all routes.
type Handler struct {
	authSvc   *auth.Service
	products  product.Repository
	customers customer.Repository
	orders    order.Repository
	orderSvc  *order.Service
	snapshots *order.SnapshotCache
	exporter  export.Exporter
	sharer    export.Sharer
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	authSvc *auth.Service,
	products product.Repository,
	customers customer.Repository,
	orders order.Repository,
	orderSvc *order.Service,
	snapshots *order.SnapshotCache,
	exporter export.Exporter,
	sharer export.Sharer,
) *Handler {
	return &Handler{
		authSvc:   authSvc,
		products:  products,
		customers: customers,
		orders:    orders,
		orderSvc:  orderSvc,
		snapshots: snapshots,
		exporter:  exporter,
		sharer:    sharer,
	}
}

// Routes assembles the API router. Everything except login sits behind the
// session middleware.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Post("/login", h.Login)

	r.Group(func(r chi.Router) {
		r.Use(h.RequireSession)

		r.Post("/logout", h.Logout)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.ListProducts)
			r.Post("/", h.CreateProduct)
			r.Get("/{id}", h.GetProduct)
			r.Put("/{id}", h.UpdateProduct)
			r.Delete("/{id}", h.DeleteProduct)
		})

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", h.ListCustomers)
			r.Post("/", h.CreateCustomer)
			r.Put("/{id}", h.UpdateCustomer)
			r.Delete("/{id}", h.DeleteCustomer)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.ListOrders)
			r.Post("/", h.CreateOrder)
			r.Put("/{id}", h.UpdateOrder)
			r.Delete("/{id}", h.DeleteOrder)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/counts", h.ReportCounts)
			r.Post("/export", h.ExportReport)
		})
	})

	return r
}
