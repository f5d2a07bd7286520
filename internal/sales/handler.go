package sales

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rudraroyaltypython/inventory-sys/internal/platform/httpx"
	"github.com/rudraroyaltypython/inventory-sys/internal/shared"
)

// Handler exposes sale and invoice endpoints.
type Handler struct {
	logger   *slog.Logger
	sales    *Service
	invoices *InvoiceService
}

// NewHandler builds Handler.
func NewHandler(logger *slog.Logger, sales *Service, invoices *InvoiceService) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, sales: sales, invoices: invoices}
}

// MountRoutes registers sale routes with invoices nested under /invoices.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listSales)
	r.Post("/", h.createSale)
	r.Put("/items/{itemID}", h.updateSaleItem)
	r.Delete("/items/{itemID}", h.deleteSaleItem)
	r.Route("/invoices", func(r chi.Router) {
		r.Get("/", h.listInvoices)
		r.Post("/", h.createInvoice)
		r.Get("/{id}", h.showInvoice)
		r.Put("/{id}", h.updateInvoice)
		r.Delete("/{id}", h.deleteInvoice)
		r.Post("/{id}/payments", h.recordPayment)
		r.Post("/{id}/items", h.addInvoiceItem)
		r.Put("/items/{itemID}", h.updateInvoiceItem)
		r.Delete("/items/{itemID}", h.deleteInvoiceItem)
	})
	r.Get("/{id}", h.showSale)
	r.Put("/{id}", h.updateSale)
	r.Delete("/{id}", h.deleteSale)
	r.Post("/{id}/items", h.addSaleItem)
}

func (h *Handler) listSales(w http.ResponseWriter, r *http.Request) {
	filters := httpx.ListFilters(r)
	items, total, err := h.sales.List(r.Context(), filters)
	if err != nil {
		h.fail(w, "list sales", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"sales":      items,
		"pagination": shared.NewPagination(filters.Page, filters.Limit, total),
	})
}

func (h *Handler) createSale(w http.ResponseWriter, r *http.Request) {
	var in SaleInput
	if err := httpx.Bind(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	sale, err := h.sales.Create(r.Context(), in)
	if err != nil {
		h.fail(w, "create sale", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, sale)
}

func (h *Handler) showSale(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r, "id")
	if !ok {
		return
	}
	sale, err := h.sales.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sale)
}

func (h *Handler) updateSale(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r, "id")
	if !ok {
		return
	}
	var in SaleInput
	if err := httpx.Bind(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	sale, err := h.sales.Update(r.Context(), id, in)
	if err != nil {
		h.fail(w, "update sale", err)
		return
	}
	httpx.JSON(w, http.StatusOK, sale)
}

func (h *Handler) deleteSale(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r, "id")
	if !ok {
		return
	}
	if err := h.sales.Delete(r.Context(), id); err != nil {
		h.fail(w, "delete sale", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) addSaleItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r, "id")
	if !ok {
		return
	}
	var in SaleItemInput
	if err := httpx.Bind(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	item, err := h.sales.AddItem(r.Context(), id, in)
	if err != nil {
		h.fail(w, "add sale item", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, item)
}

func (h *Handler) updateSaleItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r, "itemID")
	if !ok {
		return
	}
	var in SaleItemInput
	if err := httpx.Bind(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	item, err := h.sales.UpdateItem(r.Context(), id, in)
	if err != nil {
		h.fail(w, "update sale item", err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *Handler) deleteSaleItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r, "itemID")
	if !ok {
		return
	}
	if err := h.sales.DeleteItem(r.Context(), id); err != nil {
		h.fail(w, "delete sale item", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	filters := httpx.ListFilters(r)
	items, total, err := h.invoices.List(r.Context(), filters)
	if err != nil {
		h.fail(w, "list invoices", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"invoices":   items,
		"pagination": shared.NewPagination(filters.Page, filters.Limit, total),
	})
}

func (h *Handler) createInvoice(w http.ResponseWriter, r *http.Request) {
	var in InvoiceInput
	if err := httpx.Bind(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	inv, err := h.invoices.Create(r.Context(), in)
	if err != nil {
		h.fail(w, "create invoice", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

func (h *Handler) showInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r, "id")
	if !ok {
		return
	}
	inv, err := h.invoices.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) updateInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r, "id")
	if !ok {
		return
	}
	var in InvoiceInput
	if err := httpx.Bind(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	inv, err := h.invoices.Update(r.Context(), id, in)
	if err != nil {
		h.fail(w, "update invoice", err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) deleteInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r, "id")
	if !ok {
		return
	}
	if err := h.invoices.Delete(r.Context(), id); err != nil {
		h.fail(w, "delete invoice", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) recordPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r, "id")
	if !ok {
		return
	}
	var in PaymentInput
	if err := httpx.Bind(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	inv, err := h.invoices.RecordPayment(r.Context(), id, in)
	if err != nil {
		h.fail(w, "record payment", err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) addInvoiceItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r, "id")
	if !ok {
		return
	}
	var in InvoiceItemInput
	if err := httpx.Bind(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	item, err := h.invoices.AddItem(r.Context(), id, in)
	if err != nil {
		h.fail(w, "add invoice item", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, item)
}

func (h *Handler) updateInvoiceItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r, "itemID")
	if !ok {
		return
	}
	var in InvoiceItemInput
	if err := httpx.Bind(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	item, err := h.invoices.UpdateItem(r.Context(), id, in)
	if err != nil {
		h.fail(w, "update invoice item", err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *Handler) deleteInvoiceItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r, "itemID")
	if !ok {
		return
	}
	if err := h.invoices.DeleteItem(r.Context(), id); err != nil {
		h.fail(w, "delete invoice item", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) id(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := httpx.IDParam(r, name)
	if err != nil {
		httpx.RespondError(w, err)
		return 0, false
	}
	return id, true
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	h.logger.Warn(op+" failed", slog.Any("error", err))
	httpx.RespondError(w, err)
}
