package inventory

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/rudraroyaltypython/inventory-sys/internal/platform/httpx"
	"github.com/rudraroyaltypython/inventory-sys/internal/shared"
)

// Handler serves catalog import and export.
type Handler struct {
	logger   *slog.Logger
	service  *CatalogService
	maxBytes int64
}

// NewHandler builds the inventory handler.
func NewHandler(logger *slog.Logger, service *CatalogService, maxBytes int64) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	return &Handler{logger: logger, service: service, maxBytes: maxBytes}
}

// MountRoutes registers inventory routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/import", h.handleImport)
	r.Get("/export", h.handleExport)
}

func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	body, closeFn, err := h.payload(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpx.Problem(w, http.StatusRequestEntityTooLarge, "Payload Too Large", err.Error())
			return
		}
		httpx.RespondError(w, shared.Invalid("%v", err))
		return
	}
	defer closeFn()

	result, err := h.service.Import(r.Context(), body)
	if err != nil {
		h.logger.Warn("catalog import failed", slog.Any("error", err))
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpx.Problem(w, http.StatusRequestEntityTooLarge, "Payload Too Large", err.Error())
			return
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

// payload accepts a multipart upload in field "file" or a raw csv body.
func (h *Handler) payload(r *http.Request) (io.Reader, func(), error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(h.maxBytes); err != nil {
			return nil, nil, err
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, nil, err
		}
		return file, func() { _ = file.Close() }, nil
	}
	return r.Body, func() {}, nil
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="products.csv"`)
	if err := h.service.Export(r.Context(), w); err != nil {
		h.logger.Error("catalog export failed", slog.Any("error", err))
		w.Header().Del("Content-Disposition")
		httpx.RespondError(w, err)
	}
}
