package accounting

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rudraroyaltypython/inventory-sys/internal/platform/httpx"
	"github.com/rudraroyaltypython/inventory-sys/internal/shared"
)

// Handler wires ledger endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers HTTP routes for the ledger module.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/accounts", func(r chi.Router) {
		r.Get("/", h.listAccounts)
		r.Post("/", h.createAccount)
		r.Post("/chart", h.loadChart)
		r.Post("/recalc", h.recalcAll)
		r.Get("/{id}", h.getAccount)
		r.Put("/{id}", h.updateAccount)
		r.Delete("/{id}", h.deleteAccount)
		r.Post("/{id}/recalc", h.recalcAccount)
	})
	r.Get("/trial-balance", h.trialBalance)
	r.Route("/entries", func(r chi.Router) {
		r.Post("/", h.postEntry)
		r.Get("/{id}", h.getEntry)
		r.Delete("/{id}", h.deleteEntry)
		r.Post("/{id}/lines", h.addLine)
	})
	r.Put("/lines/{id}", h.updateLine)
	r.Delete("/lines/{id}", h.deleteLine)
}

func (h *Handler) listAccounts(w http.ResponseWriter, r *http.Request) {
	filters := httpx.ListFilters(r)
	accounts, total, err := h.service.ListAccounts(r.Context(), filters)
	if err != nil {
		h.fail(w, "list accounts", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"accounts":   accounts,
		"pagination": shared.NewPagination(filters.Page, filters.Limit, total),
	})
}

func (h *Handler) createAccount(w http.ResponseWriter, r *http.Request) {
	var input AccountInput
	if err := httpx.Bind(r, &input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	account, err := h.service.CreateAccount(r.Context(), input)
	if err != nil {
		h.fail(w, "create account", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, account)
}

func (h *Handler) getAccount(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	account, err := h.service.GetAccount(r.Context(), id)
	if err != nil {
		h.fail(w, "get account", err)
		return
	}
	httpx.JSON(w, http.StatusOK, account)
}

func (h *Handler) updateAccount(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var input AccountInput
	if err := httpx.Bind(r, &input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	account, err := h.service.UpdateAccount(r.Context(), id, input)
	if err != nil {
		h.fail(w, "update account", err)
		return
	}
	httpx.JSON(w, http.StatusOK, account)
}

func (h *Handler) deleteAccount(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.DeleteAccount(r.Context(), id); err != nil {
		h.fail(w, "delete account", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) recalcAccount(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	balance, err := h.service.RecalcAccount(r.Context(), id)
	if err != nil {
		h.fail(w, "recalc account", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"account_id": id, "balance": balance})
}

func (h *Handler) recalcAll(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.RecalcAll(r.Context())
	if err != nil {
		h.fail(w, "recalc all accounts", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int{"accounts": n})
}

func (h *Handler) loadChart(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.LoadChart(r.Context(), http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		h.fail(w, "load chart", err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) trialBalance(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.TrialBalance(r.Context())
	if err != nil {
		h.fail(w, "trial balance", err)
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}

func (h *Handler) postEntry(w http.ResponseWriter, r *http.Request) {
	var input PostEntryInput
	if err := httpx.Bind(r, &input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	entry, err := h.service.PostEntry(r.Context(), input)
	if err != nil {
		h.fail(w, "post entry", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, entry)
}

func (h *Handler) getEntry(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	entry, err := h.service.GetEntry(r.Context(), id)
	if err != nil {
		h.fail(w, "get entry", err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) deleteEntry(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.DeleteEntry(r.Context(), id); err != nil {
		h.fail(w, "delete entry", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) addLine(w http.ResponseWriter, r *http.Request) {
	entryID, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var input LineInput
	if err := httpx.Bind(r, &input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	line, err := h.service.AddLine(r.Context(), entryID, input)
	if err != nil {
		h.fail(w, "add line", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, line)
}

func (h *Handler) updateLine(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var input LineInput
	if err := httpx.Bind(r, &input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	line, err := h.service.UpdateLine(r.Context(), id, input)
	if err != nil {
		h.fail(w, "update line", err)
		return
	}
	httpx.JSON(w, http.StatusOK, line)
}

func (h *Handler) deleteLine(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.DeleteLine(r.Context(), id); err != nil {
		h.fail(w, "delete line", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	h.logger.Warn(op+" failed", slog.Any("error", err))
	httpx.RespondError(w, err)
}
