package transactions

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pocketledger/pocketledger/internal/ability"
	"github.com/pocketledger/pocketledger/internal/parser"
	"github.com/pocketledger/pocketledger/internal/platform/httpx"
	"github.com/pocketledger/pocketledger/internal/platform/validate"
	"github.com/pocketledger/pocketledger/internal/shared"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
	guard   ability.Guard
}

func NewHandler(logger *slog.Logger, service *Service, guard ability.Guard) *Handler {
	return &Handler{logger: logger, service: service, guard: guard}
}

// MountRoutes attaches transaction routes under /profiles/{profileID}.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/profiles/{profileID}/transactions", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(h.guard.Require(ability.ActionRead, ability.SubjectTransaction))
			r.Get("/", h.list)
			r.Get("/{id}", h.show)
		})
		r.Group(func(r chi.Router) {
			r.Use(h.guard.Require(ability.ActionCreate, ability.SubjectTransaction))
			r.Post("/", h.create)
			r.Post("/parse", h.parse)
		})
		r.Group(func(r chi.Router) {
			r.Use(h.guard.Require(ability.ActionUpdate, ability.SubjectTransaction))
			r.Put("/{id}", h.update)
		})
		r.Group(func(r chi.Router) {
			r.Use(h.guard.Require(ability.ActionDelete, ability.SubjectTransaction))
			r.Delete("/{id}", h.delete)
		})
	})
}

type listResponse struct {
	Transactions []Transaction     `json:"transactions"`
	Pagination   shared.Pagination `json:"pagination"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	m, _ := ability.MembershipFromContext(r.Context())
	page, limit := shared.PageParams(r)

	filters := ListFilters{
		Type:  r.URL.Query().Get("type"),
		From:  r.URL.Query().Get("from"),
		To:    r.URL.Query().Get("to"),
		Page:  page,
		Limit: limit,
	}
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.Error(w, http.StatusBadRequest, httpx.CodeBadRequest, "invalid category_id")
			return
		}
		filters.CategoryID = &id
	}

	transactions, total, err := h.service.List(r.Context(), m.ProfileID, filters)
	if err != nil {
		h.logger.Error("list transactions", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, httpx.CodeInternal, "internal error")
		return
	}
	if transactions == nil {
		transactions = []Transaction{}
	}
	httpx.JSON(w, http.StatusOK, listResponse{
		Transactions: transactions,
		Pagination:   shared.NewPagination(page, limit, total),
	})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	m, _ := ability.MembershipFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeBadRequest, "invalid transaction id")
		return
	}
	tx, err := h.service.Get(r.Context(), m.ProfileID, id)
	if err != nil {
		h.respondErr(w, "get transaction", err)
		return
	}
	httpx.JSON(w, http.StatusOK, tx)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	m, _ := ability.MembershipFromContext(r.Context())
	var req CreateTransactionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeBadRequest, "malformed request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		httpx.ValidationError(w, validate.FieldErrors(err))
		return
	}
	tx, err := h.service.Create(r.Context(), m.ProfileID, m.AccountID, req)
	if err != nil {
		h.respondErr(w, "create transaction", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, tx)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	m, _ := ability.MembershipFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeBadRequest, "invalid transaction id")
		return
	}
	var req UpdateTransactionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeBadRequest, "malformed request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		httpx.ValidationError(w, validate.FieldErrors(err))
		return
	}
	tx, err := h.service.Update(r.Context(), m.ProfileID, id, req)
	if err != nil {
		h.respondErr(w, "update transaction", err)
		return
	}
	httpx.JSON(w, http.StatusOK, tx)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	m, _ := ability.MembershipFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeBadRequest, "invalid transaction id")
		return
	}
	if err := h.service.Delete(r.Context(), m.ProfileID, id); err != nil {
		h.respondErr(w, "delete transaction", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) parse(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeBadRequest, "malformed request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		httpx.ValidationError(w, validate.FieldErrors(err))
		return
	}
	parsed, err := h.service.Parse(r.Context(), req.Text)
	if err != nil {
		if errors.Is(err, parser.ErrInvalidResponse) {
			httpx.Error(w, http.StatusBadRequest, httpx.CodeBadRequest, "text could not be parsed into transactions")
			return
		}
		h.logger.Error("parse transactions", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, httpx.CodeInternal, "internal error")
		return
	}
	if parsed == nil {
		parsed = []parser.ParsedTransaction{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"transactions": parsed})
}

func (h *Handler) respondErr(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Error(w, http.StatusNotFound, httpx.CodeNotFound, "transaction not found")
	case errors.Is(err, ErrUnknownCategory):
		httpx.Error(w, http.StatusBadRequest, httpx.CodeBadRequest, "category does not exist")
	case errors.Is(err, ErrInvalidAmount):
		httpx.Error(w, http.StatusUnprocessableEntity, httpx.CodeValidation, "amount must be a positive decimal")
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, httpx.CodeInternal, "internal error")
	}
}
