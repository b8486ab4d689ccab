package savings

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pocketledger/pocketledger/internal/ability"
	"github.com/pocketledger/pocketledger/internal/platform/httpx"
	"github.com/pocketledger/pocketledger/internal/platform/validate"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
	guard   ability.Guard
}

func NewHandler(logger *slog.Logger, service *Service, guard ability.Guard) *Handler {
	return &Handler{logger: logger, service: service, guard: guard}
}

// MountRoutes attaches savings routes under /profiles/{profileID}.
// Goals follow the transaction grants: anyone who can write transactions
// can manage savings.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/profiles/{profileID}/savings", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(h.guard.Require(ability.ActionRead, ability.SubjectTransaction))
			r.Get("/", h.list)
			r.Get("/{id}", h.show)
		})
		r.Group(func(r chi.Router) {
			r.Use(h.guard.Require(ability.ActionCreate, ability.SubjectTransaction))
			r.Post("/", h.create)
		})
		r.Group(func(r chi.Router) {
			r.Use(h.guard.Require(ability.ActionUpdate, ability.SubjectTransaction))
			r.Put("/{id}", h.update)
			r.Post("/{id}/deposit", h.deposit)
			r.Post("/{id}/withdraw", h.withdraw)
		})
		r.Group(func(r chi.Router) {
			r.Use(h.guard.Require(ability.ActionDelete, ability.SubjectTransaction))
			r.Delete("/{id}", h.delete)
		})
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	m, _ := ability.MembershipFromContext(r.Context())
	goals, err := h.service.List(r.Context(), m.ProfileID)
	if err != nil {
		h.logger.Error("list savings goals", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, httpx.CodeInternal, "internal error")
		return
	}
	if goals == nil {
		goals = []Goal{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"goals": goals})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	m, _ := ability.MembershipFromContext(r.Context())
	id, ok := h.goalID(w, r)
	if !ok {
		return
	}
	g, err := h.service.Get(r.Context(), m.ProfileID, id)
	if err != nil {
		h.respondErr(w, "get savings goal", err)
		return
	}
	httpx.JSON(w, http.StatusOK, g)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	m, _ := ability.MembershipFromContext(r.Context())
	var req CreateGoalRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeBadRequest, "malformed request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		httpx.ValidationError(w, validate.FieldErrors(err))
		return
	}
	g, err := h.service.Create(r.Context(), m.ProfileID, req)
	if err != nil {
		h.respondErr(w, "create savings goal", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, g)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	m, _ := ability.MembershipFromContext(r.Context())
	id, ok := h.goalID(w, r)
	if !ok {
		return
	}
	var req UpdateGoalRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeBadRequest, "malformed request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		httpx.ValidationError(w, validate.FieldErrors(err))
		return
	}
	g, err := h.service.Update(r.Context(), m.ProfileID, id, req)
	if err != nil {
		h.respondErr(w, "update savings goal", err)
		return
	}
	httpx.JSON(w, http.StatusOK, g)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	m, _ := ability.MembershipFromContext(r.Context())
	id, ok := h.goalID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), m.ProfileID, id); err != nil {
		h.respondErr(w, "delete savings goal", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deposit(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, h.service.Deposit)
}

func (h *Handler) withdraw(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, h.service.Withdraw)
}

func (h *Handler) adjust(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, profileID, id int64, amount string) (*Goal, error)) {
	m, _ := ability.MembershipFromContext(r.Context())
	id, ok := h.goalID(w, r)
	if !ok {
		return
	}
	var req AdjustRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeBadRequest, "malformed request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		httpx.ValidationError(w, validate.FieldErrors(err))
		return
	}
	g, err := fn(r.Context(), m.ProfileID, id, req.Amount)
	if err != nil {
		h.respondErr(w, "adjust savings goal", err)
		return
	}
	httpx.JSON(w, http.StatusOK, g)
}

func (h *Handler) goalID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeBadRequest, "invalid savings goal id")
		return 0, false
	}
	return id, true
}

func (h *Handler) respondErr(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Error(w, http.StatusNotFound, httpx.CodeNotFound, "savings goal not found")
	case errors.Is(err, ErrAlreadyExists):
		httpx.Error(w, http.StatusConflict, httpx.CodeConflict, "savings goal name already used in this profile")
	case errors.Is(err, ErrInvalidAmount):
		httpx.Error(w, http.StatusUnprocessableEntity, httpx.CodeValidation, "amount must be a positive decimal")
	case errors.Is(err, ErrInsufficientFunds):
		httpx.Error(w, http.StatusUnprocessableEntity, httpx.CodeValidation, "withdrawal exceeds current amount")
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, httpx.CodeInternal, "internal error")
	}
}
