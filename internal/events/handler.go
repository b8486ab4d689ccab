package events

import (
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

// MountRoutes attaches event routes under /profiles/{profileID}.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/profiles/{profileID}/events", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(h.guard.Require(ability.ActionRead, ability.SubjectEvent))
			r.Get("/", h.list)
			r.Get("/{id}", h.show)
		})
		r.Group(func(r chi.Router) {
			r.Use(h.guard.Require(ability.ActionCreate, ability.SubjectEvent))
			r.Post("/", h.create)
		})
		r.Group(func(r chi.Router) {
			r.Use(h.guard.Require(ability.ActionUpdate, ability.SubjectEvent))
			r.Put("/{id}", h.update)
		})
		r.Group(func(r chi.Router) {
			r.Use(h.guard.Require(ability.ActionDelete, ability.SubjectEvent))
			r.Delete("/{id}", h.delete)
		})
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	m, _ := ability.MembershipFromContext(r.Context())
	events, err := h.service.ListMonth(r.Context(), m.ProfileID, r.URL.Query().Get("month"))
	if err != nil {
		if errors.Is(err, ErrInvalidMonth) {
			httpx.Error(w, http.StatusBadRequest, httpx.CodeBadRequest, "month must be YYYY-MM")
			return
		}
		h.logger.Error("list events", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, httpx.CodeInternal, "internal error")
		return
	}
	if events == nil {
		events = []Event{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"events": events})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	m, _ := ability.MembershipFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeBadRequest, "invalid event id")
		return
	}
	e, err := h.service.Get(r.Context(), m.ProfileID, id)
	if err != nil {
		h.respondErr(w, "get event", err)
		return
	}
	httpx.JSON(w, http.StatusOK, e)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	m, _ := ability.MembershipFromContext(r.Context())
	var req CreateEventRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeBadRequest, "malformed request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		httpx.ValidationError(w, validate.FieldErrors(err))
		return
	}
	e, err := h.service.Create(r.Context(), m.ProfileID, m.AccountID, req)
	if err != nil {
		h.respondErr(w, "create event", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, e)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	m, _ := ability.MembershipFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeBadRequest, "invalid event id")
		return
	}
	var req UpdateEventRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeBadRequest, "malformed request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		httpx.ValidationError(w, validate.FieldErrors(err))
		return
	}
	e, err := h.service.Update(r.Context(), m.ProfileID, id, req)
	if err != nil {
		h.respondErr(w, "update event", err)
		return
	}
	httpx.JSON(w, http.StatusOK, e)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	m, _ := ability.MembershipFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeBadRequest, "invalid event id")
		return
	}
	if err := h.service.Delete(r.Context(), m.ProfileID, id); err != nil {
		h.respondErr(w, "delete event", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondErr(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Error(w, http.StatusNotFound, httpx.CodeNotFound, "event not found")
	case errors.Is(err, ErrInvalidTime):
		httpx.Error(w, http.StatusUnprocessableEntity, httpx.CodeValidation, "timestamp must be RFC 3339")
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, httpx.CodeInternal, "internal error")
	}
}
