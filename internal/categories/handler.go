package categories

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

// MountRoutes attaches category routes under /profiles/{profileID}.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/profiles/{profileID}/categories", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(h.guard.Require(ability.ActionRead, ability.SubjectCategory))
			r.Get("/", h.list)
			r.Get("/{id}", h.show)
		})
		r.Group(func(r chi.Router) {
			r.Use(h.guard.Require(ability.ActionCreate, ability.SubjectCategory))
			r.Post("/", h.create)
		})
		r.Group(func(r chi.Router) {
			r.Use(h.guard.Require(ability.ActionUpdate, ability.SubjectCategory))
			r.Put("/{id}", h.update)
		})
		r.Group(func(r chi.Router) {
			r.Use(h.guard.Require(ability.ActionDelete, ability.SubjectCategory))
			r.Delete("/{id}", h.delete)
		})
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	m, _ := ability.MembershipFromContext(r.Context())
	categories, err := h.service.List(r.Context(), m.ProfileID)
	if err != nil {
		h.logger.Error("list categories", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, httpx.CodeInternal, "internal error")
		return
	}
	if categories == nil {
		categories = []Category{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"categories": categories})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	m, _ := ability.MembershipFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeBadRequest, "invalid category id")
		return
	}
	c, err := h.service.Get(r.Context(), m.ProfileID, id)
	if err != nil {
		h.respondErr(w, "get category", err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	m, _ := ability.MembershipFromContext(r.Context())
	var req CreateCategoryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeBadRequest, "malformed request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		httpx.ValidationError(w, validate.FieldErrors(err))
		return
	}
	c, err := h.service.Create(r.Context(), m.ProfileID, req)
	if err != nil {
		h.respondErr(w, "create category", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	m, _ := ability.MembershipFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeBadRequest, "invalid category id")
		return
	}
	var req UpdateCategoryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeBadRequest, "malformed request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		httpx.ValidationError(w, validate.FieldErrors(err))
		return
	}
	c, err := h.service.Update(r.Context(), m.ProfileID, id, req)
	if err != nil {
		h.respondErr(w, "update category", err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	m, _ := ability.MembershipFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeBadRequest, "invalid category id")
		return
	}
	if err := h.service.Delete(r.Context(), m.ProfileID, id); err != nil {
		h.respondErr(w, "delete category", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondErr(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Error(w, http.StatusNotFound, httpx.CodeNotFound, "category not found")
	case errors.Is(err, ErrAlreadyExists):
		httpx.Error(w, http.StatusConflict, httpx.CodeConflict, "category name already used in this profile")
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, httpx.CodeInternal, "internal error")
	}
}
