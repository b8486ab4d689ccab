package profiles

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pocketledger/pocketledger/internal/ability"
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

// MountRoutes attaches profile and membership routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/profiles", h.list)
	r.Post("/profiles", h.create)

	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(ability.ActionRead, ability.SubjectProfile))
		r.Get("/profiles/{profileID}", h.show)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(ability.ActionUpdate, ability.SubjectProfile))
		r.Put("/profiles/{profileID}", h.update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(ability.ActionDelete, ability.SubjectProfile))
		r.Delete("/profiles/{profileID}", h.delete)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(ability.ActionRead, ability.SubjectProfileMember))
		r.Get("/profiles/{profileID}/members", h.listMembers)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(ability.ActionManage, ability.SubjectProfileMember))
		r.Put("/profiles/{profileID}/members/{accountID}", h.updateMember)
		r.Delete("/profiles/{profileID}/members/{accountID}", h.removeMember)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	accountID, ok := shared.AccountIDFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, httpx.CodeUnauthorized, "authentication required")
		return
	}
	profiles, err := h.service.List(r.Context(), accountID)
	if err != nil {
		h.logger.Error("list profiles", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, httpx.CodeInternal, "internal error")
		return
	}
	httpx.JSON(w, http.StatusOK, profiles)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	accountID, ok := shared.AccountIDFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, httpx.CodeUnauthorized, "authentication required")
		return
	}
	var req CreateProfileRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeBadRequest, "malformed request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		httpx.ValidationError(w, validate.FieldErrors(err))
		return
	}
	profile, err := h.service.Create(r.Context(), req, accountID)
	if err != nil {
		h.logger.Error("create profile", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, httpx.CodeInternal, "internal error")
		return
	}
	httpx.JSON(w, http.StatusCreated, profile)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.Get(r.Context(), profileID(r))
	if err != nil {
		h.respondErr(w, "get profile", err)
		return
	}
	httpx.JSON(w, http.StatusOK, profile)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeBadRequest, "malformed request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		httpx.ValidationError(w, validate.FieldErrors(err))
		return
	}
	profile, err := h.service.Update(r.Context(), profileID(r), req)
	if err != nil {
		h.respondErr(w, "update profile", err)
		return
	}
	httpx.JSON(w, http.StatusOK, profile)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), profileID(r)); err != nil {
		h.respondErr(w, "delete profile", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.service.ListMembers(r.Context(), profileID(r))
	if err != nil {
		h.respondErr(w, "list members", err)
		return
	}
	httpx.JSON(w, http.StatusOK, members)
}

func (h *Handler) updateMember(w http.ResponseWriter, r *http.Request) {
	accountID, err := strconv.ParseInt(chi.URLParam(r, "accountID"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeBadRequest, "invalid account id")
		return
	}
	var req UpdateMemberRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeBadRequest, "malformed request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		httpx.ValidationError(w, validate.FieldErrors(err))
		return
	}
	if err := h.service.UpdateMember(r.Context(), profileID(r), accountID, req); err != nil {
		h.respondErr(w, "update member", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) removeMember(w http.ResponseWriter, r *http.Request) {
	accountID, err := strconv.ParseInt(chi.URLParam(r, "accountID"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeBadRequest, "invalid account id")
		return
	}
	if err := h.service.RemoveMember(r.Context(), profileID(r), accountID); err != nil {
		h.respondErr(w, "remove member", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondErr(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Error(w, http.StatusNotFound, httpx.CodeNotFound, "profile not found")
	case errors.Is(err, ErrAlreadyMember):
		httpx.Error(w, http.StatusConflict, httpx.CodeConflict, "account is already a member")
	case errors.Is(err, ErrLastAdmin):
		httpx.Error(w, http.StatusConflict, httpx.CodeConflict, "profile must keep at least one admin")
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, httpx.CodeInternal, "internal error")
	}
}

func profileID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(chi.URLParam(r, "profileID"), 10, 64)
	return id
}
