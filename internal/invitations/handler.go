package invitations

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pocketledger/pocketledger/internal/ability"
	"github.com/pocketledger/pocketledger/internal/platform/httpx"
	"github.com/pocketledger/pocketledger/internal/platform/validate"
	"github.com/pocketledger/pocketledger/internal/shared"
)

// EmailLookup resolves an account's email for the inbox listing.
type EmailLookup interface {
	EmailByID(ctx context.Context, accountID int64) (string, error)
}

type Handler struct {
	logger  *slog.Logger
	service *Service
	emails  EmailLookup
	guard   ability.Guard
}

func NewHandler(logger *slog.Logger, service *Service, emails EmailLookup, guard ability.Guard) *Handler {
	return &Handler{logger: logger, service: service, emails: emails, guard: guard}
}

// MountRoutes attaches invitation routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(ability.ActionInvite, ability.SubjectProfile))
		r.Post("/profiles/{profileID}/invitations", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(ability.ActionRead, ability.SubjectProfileMember))
		r.Get("/profiles/{profileID}/invitations", h.listByProfile)
	})

	r.Get("/invitations", h.inbox)
	r.Post("/invitations/{token}/accept", h.accept)
	r.Post("/invitations/{token}/reject", h.reject)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	m, ok := ability.MembershipFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusForbidden, httpx.CodeForbidden, "missing permission")
		return
	}
	var req CreateInvitationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeBadRequest, "malformed request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		httpx.ValidationError(w, validate.FieldErrors(err))
		return
	}
	inv, err := h.service.Invite(r.Context(), m.ProfileID, m.AccountID, req)
	if err != nil {
		h.logger.Error("create invitation", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, httpx.CodeInternal, "internal error")
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

func (h *Handler) listByProfile(w http.ResponseWriter, r *http.Request) {
	m, ok := ability.MembershipFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusForbidden, httpx.CodeForbidden, "missing permission")
		return
	}
	invitations, err := h.service.ListByProfile(r.Context(), m.ProfileID)
	if err != nil {
		h.logger.Error("list invitations", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, httpx.CodeInternal, "internal error")
		return
	}
	httpx.JSON(w, http.StatusOK, invitations)
}

func (h *Handler) inbox(w http.ResponseWriter, r *http.Request) {
	accountID, ok := shared.AccountIDFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, httpx.CodeUnauthorized, "authentication required")
		return
	}
	email, err := h.emails.EmailByID(r.Context(), accountID)
	if err != nil {
		h.logger.Error("lookup email", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, httpx.CodeInternal, "internal error")
		return
	}
	invitations, err := h.service.ListPendingForEmail(r.Context(), email)
	if err != nil {
		h.logger.Error("list inbox", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, httpx.CodeInternal, "internal error")
		return
	}
	httpx.JSON(w, http.StatusOK, invitations)
}

func (h *Handler) accept(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.service.Accept)
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.service.Reject)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, fn func(context.Context, string, int64) (*Invitation, error)) {
	accountID, ok := shared.AccountIDFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, httpx.CodeUnauthorized, "authentication required")
		return
	}
	token := chi.URLParam(r, "token")
	inv, err := fn(r.Context(), token, accountID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			httpx.Error(w, http.StatusNotFound, httpx.CodeNotFound, "invitation not found")
		case errors.Is(err, ErrAlreadyDecided):
			httpx.Error(w, http.StatusConflict, httpx.CodeConflict, "invitation already decided")
		case errors.Is(err, ErrAlreadyMember):
			httpx.Error(w, http.StatusConflict, httpx.CodeConflict, "account is already a member")
		case errors.Is(err, ErrEmailMismatch):
			httpx.Error(w, http.StatusForbidden, httpx.CodeForbidden, "invitation addressed to a different email")
		default:
			h.logger.Error("decide invitation", slog.Any("error", err))
			httpx.Error(w, http.StatusInternalServerError, httpx.CodeInternal, "internal error")
		}
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}
