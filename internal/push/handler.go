package push

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pocketledger/pocketledger/internal/platform/httpx"
	"github.com/pocketledger/pocketledger/internal/platform/validate"
	"github.com/pocketledger/pocketledger/internal/shared"
)

type Handler struct {
	logger *slog.Logger
	repo   Repository
}

func NewHandler(logger *slog.Logger, repo Repository) *Handler {
	return &Handler{logger: logger, repo: repo}
}

// MountRoutes attaches subscription routes. Subscriptions are account-scoped.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/push/subscriptions", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.subscribe)
		r.Delete("/{id}", h.unsubscribe)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	accountID, _ := shared.AccountIDFromContext(r.Context())
	subs, err := h.repo.ListByAccount(r.Context(), accountID)
	if err != nil {
		h.logger.Error("list push subscriptions", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, httpx.CodeInternal, "internal error")
		return
	}
	if subs == nil {
		subs = []Subscription{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"subscriptions": subs})
}

func (h *Handler) subscribe(w http.ResponseWriter, r *http.Request) {
	accountID, _ := shared.AccountIDFromContext(r.Context())
	var req SubscribeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeBadRequest, "malformed request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		httpx.ValidationError(w, validate.FieldErrors(err))
		return
	}
	sub, err := h.repo.Save(r.Context(), Subscription{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Endpoint:  req.Endpoint,
		P256dh:    req.P256dh,
		Auth:      req.Auth,
	})
	if err != nil {
		h.logger.Error("save push subscription", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, httpx.CodeInternal, "internal error")
		return
	}
	httpx.JSON(w, http.StatusCreated, sub)
}

func (h *Handler) unsubscribe(w http.ResponseWriter, r *http.Request) {
	accountID, _ := shared.AccountIDFromContext(r.Context())
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeBadRequest, "invalid subscription id")
		return
	}
	if err := h.repo.Delete(r.Context(), accountID, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Error(w, http.StatusNotFound, httpx.CodeNotFound, "push subscription not found")
			return
		}
		h.logger.Error("delete push subscription", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, httpx.CodeInternal, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
