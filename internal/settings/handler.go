package settings

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

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

// MountRoutes attaches settings routes. Settings are account-scoped, so only
// authentication is required, no profile guard.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/settings", h.show)
	r.Put("/settings", h.update)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	accountID, _ := shared.AccountIDFromContext(r.Context())
	s, err := h.repo.Get(r.Context(), accountID)
	if err != nil {
		h.logger.Error("get settings", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, httpx.CodeInternal, "internal error")
		return
	}
	httpx.JSON(w, http.StatusOK, s)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	accountID, _ := shared.AccountIDFromContext(r.Context())
	var req UpdateSettingsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeBadRequest, "malformed request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		httpx.ValidationError(w, validate.FieldErrors(err))
		return
	}
	s := Settings{
		Currency:             req.Currency,
		Locale:               req.Locale,
		WeekStartsOn:         req.WeekStartsOn,
		NotificationsEnabled: req.NotificationsEnabled,
	}
	if err := h.repo.Upsert(r.Context(), accountID, s); err != nil {
		h.logger.Error("update settings", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, httpx.CodeInternal, "internal error")
		return
	}
	httpx.JSON(w, http.StatusOK, s)
}
