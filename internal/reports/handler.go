package reports

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pocketledger/pocketledger/internal/ability"
	"github.com/pocketledger/pocketledger/internal/platform/httpx"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
	guard   ability.Guard
}

func NewHandler(logger *slog.Logger, service *Service, guard ability.Guard) *Handler {
	return &Handler{logger: logger, service: service, guard: guard}
}

// MountRoutes attaches report routes under /profiles/{profileID}. Reports
// read transaction data, so the transaction read grant applies.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/profiles/{profileID}/reports", func(r chi.Router) {
		r.Use(h.guard.Require(ability.ActionRead, ability.SubjectTransaction))
		r.Get("/summary", h.summary)
		r.Get("/categories", h.categories)
		r.Get("/trend", h.trend)
	})
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	m, _ := ability.MembershipFromContext(r.Context())
	q := r.URL.Query()
	summary, err := h.service.Summary(r.Context(), m.ProfileID, q.Get("from"), q.Get("to"))
	if err != nil {
		h.respondErr(w, "summary report", err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) categories(w http.ResponseWriter, r *http.Request) {
	m, _ := ability.MembershipFromContext(r.Context())
	q := r.URL.Query()
	breakdown, err := h.service.Categories(r.Context(), m.ProfileID, q.Get("from"), q.Get("to"))
	if err != nil {
		h.respondErr(w, "category report", err)
		return
	}
	httpx.JSON(w, http.StatusOK, breakdown)
}

func (h *Handler) trend(w http.ResponseWriter, r *http.Request) {
	m, _ := ability.MembershipFromContext(r.Context())
	months := 6
	if raw := r.URL.Query().Get("months"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			httpx.Error(w, http.StatusBadRequest, httpx.CodeBadRequest, "months must be an integer")
			return
		}
		months = parsed
	}
	trend, err := h.service.Trend(r.Context(), m.ProfileID, months)
	if err != nil {
		h.respondErr(w, "trend report", err)
		return
	}
	httpx.JSON(w, http.StatusOK, trend)
}

func (h *Handler) respondErr(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, ErrInvalidRange) {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeBadRequest, "dates must be YYYY-MM-DD and from must not be after to")
		return
	}
	h.logger.Error(op, slog.Any("error", err))
	httpx.Error(w, http.StatusInternalServerError, httpx.CodeInternal, "internal error")
}
