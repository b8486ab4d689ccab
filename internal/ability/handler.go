package ability

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pocketledger/pocketledger/internal/platform/httpx"
)

// Handler serves the grant list the frontend uses for conditional
// rendering. The server-side guard remains the sole authoritative check.
type Handler struct {
	guard Guard
}

// NewHandler constructs the ability Handler.
func NewHandler(guard Guard) *Handler {
	return &Handler{guard: guard}
}

// MountRoutes attaches ability routes under /profiles/{profileID}.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(ActionRead, SubjectProfile))
		r.Get("/profiles/{profileID}/ability", h.show)
	})
}

type abilityResponse struct {
	Role   Role    `json:"role"`
	Grants []Grant `json:"grants"`
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	m, ok := MembershipFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusForbidden, httpx.CodeForbidden, "missing permission")
		return
	}
	httpx.JSON(w, http.StatusOK, abilityResponse{Role: m.Role, Grants: Grants(m.Role)})
}
