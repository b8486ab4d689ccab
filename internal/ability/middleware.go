package ability

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pocketledger/pocketledger/internal/platform/httpx"
	"github.com/pocketledger/pocketledger/internal/shared"
)

// Resolver fetches the caller's persisted membership role on a profile.
// The guard always re-fetches instead of trusting client-supplied claims;
// client-side ability checks are advisory only.
type Resolver interface {
	MemberRole(ctx context.Context, profileID, accountID int64) (Role, error)
}

// ErrNoMembership is returned by resolvers when no membership row exists.
var ErrNoMembership = errors.New("ability: no membership")

// Guard wires authorization middleware for profile-scoped routes.
type Guard struct {
	Resolver Resolver
	Logger   *slog.Logger
}

// Require ensures the caller's role on {profileID} grants (action, subject).
// The resolved membership and Ability are placed in the request context for
// downstream handlers.
func (g Guard) Require(action Action, subject Subject) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			accountID, ok := shared.AccountIDFromContext(r.Context())
			if !ok {
				httpx.Error(w, http.StatusUnauthorized, httpx.CodeUnauthorized, "authentication required")
				return
			}
			profileID, err := strconv.ParseInt(chi.URLParam(r, "profileID"), 10, 64)
			if err != nil {
				httpx.Error(w, http.StatusBadRequest, httpx.CodeBadRequest, "invalid profile id")
				return
			}

			role, err := g.Resolver.MemberRole(r.Context(), profileID, accountID)
			ab := Empty()
			if err == nil {
				ab = New(role)
			} else if !errors.Is(err, ErrNoMembership) {
				if g.Logger != nil {
					g.Logger.Error("resolve membership", slog.Any("error", err))
				}
				httpx.Error(w, http.StatusInternalServerError, httpx.CodeInternal, "internal error")
				return
			}

			if !ab.Can(action, subject) {
				httpx.Error(w, http.StatusForbidden, httpx.CodeForbidden, "missing permission")
				return
			}

			ctx := ContextWithMembership(r.Context(), Membership{
				ProfileID: profileID,
				AccountID: accountID,
				Role:      role,
				Ability:   ab,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
