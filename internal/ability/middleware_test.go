package ability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pocketledger/pocketledger/internal/shared"
)

type stubResolver struct {
	role Role
	err  error
}

func (s stubResolver) MemberRole(context.Context, int64, int64) (Role, error) {
	return s.role, s.err
}

func guardedRequest(t *testing.T, guard Guard, action Action, subject Subject, authed bool, path string) *httptest.ResponseRecorder {
	t.Helper()
	router := chi.NewRouter()
	router.Group(func(r chi.Router) {
		r.Use(guard.Require(action, subject))
		r.Get("/profiles/{profileID}/probe", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
	})
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authed {
		req = req.WithContext(shared.ContextWithAccountID(req.Context(), 7))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGuardAllowsGrantedAction(t *testing.T) {
	guard := Guard{Resolver: stubResolver{role: RoleWrite}}
	rec := guardedRequest(t, guard, ActionCreate, SubjectTransaction, true, "/profiles/3/probe")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestGuardDeniesMissingPermission(t *testing.T) {
	guard := Guard{Resolver: stubResolver{role: RoleRead}}
	rec := guardedRequest(t, guard, ActionCreate, SubjectTransaction, true, "/profiles/3/probe")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "FORBIDDEN")
}

func TestGuardDeniesNonMember(t *testing.T) {
	guard := Guard{Resolver: stubResolver{err: ErrNoMembership}}
	rec := guardedRequest(t, guard, ActionRead, SubjectProfile, true, "/profiles/3/probe")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGuardRequiresAuthentication(t *testing.T) {
	guard := Guard{Resolver: stubResolver{role: RoleAdmin}}
	rec := guardedRequest(t, guard, ActionRead, SubjectProfile, false, "/profiles/3/probe")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGuardRejectsMalformedProfileID(t *testing.T) {
	guard := Guard{Resolver: stubResolver{role: RoleAdmin}}
	rec := guardedRequest(t, guard, ActionRead, SubjectProfile, true, "/profiles/abc/probe")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGuardStashesMembership(t *testing.T) {
	guard := Guard{Resolver: stubResolver{role: RoleAdmin}}
	router := chi.NewRouter()
	router.Group(func(r chi.Router) {
		r.Use(guard.Require(ActionManage, SubjectProfile))
		r.Get("/profiles/{profileID}/probe", func(w http.ResponseWriter, r *http.Request) {
			m, ok := MembershipFromContext(r.Context())
			require.True(t, ok)
			assert.Equal(t, int64(3), m.ProfileID)
			assert.Equal(t, int64(7), m.AccountID)
			assert.Equal(t, RoleAdmin, m.Role)
			assert.True(t, m.Ability.Can(ActionDelete, SubjectTransaction))
			w.WriteHeader(http.StatusNoContent)
		})
	})
	req := httptest.NewRequest(http.MethodGet, "/profiles/3/probe", nil)
	req = req.WithContext(shared.ContextWithAccountID(req.Context(), 7))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
