package settings

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pocketledger/pocketledger/internal/shared"
)

type mockRepository struct {
	stored map[int64]Settings
}

func newMockRepository() *mockRepository {
	return &mockRepository{stored: make(map[int64]Settings)}
}

func (m *mockRepository) Get(_ context.Context, accountID int64) (*Settings, error) {
	if s, ok := m.stored[accountID]; ok {
		return &s, nil
	}
	defaults := Defaults()
	return &defaults, nil
}

func (m *mockRepository) Upsert(_ context.Context, accountID int64, s Settings) error {
	m.stored[accountID] = s
	return nil
}

func newTestRouter(repo Repository) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(shared.ContextWithAccountID(req.Context(), 42)))
		})
	})
	NewHandler(slog.New(slog.DiscardHandler), repo).MountRoutes(r)
	return r
}

func TestGetReturnsDefaultsWhenUnset(t *testing.T) {
	router := newTestRouter(newMockRepository())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/settings", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got Settings
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, Defaults(), got)
}

func TestPutUpsertsAndGetRoundTrips(t *testing.T) {
	repo := newMockRepository()
	router := newTestRouter(repo)

	body := `{"currency":"EUR","locale":"de-DE","week_starts_on":0,"notifications_enabled":false}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/settings", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/settings", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got Settings
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "EUR", got.Currency)
	assert.Equal(t, "de-DE", got.Locale)
	assert.False(t, got.NotificationsEnabled)
}

func TestPutRejectsInvalidCurrency(t *testing.T) {
	router := newTestRouter(newMockRepository())

	body := `{"currency":"euros","locale":"en-US","week_starts_on":1,"notifications_enabled":true}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/settings", strings.NewReader(body)))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
