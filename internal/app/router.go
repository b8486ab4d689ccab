package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/pocketledger/pocketledger/internal/ability"
	"github.com/pocketledger/pocketledger/internal/auth"
	"github.com/pocketledger/pocketledger/internal/categories"
	"github.com/pocketledger/pocketledger/internal/events"
	"github.com/pocketledger/pocketledger/internal/invitations"
	"github.com/pocketledger/pocketledger/internal/profiles"
	"github.com/pocketledger/pocketledger/internal/push"
	"github.com/pocketledger/pocketledger/internal/reports"
	"github.com/pocketledger/pocketledger/internal/savings"
	"github.com/pocketledger/pocketledger/internal/settings"
	"github.com/pocketledger/pocketledger/internal/transactions"
	"github.com/pocketledger/pocketledger/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config
	Tokens *auth.TokenIssuer

	AuthHandler         *auth.Handler
	AbilityHandler      *ability.Handler
	ProfilesHandler     *profiles.Handler
	InvitationsHandler  *invitations.Handler
	TransactionsHandler *transactions.Handler
	CategoriesHandler   *categories.Handler
	SavingsHandler      *savings.Handler
	EventsHandler       *events.Handler
	SettingsHandler     *settings.Handler
	ReportsHandler      *reports.Handler
	PushHandler         *push.Handler
	JobHandler          *jobs.Handler
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		params.AuthHandler.MountPublicRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(params.Tokens))

			params.AuthHandler.MountRoutes(r)
			params.AbilityHandler.MountRoutes(r)
			params.ProfilesHandler.MountRoutes(r)
			params.InvitationsHandler.MountRoutes(r)
			params.TransactionsHandler.MountRoutes(r)
			params.CategoriesHandler.MountRoutes(r)
			params.SavingsHandler.MountRoutes(r)
			params.EventsHandler.MountRoutes(r)
			params.SettingsHandler.MountRoutes(r)
			params.ReportsHandler.MountRoutes(r)
			params.PushHandler.MountRoutes(r)

			if params.JobHandler != nil {
				r.Route("/jobs", params.JobHandler.MountRoutes)
			}
		})
	})

	return r
}
