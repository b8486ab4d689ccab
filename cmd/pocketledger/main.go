package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/pocketledger/pocketledger/internal/ability"
	"github.com/pocketledger/pocketledger/internal/app"
	"github.com/pocketledger/pocketledger/internal/auth"
	"github.com/pocketledger/pocketledger/internal/categories"
	"github.com/pocketledger/pocketledger/internal/events"
	"github.com/pocketledger/pocketledger/internal/invitations"
	"github.com/pocketledger/pocketledger/internal/parser"
	"github.com/pocketledger/pocketledger/internal/platform/cache"
	"github.com/pocketledger/pocketledger/internal/platform/db"
	"github.com/pocketledger/pocketledger/internal/profiles"
	"github.com/pocketledger/pocketledger/internal/push"
	"github.com/pocketledger/pocketledger/internal/reports"
	"github.com/pocketledger/pocketledger/internal/savings"
	"github.com/pocketledger/pocketledger/internal/settings"
	"github.com/pocketledger/pocketledger/internal/transactions"
	"github.com/pocketledger/pocketledger/jobs"
)

// accountEmails adapts the auth repository to the invitation inbox lookup.
type accountEmails struct {
	repo auth.Repository
}

func (a accountEmails) EmailByID(ctx context.Context, accountID int64) (string, error) {
	account, err := a.repo.FindByID(ctx, accountID)
	if err != nil {
		return "", err
	}
	return account.Email, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := asynqClient.Close(); err != nil {
			logger.Warn("asynq client close", slog.Any("error", err))
		}
	}()

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, tokens)
	authHandler := auth.NewHandler(logger, authService)

	profilesRepo := profiles.NewRepository(pool)
	profilesService := profiles.NewService(profilesRepo)

	guard := ability.Guard{Resolver: profilesRepo, Logger: logger}

	profilesHandler := profiles.NewHandler(logger, profilesService, guard)
	abilityHandler := ability.NewHandler(guard)

	pushRepo := push.NewRepository(pool)
	pushDispatcher := push.NewDispatcher(logger, pushRepo, asynqClient)
	pushHandler := push.NewHandler(logger, pushRepo)

	invitationsRepo := invitations.NewRepository(pool)
	invitationsService := invitations.NewService(invitationsRepo, pushDispatcher)
	invitationsHandler := invitations.NewHandler(logger, invitationsService, accountEmails{repo: authRepo}, guard)

	var txParser transactions.Parser
	if cfg.ParserEndpoint != "" {
		txParser = parser.NewClient(parser.Config{
			Endpoint: cfg.ParserEndpoint,
			APIKey:   cfg.ParserAPIKey,
			Model:    cfg.ParserModel,
			Timeout:  cfg.ParserTimeout,
		})
	}

	transactionsRepo := transactions.NewRepository(pool)
	transactionsService := transactions.NewService(transactionsRepo, txParser)
	transactionsHandler := transactions.NewHandler(logger, transactionsService, guard)

	categoriesRepo := categories.NewRepository(pool)
	categoriesService := categories.NewService(categoriesRepo)
	categoriesHandler := categories.NewHandler(logger, categoriesService, guard)

	savingsRepo := savings.NewRepository(pool)
	savingsService := savings.NewService(savingsRepo)
	savingsHandler := savings.NewHandler(logger, savingsService, guard)

	eventsRepo := events.NewRepository(pool)
	eventsService := events.NewService(eventsRepo)
	eventsHandler := events.NewHandler(logger, eventsService, guard)

	settingsRepo := settings.NewRepository(pool)
	settingsHandler := settings.NewHandler(logger, settingsRepo)

	reportsRepo := reports.NewRepository(pool)
	reportsService := reports.NewService(logger, reportsRepo, redisClient)
	reportsHandler := reports.NewHandler(logger, reportsService, guard)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:              logger,
		Config:              cfg,
		Tokens:              tokens,
		AuthHandler:         authHandler,
		AbilityHandler:      abilityHandler,
		ProfilesHandler:     profilesHandler,
		InvitationsHandler:  invitationsHandler,
		TransactionsHandler: transactionsHandler,
		CategoriesHandler:   categoriesHandler,
		SavingsHandler:      savingsHandler,
		EventsHandler:       eventsHandler,
		SettingsHandler:     settingsHandler,
		ReportsHandler:      reportsHandler,
		PushHandler:         pushHandler,
		JobHandler:          jobHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server run", slog.Any("error", err))
		os.Exit(1)
	}
}
