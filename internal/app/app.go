package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/competition-manager/internal/config"
	"github.com/riskibarqy/competition-manager/internal/domain/user"
	"github.com/riskibarqy/competition-manager/internal/infrastructure/datastore/memory"
	"github.com/riskibarqy/competition-manager/internal/infrastructure/datastore/postgres"
	"github.com/riskibarqy/competition-manager/internal/infrastructure/repository/remote"
	"github.com/riskibarqy/competition-manager/internal/infrastructure/sessionstore"
	"github.com/riskibarqy/competition-manager/internal/infrastructure/supabase"
	"github.com/riskibarqy/competition-manager/internal/interfaces/httpapi"
	"github.com/riskibarqy/competition-manager/internal/platform/datastore"
	"github.com/riskibarqy/competition-manager/internal/platform/logging"
	"github.com/riskibarqy/competition-manager/internal/platform/resilience"
	"github.com/riskibarqy/competition-manager/internal/usecase"
)

// NewHTTPServer wires the configured drivers, restores the persisted session
// and returns the API server. The returned cleanup releases driver resources.
func NewHTTPServer(ctx context.Context, cfg config.Config, logger *logging.Logger) (*http.Server, func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	auth, err := newAuthenticator(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	sessions := usecase.NewSessionService(auth, sessionstore.NewFileStore(cfg.SessionFile), logger, cfg.SessionRevalidate)

	store, cleanup, err := newStore(ctx, cfg, sessions, logger)
	if err != nil {
		return nil, nil, err
	}

	if err := sessions.Restore(ctx); err != nil {
		logger.Warn("restore session failed", "session_file", cfg.SessionFile, "error", err)
	}

	competitionRepo := remote.NewCompetitionRepository(store, logger)
	playerRepo := remote.NewPlayerRepository(store, logger)
	gameRepo := remote.NewGameRepository(store, logger)
	matchRepo := remote.NewMatchRepository(store, logger)

	competitionSvc := usecase.NewCompetitionService(competitionRepo, gameRepo, matchRepo, sessions, cfg.CascadeWorkers)
	playerSvc := usecase.NewPlayerService(playerRepo, sessions)
	gameSvc := usecase.NewGameService(gameRepo, competitionRepo, sessions)
	matchSvc := usecase.NewMatchService(matchRepo, gameRepo, competitionRepo, sessions)

	handler := httpapi.NewHandler(
		sessions,
		competitionSvc,
		playerSvc,
		gameSvc,
		matchSvc,
		httpapi.HandlerOptions{UnscopedListEnabled: cfg.UnscopedListEnabled},
		logger,
	)
	router := httpapi.NewRouter(handler, sessions, httpapi.RouterConfig{
		ServiceName:        cfg.ServiceName,
		SwaggerEnabled:     cfg.SwaggerEnabled,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}, logger)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	logger.Info("app wired",
		"store_driver", cfg.StoreDriver,
		"auth_driver", cfg.AuthDriver,
		"unscoped_list_enabled", cfg.UnscopedListEnabled,
	)

	return server, cleanup, nil
}

func newAuthenticator(cfg config.Config, logger *logging.Logger) (user.Authenticator, error) {
	switch cfg.AuthDriver {
	case config.DriverSupabase:
		auth, err := supabase.NewAuthClient(supabaseClientConfig(cfg, logger))
		if err != nil {
			return nil, fmt.Errorf("build supabase auth client: %w", err)
		}
		return auth, nil
	case config.DriverMemory:
		auth, err := memory.NewAuthenticator(cfg.MemoryAuthSecret, nil)
		if err != nil {
			return nil, fmt.Errorf("build memory authenticator: %w", err)
		}
		return auth, nil
	default:
		return nil, fmt.Errorf("unsupported auth driver %q", cfg.AuthDriver)
	}
}

func newStore(ctx context.Context, cfg config.Config, tokens supabase.TokenSource, logger *logging.Logger) (datastore.Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.StoreDriver {
	case config.DriverSupabase:
		client, err := supabase.NewRestClient(supabaseClientConfig(cfg, logger), tokens)
		if err != nil {
			return nil, nil, fmt.Errorf("build supabase rest client: %w", err)
		}
		return client, noop, nil
	case config.DriverPostgres:
		db, err := postgres.Open(ctx, postgres.Config{
			URL:             cfg.DBURL,
			ApplicationName: cfg.ServiceName,
			MaxOpenConns:    cfg.DBMaxOpenConns,
			MaxIdleConns:    cfg.DBMaxIdleConns,
			ConnMaxLifetime: cfg.DBConnMaxLifetime,
		})
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewStore(db, logger), closeDB(db), nil
	case config.DriverMemory:
		return memory.NewStore(nil), noop, nil
	default:
		return nil, nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}

func supabaseClientConfig(cfg config.Config, logger *logging.Logger) supabase.ClientConfig {
	return supabase.ClientConfig{
		BaseURL: cfg.SupabaseURL,
		AnonKey: cfg.SupabaseAnonKey,
		Timeout: cfg.SupabaseTimeout,
		Logger:  logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.SupabaseCircuitEnabled,
			FailureThreshold: cfg.SupabaseCircuitFailureCount,
			OpenTimeout:      cfg.SupabaseCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.SupabaseCircuitHalfOpenMaxReq,
		},
	}
}

func closeDB(db *sqlx.DB) func() error {
	return func() error {
		return db.Close()
	}
}
