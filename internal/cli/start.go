package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"kanguru-service/internal/app"
	"kanguru-service/internal/config"
	"kanguru-service/internal/content"
	"kanguru-service/internal/domain"
	"kanguru-service/internal/infra/memory"
	"kanguru-service/internal/infra/postgres"
	redisstore "kanguru-service/internal/infra/redis"
	"kanguru-service/internal/logger"
	transport "kanguru-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the HTTP and WebSocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

// stores groups the persistence backends picked from config.
type stores struct {
	sessions app.SessionRepository
	tests    app.TestRepository
	results  app.ResultStore
	profiles app.ProfileStore
	close    func()
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logger.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	scoring := domain.KSFScoring
	if cfg.Scoring.Model != "" {
		var ok bool
		scoring, ok = domain.ScoringFor(domain.ScoringModel(cfg.Scoring.Model))
		if !ok {
			return fmt.Errorf("%w: %q", domain.ErrUnknownScoringModel, cfg.Scoring.Model)
		}
	}

	catalog, err := content.Load()
	if err != nil {
		return fmt.Errorf("load content: %w", err)
	}

	st, err := buildStores(ctx, cfg, catalog, log)
	if err != nil {
		return err
	}
	defer st.close()

	auth := app.NewAuthService(st.profiles)
	results := app.NewResultService(st.results, st.profiles, log)
	tests := app.NewTestService(st.sessions, st.tests, results, scoring, log)
	practice := app.NewPracticeService(catalog, st.profiles, log)
	tips := app.NewTipService(catalog)
	janitor := app.NewJanitor(tests,
		config.TTLDuration(cfg.Janitor.Interval, time.Minute),
		config.TTLDuration(cfg.Janitor.Idle, time.Hour),
		log,
	)

	mux := http.NewServeMux()
	transport.NewAPIHandler(auth, tests, results, practice, tips, log).Register(mux)
	mux.HandleFunc("/ws/test", transport.NewWSHandler(tests, auth, log).ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", server.Addr).Str("scoring", string(scoring.Model)).Msg("starting kanguru service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := janitor.Start(); err != nil {
			return fmt.Errorf("start janitor: %w", err)
		}
		<-gctx.Done()
		janitor.Stop()
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.TTLDuration(cfg.Server.ShutdownTimeout, 5*time.Second))
		defer cancel()
		err := server.Shutdown(shutdownCtx)
		tests.CloseAll()
		return err
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		return err
	}
	log.Info().Msg("shutdown complete")
	return nil
}

func buildStores(ctx context.Context, cfg config.Config, catalog *content.Catalog, log zerolog.Logger) (stores, error) {
	var closers []func()
	st := stores{close: func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			redisClient.Close()
			return st, fmt.Errorf("connect redis: %w", err)
		}
		closers = append(closers, func() { redisClient.Close() })
		log.Info().Str("addr", cfg.Redis.Addr).Msg("redis connected")
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		var err error
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			st.close()
			return st, fmt.Errorf("connect postgres: %w", err)
		}
		closers = append(closers, pool.Close)
		log.Info().Msg("postgres connected")
	}

	var loader memory.TestLoader = memory.NewStaticTestLoader(catalog.Tests())
	if pool != nil {
		loader = postgres.NewTestLoader(pool)
	}

	catalogTTL := config.TTLDuration(cfg.Catalog.TTL, 10*time.Minute)
	if redisClient != nil {
		st.tests = redisstore.NewTestRepository(redisClient, loader, catalogTTL)
		st.sessions = redisstore.NewSessionStore(redisClient, config.TTLDuration(cfg.Redis.TTL, 2*time.Hour))
		st.profiles = redisstore.NewProfileStore(redisClient)
		st.results = redisstore.NewResultStore(redisClient)
	} else {
		st.tests = memory.NewTestRepository(loader, catalogTTL)
		st.sessions = memory.NewSessionStore()
		st.profiles = memory.NewProfileStore()
		st.results = memory.NewResultStore()
	}
	if pool != nil {
		st.results = postgres.NewResultStore(pool)
	}
	return st, nil
}
