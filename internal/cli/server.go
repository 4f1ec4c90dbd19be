package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"live-quiz-service/internal/app"
	"live-quiz-service/internal/config"
	"live-quiz-service/internal/infra/memory"
	"live-quiz-service/internal/infra/postgres"
	infraredis "live-quiz-service/internal/infra/redis"
	transport "live-quiz-service/internal/transport/http"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(parent context.Context, configPath, portFlag string) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Log.Level)

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	hub := app.NewChangeHub()
	g, ctx := errgroup.WithContext(ctx)

	var store app.Store
	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
			return err
		}
		db := postgres.Open(cfg.Postgres.URL)
		defer db.Close()
		store = postgres.NewStore(db)

		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		listener := postgres.NewChangeListener(pool, hub, logger)
		g.Go(func() error { return listener.Run(ctx) })
		logger.Info("using postgres store")
	} else {
		store = memory.NewStore(hub)
		logger.Warn("postgres url not configured, using in-memory store")
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("redis ping failed", "addr", cfg.Redis.Addr, "error", err)
		}
	}

	cacheTTL := config.TTLDuration(cfg.Questions.CacheTTL, 10*time.Minute)
	sessionTTL := config.TTLDuration(cfg.Session.TTL, config.TTLDuration(cfg.Redis.TTL, 12*time.Hour))

	var cache app.QuestionCache
	var sessions app.SessionStore
	if redisClient != nil {
		cache = infraredis.NewQuestionCache(redisClient, store, cacheTTL)
		sessions = infraredis.NewSessionStore(redisClient)
	} else {
		cache = memory.NewQuestionCache(store, cacheTTL)
		sessions = memory.NewSessionStore()
	}

	svc := transport.Services{
		Rooms:     app.NewRoomService(store),
		Players:   app.NewPlayerService(store, sessions, sessionTTL),
		Questions: app.NewQuestionService(store, cache),
		Ledger:    app.NewAnswerLedger(store, cache),
		Views:     app.NewViewService(store, hub),
	}

	room, err := svc.Rooms.EnsureRoom(ctx)
	if err != nil {
		return err
	}
	if cfg.Postgres.URL == "" {
		if _, err := seedQuestions(ctx, svc.Questions, sampleQuestions()); err != nil {
			return err
		}
	}
	logger.Info("room ready", "room", room.ID, "status", room.Status)

	api := transport.NewAPI(svc, transport.Options{
		AdminToken:     cfg.Admin.Token,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         logger,
		Metrics:        transport.NewMetrics(),
	})
	if cfg.Admin.Token == "" {
		logger.Warn("admin token not configured, admin routes are open")
	}

	server := &http.Server{
		Addr:              ":" + finalPort,
		Handler:           api.Routes(cfg.Server.AllowedOrigins),
		ReadHeaderTimeout: 15 * time.Second,
	}

	g.Go(func() error {
		logger.Info("starting quiz service", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped", slog.Any("error", err))
		return err
	}
	return nil
}
