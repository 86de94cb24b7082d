// Package main is the entrypoint for the racetime API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/kiranshivaraju/racetime/internal/ai"
	"github.com/kiranshivaraju/racetime/internal/api"
	"github.com/kiranshivaraju/racetime/internal/api/handler"
	mw "github.com/kiranshivaraju/racetime/internal/api/middleware"
	"github.com/kiranshivaraju/racetime/internal/cache"
	"github.com/kiranshivaraju/racetime/internal/config"
	"github.com/kiranshivaraju/racetime/internal/extract"
	"github.com/kiranshivaraju/racetime/internal/objectstore"
	"github.com/kiranshivaraju/racetime/internal/pipeline"
	"github.com/kiranshivaraju/racetime/internal/predict"
	"github.com/kiranshivaraju/racetime/internal/regression"
	"github.com/kiranshivaraju/racetime/internal/store"
	"github.com/kiranshivaraju/racetime/internal/trace"
)

const shutdownTimeout = 30 * time.Second

// tracer is both halves of a trace sink.
type tracer interface {
	trace.Observer
	trace.Flusher
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config, failing fast on invalid values
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded", "ai_provider", cfg.AI.Provider, "env", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to database
	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	slog.Info("database connected")

	// 3. Run migrations
	if err := store.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsDir); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database migrations applied")

	// 4. Create Redis cache
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}
	defer redisCache.Close()

	if err := redisCache.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")

	// 5. Create AI provider
	aiProvider, err := ai.NewProvider(ctx, cfg.AI)
	if err != nil {
		return fmt.Errorf("create AI provider: %w", err)
	}
	if c, ok := aiProvider.(io.Closer); ok {
		defer c.Close()
	}
	slog.Info("AI provider initialized", "provider", aiProvider.Name())

	// 6. Load the regression model. A failure here leaves the server up with
	// predictions answering 503 until an admin reload succeeds.
	holder, err := newModelHolder(cfg.Model)
	if err != nil {
		return fmt.Errorf("create model holder: %w", err)
	}
	if err := holder.Load(ctx); err != nil {
		slog.Warn("model not loaded at startup", "error", err)
	} else {
		info := holder.Info()
		slog.Info("model loaded", "name", info.Name, "version", info.Version)
	}

	// 7. Assemble the pipeline
	sink := newTracer(cfg.Langfuse)
	pgStore := store.NewPostgresStore(pool)

	extractor := extract.NewExtractor(aiProvider,
		extract.WithObserver(sink),
		extract.WithCache(redisCache, cfg.Redis.ExtractionTTL),
		extract.WithTimeout(cfg.AI.InferenceTimeout),
	)
	svc := pipeline.NewService(extractor, predict.NewPredictor(holder),
		pipeline.WithRunStore(pgStore),
		pipeline.WithFlusher(sink),
		pipeline.WithProvider(aiProvider.Name()),
	)

	// 8. Build router with dependencies
	deps := api.Dependencies{
		Auth:      mw.NewAuth(pgStore),
		RateLimit: mw.NewRateLimit(redisCache, cfg.Server.RequestsPerMinute),

		HealthHandler:         handler.NewHealthHandler(pgStore, redisCache, holder),
		CreateEstimateHandler: handler.NewCreateEstimateHandler(svc),
		ListEstimatesHandler:  handler.NewListEstimatesHandler(svc),
		GetEstimateHandler:    handler.NewGetEstimateHandler(svc),
		ModelInfoHandler:      handler.NewModelInfoHandler(holder),
		ReloadModelHandler:    handler.NewReloadModelHandler(holder),
		CreateKeyHandler:      handler.NewCreateKeyHandler(pgStore, bcrypt.DefaultCost),
		ListKeysHandler:       handler.NewListKeysHandler(pgStore),
		RevokeKeyHandler:      handler.NewRevokeKeyHandler(pgStore),
	}

	router := api.NewRouter(deps)

	// 9. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.AI.InferenceTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	if err := sink.Flush(shutdownCtx); err != nil {
		slog.Warn("final trace flush failed", "error", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// newModelHolder wires the artifact loader. Object storage is only consulted
// when a bucket is configured.
func newModelHolder(cfg config.ModelConfig) (*regression.Holder, error) {
	var fetcher regression.Fetcher
	if cfg.Bucket != "" {
		client, err := objectstore.NewClient(cfg)
		if err != nil {
			return nil, err
		}
		fetcher = client
	}
	loader := regression.NewArtifactLoader(fetcher, cfg.Bucket, cfg.ObjectKey, cfg.LocalPath)
	return regression.NewHolder(loader), nil
}

func newTracer(cfg config.LangfuseConfig) tracer {
	if !cfg.Enabled() {
		return trace.Nop{}
	}
	slog.Info("langfuse tracing enabled", "host", cfg.Host)
	return trace.NewLangfuse(cfg.Host, cfg.PublicKey, cfg.SecretKey, cfg.Timeout)
}
