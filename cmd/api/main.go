//	@title			ghdrop API
//	@version		1.0
//	@description	Accepts browser file uploads and commits them to a GitHub repository.
//
//	@host		localhost:8080
//	@BasePath	/

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/ghdrop/service/internal/config"
	appMiddleware "github.com/ghdrop/service/internal/middleware"
	"github.com/ghdrop/service/internal/storage"
	"github.com/ghdrop/service/internal/upload"

	_ "github.com/ghdrop/service/docs/swagger"
)

func main() {
	cfg := config.Load()
	logger := newLogger(cfg)

	store, err := newStorage(context.Background(), cfg, logger)
	if err != nil {
		level.Error(logger).Log("msg", "storage init failed", "err", err)
		os.Exit(1)
	}
	if err := store.Ready(); err != nil {
		// Not fatal: uploads answer with a configuration error until fixed.
		level.Warn(logger).Log("msg", "content store is not configured", "backend", cfg.StorageBackend, "err", err)
	}

	// Wire dependencies: storage → service → handler
	uploadSvc := upload.NewService(store, logger)
	uploadHandler := upload.NewHandler(uploadSvc, staticFallback(cfg), cfg.MaxFormMemory, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      newRouter(uploadHandler, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.UpstreamTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine; wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		level.Info(logger).Log("msg", "server listening", "addr", srv.Addr, "env", cfg.AppEnv, "backend", cfg.StorageBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			level.Error(logger).Log("msg", "server error", "err", err)
			os.Exit(1)
		}
	}()

	<-quit
	level.Info(logger).Log("msg", "shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		level.Error(logger).Log("msg", "forced shutdown", "err", err)
		os.Exit(1)
	}

	level.Info(logger).Log("msg", "server stopped")
}

func newRouter(uploadHandler http.Handler, logger log.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger(logger))
	r.Use(chiMiddleware.Recoverer)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Swagger UI, served at http://localhost:8080/swagger/
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// Every other path belongs to the upload handler, as when the hosting
	// platform routes all requests to the function.
	r.Handle("/*", uploadHandler)
	return r
}

func newLogger(cfg *config.Config) log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	if cfg.IsProduction() {
		logger = log.NewJSONLogger(log.NewSyncWriter(os.Stderr))
	}
	logger = level.NewFilter(logger, levelOption(cfg.LogLevel))
	return log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)
}

func levelOption(name string) level.Option {
	switch name {
	case "debug":
		return level.AllowDebug()
	case "warn":
		return level.AllowWarn()
	case "error":
		return level.AllowError()
	default:
		return level.AllowInfo()
	}
}

func newStorage(ctx context.Context, cfg *config.Config, logger log.Logger) (storage.Storage, error) {
	switch cfg.StorageBackend {
	case config.BackendGitHub:
		return storage.NewGitHubStorage(storage.GitHubConfig{
			Token:   cfg.GitHubToken,
			Repo:    cfg.GitHubRepo,
			Owner:   cfg.GitHubOwner,
			APIBase: cfg.GitHubAPIBase,
			Timeout: cfg.UpstreamTimeout,
		}, nil, logger), nil
	case config.BackendS3:
		return storage.NewMinioStorage(ctx, storage.MinioConfig{
			Endpoint:   cfg.StorageEndpoint,
			AccessKey:  cfg.StorageAccessKey,
			SecretKey:  cfg.StorageSecretKey,
			Bucket:     cfg.StorageBucket,
			PublicBase: cfg.StoragePublicBase,
			UseSSL:     cfg.StorageUseSSL,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// staticFallback serves STATIC_DIR for requests the upload handler does not
// answer itself. Returns nil when no directory is configured.
func staticFallback(cfg *config.Config) http.Handler {
	if cfg.StaticDir == "" {
		return nil
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "HEAD"},
		MaxAge:         300,
	})(http.FileServer(http.Dir(cfg.StaticDir)))
}
