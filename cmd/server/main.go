package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/circles/internal/auth"
	"github.com/mmynk/circles/internal/config"
	"github.com/mmynk/circles/internal/drafts"
	"github.com/mmynk/circles/internal/images"
	"github.com/mmynk/circles/internal/middleware"
	"github.com/mmynk/circles/internal/service"
	"github.com/mmynk/circles/internal/storage"
	"github.com/mmynk/circles/internal/storage/postgres"
	"github.com/mmynk/circles/internal/storage/sqlite"
	"github.com/mmynk/circles/pkg/circlesv1"
	"github.com/mmynk/circles/pkg/logging"
)

func main() {
	envFile := config.LoadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)
	if envFile != "" {
		slog.Info("Loaded environment file", "path", envFile)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	// Users and the local key-value table always live in SQLite.
	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.Database.Path)

	var circles storage.CircleStore = store
	if cfg.Database.URL != "" {
		pool, err := postgres.NewPool(ctx, cfg.Database.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		repo := postgres.NewCircleRepo(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			return err
		}
		circles = repo
		slog.Info("Circles stored in PostgreSQL")
	}

	var imageStore images.Store = images.NewDataURIStore()
	if cfg.Images.FTPHost != "" {
		ftpStore := images.NewFTPStore(images.FTPConfig{
			Host:     cfg.Images.FTPHost,
			Port:     cfg.Images.FTPPort,
			User:     cfg.Images.FTPUser,
			Password: cfg.Images.FTPPassword,
			Dir:      cfg.Images.FTPDir,
			BaseURL:  cfg.Images.BaseURL,
		})
		defer ftpStore.Close()
		imageStore = ftpStore
		slog.Info("Images stored over FTP", "host", cfg.Images.FTPHost)
	}

	draftKV, closeDrafts, err := openDrafts(ctx, cfg, store)
	if err != nil {
		return err
	}
	defer closeDrafts()

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authenticator := auth.NewPasswordAuthenticator(store)
	metrics := middleware.NewMetrics(prometheus.DefaultRegisterer)

	mux := http.NewServeMux()
	service.Register(mux,
		service.NewCircleService(circles, imageStore),
		service.NewAuthService(authenticator, store, jwtManager, slog.Default()),
		jwtManager,
		middleware.MetricsInterceptor(metrics),
		middleware.LoggingInterceptor(slog.Default()),
	)
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/drafts/", service.DraftsHandler(drafts.NewStore(draftKV), jwtManager))

	staticDir, err := filepath.Abs(cfg.Server.StaticPath)
	if err != nil {
		return fmt.Errorf("failed to resolve static path: %w", err)
	}
	slog.Info("Serving static files", "path", staticDir)
	mux.Handle("/", staticHandler(staticDir))

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	handler := h2c.NewHandler(middleware.RequestLogger(middleware.CORS(mux)), &http2.Server{})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Connect server starting", "address", server.Addr, "url", fmt.Sprintf("http://localhost%s", server.Addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// openDrafts picks the draft backend: Redis when configured, else SQLite.
func openDrafts(ctx context.Context, cfg *config.Config, store *sqlite.SQLiteStore) (drafts.KeyValue, func(), error) {
	if cfg.Drafts.RedisAddr == "" {
		return store, func() {}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Drafts.RedisAddr,
		Password: cfg.Drafts.RedisPassword,
		DB:       cfg.Drafts.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	slog.Info("Question drafts stored in Redis", "addr", cfg.Drafts.RedisAddr)
	return drafts.NewRedisKV(client, "circles:drafts", cfg.Drafts.TTL), func() { client.Close() }, nil
}

// staticHandler serves the dashboard's static files, falling back to
// index.html for unknown paths.
func staticHandler(staticDir string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Unknown Connect procedures must not fall through to the SPA.
		if strings.HasPrefix(r.URL.Path, "/"+circlesv1.CircleServiceName) ||
			strings.HasPrefix(r.URL.Path, "/"+circlesv1.AuthServiceName) {
			http.NotFound(w, r)
			return
		}

		urlPath := r.URL.Path
		if urlPath == "/" {
			urlPath = "/index.html"
		}

		filePath := filepath.Join(staticDir, filepath.Clean(urlPath))
		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
			return
		}

		http.ServeFile(w, r, filePath)
	})
}
