package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/joaobaungartner/goncalves-frontend/internal"
	"github.com/joaobaungartner/goncalves-frontend/internal/analytics"
	"github.com/joaobaungartner/goncalves-frontend/internal/csrf"
	"github.com/joaobaungartner/goncalves-frontend/internal/handler"
	"github.com/joaobaungartner/goncalves-frontend/internal/importer"
	"github.com/joaobaungartner/goncalves-frontend/internal/metrics"
	"github.com/joaobaungartner/goncalves-frontend/internal/middleware"
	"github.com/joaobaungartner/goncalves-frontend/internal/repository"
	"github.com/joaobaungartner/goncalves-frontend/internal/service"
	"github.com/joaobaungartner/goncalves-frontend/internal/storage"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Session store: in-memory for development, postgres when sessions must
	// survive restarts.
	var sessionStore repository.SessionStore
	switch cfg.SessionStore {
	case "postgres":
		db, err := sql.Open("pgx", cfg.DatabaseUrl)
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		defer db.Close()

		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("database ping failed: %w", err)
		}
		if err := internal.RunMigrations(db); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		logger.Info("Database ready")
		sessionStore = repository.NewPostgresSessionStore(db)
	default:
		sessionStore = repository.NewMemorySessionStore()
	}

	// Upload archive storage
	store, err := newStorage(cfg, logger)
	if err != nil {
		return fmt.Errorf("storage initialization failed: %w", err)
	}

	// Analytics backend client
	api := analytics.New(cfg.APIBaseURL, cfg.APITimeout, logger)

	// Initialize template renderer
	renderer, err := handler.NewRendererFromFS(os.DirFS(cfg.TemplatesDir), logger)
	if err != nil {
		return fmt.Errorf("renderer initialization failed: %w", err)
	}
	if cfg.Env == "development" {
		renderer.EnableDevReload()
	}

	// Initialize services
	sessions := service.NewSessionService(sessionStore, api, cfg.SessionDuration, logger)
	go service.SweepExpired(ctx, sessionStore, logger)

	imp := importer.New(api, store, sessions, cfg.MaxUploadBytes, logger)

	// Initialize middleware
	isSecure := cfg.Env != "development"
	authMw := middleware.NewAuthMiddleware(sessions, logger, isSecure)
	authLimiter := middleware.NewAuthRateLimiter(logger)
	securityMw := middleware.NewSecurityHeadersMiddleware(isSecure)
	loggingMw := middleware.NewRequestLoggingMiddleware(logger)
	metricsAuthMw := middleware.NewMetricsAuthMiddleware(cfg.MetricsUsername, cfg.MetricsPassword)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(sessions, authLimiter, renderer, logger, isSecure)
	pagesHandler := handler.NewPagesHandler(api, renderer, logger)
	pedidosHandler := handler.NewPedidosHandler(api, renderer, logger)
	importarHandler := handler.NewImportarHandler(imp, renderer, logger)

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	mux := http.NewServeMux()

	// Static files
	staticFS := http.FileServer(http.Dir(cfg.StaticDir))
	mux.Handle("GET /static/", http.StripPrefix("/static/", staticFS))

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Prometheus metrics (basic auth when credentials are configured)
	mux.Handle("GET /metrics", metricsAuthMw.Handler(promhttp.Handler()))

	// Auth routes. The login form is public; the session middleware still
	// runs so an authenticated visitor gets bounced to the dashboard.
	mux.Handle("GET /login", authMw.WithSession(http.HandlerFunc(authHandler.ShowLogin)))
	mux.Handle("POST /login", authLimiter.LimitLogin(http.HandlerFunc(authHandler.Login)))
	mux.Handle("POST /logout", http.HandlerFunc(authHandler.Logout))

	// Everything below requires a live session.
	requireSession := middleware.Stack(authMw.WithSession, authMw.RequireSession)

	protected := func(h http.HandlerFunc) http.Handler {
		return requireSession(h)
	}

	mux.Handle("GET /{$}", protected(pagesHandler.VisaoGeral))
	mux.Handle("GET /financeiro", protected(pagesHandler.Financeiro))
	mux.Handle("GET /vendas", protected(pagesHandler.Vendas))
	mux.Handle("GET /produtos", protected(pagesHandler.Produtos))
	mux.Handle("GET /canais-mercados", protected(pagesHandler.CanaisMercados))
	mux.Handle("GET /clientes", protected(pagesHandler.Clientes))
	mux.Handle("GET /qualidade-satisfacao", protected(pagesHandler.QualidadeSatisfacao))
	mux.Handle("GET /logistica-custos", protected(pagesHandler.LogisticaCustos))
	mux.Handle("GET /analytics", protected(pagesHandler.Analytics))
	mux.Handle("GET /pedidos", protected(pedidosHandler.Pedidos))
	mux.Handle("GET /importar", protected(importarHandler.ShowImportar))
	mux.Handle("POST /importar", protected(importarHandler.Upload))
	mux.Handle("POST /importar/reverter", protected(importarHandler.Revert))

	// Outer middleware stack: security headers, request logging, metrics,
	// CSRF double-submit validation for every form POST.
	root := middleware.Stack(
		securityMw.Handler,
		loggingMw.Handler,
		metrics.Middleware,
		csrf.Protect(isSecure, logger),
	)(mux)

	// ==========================================================================
	// Start server
	// ==========================================================================

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: root,
	}

	go func() {
		logger.Info("Server started", "address", server.Addr, "env", cfg.Env, "backend", cfg.APIBaseURL)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutdown signal received, initiating graceful shutdown...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Graceful shutdown complete")
	return nil
}

func newStorage(cfg *internal.Config, logger *slog.Logger) (storage.Storage, error) {
	switch cfg.StorageProvider {
	case "r2":
		return storage.NewR2Storage(storage.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicURL:       cfg.R2PublicURL,
		}, logger)
	default:
		return storage.NewLocalStorage(storage.LocalConfig{
			BasePath: cfg.LocalStoragePath,
			BaseURL:  cfg.LocalStorageURL,
		}, logger)
	}
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
