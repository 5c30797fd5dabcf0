package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	specpkg "github.com/sharedlists/sharedlists/api"
	"github.com/sharedlists/sharedlists/internal/api"
	"github.com/sharedlists/sharedlists/internal/api/handler"
	"github.com/sharedlists/sharedlists/internal/apikey"
	"github.com/sharedlists/sharedlists/internal/auth"
	"github.com/sharedlists/sharedlists/internal/config"
	"github.com/sharedlists/sharedlists/internal/database"
	"github.com/sharedlists/sharedlists/internal/list"
	"github.com/sharedlists/sharedlists/internal/page"
	"github.com/sharedlists/sharedlists/internal/permission"
	"github.com/sharedlists/sharedlists/internal/twitch"
	"github.com/sharedlists/sharedlists/internal/user"
	"github.com/sharedlists/sharedlists/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel)

	if err := run(cfg); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

func run(cfg *config.Config) error {
	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStart()

	db, err := database.New(startCtx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(db.Pool(), migrations.FS); err != nil {
		return err
	}

	router, err := newRouter(cfg, db)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting shared lists server", "port", cfg.Port, "version", cfg.Version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutting down server", "signal", sig.String())
	case err := <-serverErr:
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

// newRouter builds every store and service once and hands them to the
// router.
func newRouter(cfg *config.Config, db *database.DB) (http.Handler, error) {
	origin, err := cfg.FrontendOrigin()
	if err != nil {
		return nil, err
	}

	openapiHandler, err := handler.NewOpenAPIHandler(specpkg.OpenAPISpec)
	if err != nil {
		return nil, err
	}

	pool := db.Pool()
	users := user.NewRepository(pool)
	pages := page.NewRepository(pool)
	lists := list.NewRepository(pool)
	keys := apikey.NewService(apikey.NewRepository(pool))
	authority := permission.NewAuthority(pages, permission.NewRepository(pool), users, lists)

	sessions := auth.NewSessionManager(cfg.JWTSecret)
	provider := twitch.NewClient(cfg.TwitchClientID, cfg.TwitchClientSecret, cfg.TwitchRedirectURI, cfg.ProviderTimeout)

	return api.NewRouter(api.RouterDeps{
		DBPinger:       db,
		Version:        cfg.Version,
		OpenAPI:        openapiHandler,
		FrontendOrigin: origin,
		FrontendURL:    cfg.FrontendURL,
		SecureCookies:  cfg.SecureCookies(),
		RateLimitAuth:  cfg.RateLimitAuth,
		Resolver:       auth.NewResolver(sessions, keys, users),
		Login:          auth.NewLoginService(provider, users, sessions),
		Users:          users,
		APIKeys:        keys,
		Pages:          pages,
		Lists:          lists,
		Authority:      authority,
	}), nil
}

func setupLogger(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	logHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(logHandler))
}
