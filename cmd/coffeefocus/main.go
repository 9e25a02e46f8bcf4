package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/coffee-focus/coffeefocus/db"
	"github.com/coffee-focus/coffeefocus/internal/auth"
	"github.com/coffee-focus/coffeefocus/internal/config"
	"github.com/coffee-focus/coffeefocus/internal/handlers"
	"github.com/coffee-focus/coffeefocus/internal/logger"
	"github.com/coffee-focus/coffeefocus/internal/middleware"
	"github.com/coffee-focus/coffeefocus/internal/router"
	"github.com/coffee-focus/coffeefocus/internal/scheduler"
)

const rateLimitIdle = 30 * time.Minute

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Application error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	rootCmd := &cobra.Command{
		Use:   "coffeefocus",
		Short: "Coffee Focus productivity server",
		Long: `coffeefocus serves the Coffee Focus web app: focus timer, projects,
tasks, sticky notes and shared team workspaces.

Running without a sub-command starts the HTTP server.`,
		SilenceUsage: true,
		RunE:         serve,
	}

	rootCmd.AddCommand(serveCmd, migrateCmd, seedUserCmd, checkAuthCmd)

	return rootCmd.Execute()
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  serve,
}

// bootstrap loads configuration, starts logging and opens the database.
func bootstrap() (*config.Config, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(cfg.Logging, cfg.IsProduction()); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := db.ConnectDatabase(cfg.Database); err != nil {
		return nil, err
	}

	if err := db.MigrateDatabase(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return cfg, nil
}

func initAuth(cfg *config.Config) error {
	secret, err := auth.ResolveSecret(cfg.Auth.Secret, cfg.Database.DSN, cfg.IsProduction())
	if err != nil {
		return err
	}

	if cfg.Auth.Secret == "" {
		logger.L().Warn("AUTH_SECRET not set, deriving session secret")
	}

	if err := auth.InitJWTSecret(secret, cfg.Auth.TokenTTL); err != nil {
		return err
	}

	auth.InitCookies(auth.CookieSettings{
		Name:   cfg.Auth.CookieName,
		Domain: cfg.Auth.CookieDomain,
		Secure: cfg.Auth.CookieSecure,
	})

	if cfg.Auth.GitHub.Enabled() {
		gh := cfg.Auth.GitHub
		handlers.ConfigureGitHub(auth.NewGitHubProvider(gh.ClientID, gh.ClientSecret, gh.RedirectURL))
		logger.L().Info("GitHub sign-in enabled")
	}

	return nil
}

func serve(cmd *cobra.Command, args []string) error {
	cfg, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer db.Close()

	if err := initAuth(cfg); err != nil {
		return fmt.Errorf("failed to initialize auth: %w", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)

	scheduler.Initialize(
		scheduler.StaleSessionJob(cfg.Scheduler.Interval, cfg.Scheduler.StaleAfter, func(userIDs []string) {
			handlers.BroadcastToUsers(userIDs, "sessions")
		}),
		scheduler.Job{
			Name:     "rate-limit-cleanup",
			Interval: rateLimitIdle,
			Run: func(ctx context.Context) error {
				limiter.Cleanup(rateLimitIdle)
				return nil
			},
		},
	)
	defer scheduler.Shutdown()

	return startServerWithGracefulShutdown(cfg, router.NewRouter(cfg, limiter))
}

func startServerWithGracefulShutdown(cfg *config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.L().Infow("Starting server", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-serverErr:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case sig := <-quit:
		logger.L().Infow("Shutting down server", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.L().Info("Server exited")
	return nil
}
