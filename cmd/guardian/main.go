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

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container
	"golang.org/x/time/rate"

	githubadapter "github.com/mudit06mah/guardian/internal/adapter/driven/github"
	sqliteadapter "github.com/mudit06mah/guardian/internal/adapter/driven/sqlite"
	httphandler "github.com/mudit06mah/guardian/internal/adapter/driving/http"
	"github.com/mudit06mah/guardian/internal/application"
	"github.com/mudit06mah/guardian/internal/config"
	"github.com/mudit06mah/guardian/internal/domain/port/driven"
	"github.com/mudit06mah/guardian/internal/domain/scanner"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on malformed env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// 2. Install the JSON logger at the configured level.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"webhook_path", cfg.WebhookPath,
		"github_api_url", cfg.GitHubAPIURL,
		"webhook_secret_set", cfg.WebhookSecret != "",
		"app_credentials_set", cfg.HasAppCredentials(),
		"secret_key_set", cfg.SecretKey != nil,
	)
	warnMissingSecrets(logger, cfg)

	// 3. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", cfg.DBPath)

	// 5. Run migrations on writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("migrations complete")

	// 6. Wire adapters.
	installationStore := sqliteadapter.NewInstallationRepo(db, cfg.SecretKey)
	repoStore := sqliteadapter.NewRepoRepo(db)
	incidentStore := sqliteadapter.NewIncidentRepo(db)

	appAuth, err := githubadapter.NewAppAuth(githubadapter.AppAuthConfig{
		AppID:      cfg.GitHubAppID,
		PrivateKey: cfg.GitHubPrivateKey,
		BaseURL:    cfg.GitHubAPIURL,
		Timeout:    cfg.HTTPTimeout,
	})
	if err != nil {
		return err
	}

	// All installations share one pacing budget against the API.
	limiter := rate.NewLimiter(rate.Limit(githubadapter.DefaultRequestsPerSecond), githubadapter.DefaultRequestsPerSecond)
	fetchers := application.NewFetcherProvider(func(token string) (driven.WorkflowFetcher, error) {
		return githubadapter.NewClient(token, githubadapter.ClientConfig{
			BaseURL: cfg.GitHubAPIURL,
			Timeout: cfg.HTTPTimeout,
			Limiter: limiter,
		})
	})

	// 7. Create services.
	tokenSvc := application.NewTokenService(appAuth, installationStore, fetchers, logger)
	scanSvc := application.NewWorkflowScanService(scanner.NewCache(scanner.DefaultCacheCapacity), logger)
	reconciler := application.NewIncidentReconciler(incidentStore, logger)
	router := application.NewRouter(repoStore, tokenSvc, scanSvc, reconciler, logger)

	// 8. Create HTTP handler and register routes.
	webhook := httphandler.NewWebhookHandler(httphandler.WebhookConfig{
		Secret:        cfg.WebhookSecret,
		AppConfigured: cfg.HasAppCredentials(),
		MaxBodyBytes:  cfg.MaxBodyBytes,
	}, router, logger)
	handler := httphandler.NewRouter(cfg.WebhookPath, webhook, logger)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
			stop()
		}
	}()

	// 9. Log startup complete.
	slog.Info("guardian started",
		"listen_addr", cfg.ListenAddr,
		"webhook_path", cfg.WebhookPath,
	)

	// 10. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	// 11. Graceful shutdown; in-flight deliveries get 30s to finish.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}

// warnMissingSecrets reports configuration gaps that do not stop startup but
// make every delivery fail later.
func warnMissingSecrets(logger *slog.Logger, cfg *config.Config) {
	if cfg.WebhookSecret == "" {
		logger.Warn("GUARDIAN_WEBHOOK_SECRET not set, webhook deliveries will be refused")
	}
	if !cfg.HasAppCredentials() {
		logger.Warn("github app credentials not configured, webhook deliveries will be refused")
	}
	if cfg.SecretKey == nil {
		logger.Warn("GUARDIAN_SECRET_KEY not set, installation credentials cannot be stored or read")
	}
}
