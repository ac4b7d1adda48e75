// Package app wires the onboarding service together and runs it.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/tutorden/platform/internal/onboard/http"
	"github.com/tutorden/platform/internal/onboard/identity/local"
	"github.com/tutorden/platform/internal/onboard/notify"
	"github.com/tutorden/platform/internal/onboard/service"
	"github.com/tutorden/platform/internal/onboard/store"
	"github.com/tutorden/platform/internal/onboard/store/drivers/sqlite"
	"github.com/tutorden/platform/pkg/jwtx"
	"github.com/tutorden/platform/pkg/slogx"
)

// BuildVersion should be set at build time via ldflags.
const BuildVersion = "v0.1.0"

// Application encapsulates the onboarding service with all its
// dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db         store.Store
	dispatcher notify.Dispatcher
	provider   *local.Provider

	invitationService   *service.InvitationService
	validatorService    *service.ValidatorService
	migratorService     *service.MigratorService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// Option overrides a default dependency. Used by tests to swap the
// dispatcher for a recording one.
type Option func(*Application)

// WithDispatcher replaces the email dispatcher chosen from config.
func WithDispatcher(d notify.Dispatcher) Option {
	return func(app *Application) { app.dispatcher = d }
}

// New creates an Application with all dependencies initialized.
func New(cfg Config, opts ...Option) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "onboard-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	for _, opt := range opts {
		opt(app)
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	if err := app.initDispatcher(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("onboard service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down onboard service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("onboard service stopped")
	return nil
}

// Handler exposes the fully wired router for in-process tests.
func (app *Application) Handler() http.Handler {
	return app.router
}

func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

func (app *Application) initDispatcher() error {
	if app.dispatcher != nil {
		return nil
	}

	if app.cfg.SMTPHost == "" {
		app.logger.Warn("no SMTP relay configured, invitation emails will not be delivered")
		app.dispatcher = notify.NoOp{}
		return nil
	}

	d, err := notify.NewSMTP(notify.SMTPConfig{
		Host:     app.cfg.SMTPHost,
		Port:     app.cfg.SMTPPort,
		Username: app.cfg.SMTPUsername,
		Password: app.cfg.SMTPPassword,
		From:     app.cfg.SMTPFrom,
	})
	if err != nil {
		return err
	}
	app.dispatcher = d
	return nil
}

func (app *Application) initServices() error {
	signer, err := jwtx.NewSigner("tutorden-onboard", app.cfg.SessionTTL)
	if err != nil {
		return fmt.Errorf("failed to initialize session signer: %w", err)
	}

	app.provider = local.New(app.db, signer)

	app.invitationService = service.NewInvitationService(
		app.db,
		service.NewTokenIssuer(app.cfg.TokenTTL),
		app.dispatcher,
		app.cfg.BaseURL,
	)
	app.validatorService = service.NewValidatorService(app.db)
	app.migratorService = service.NewMigratorService(app.db, app.provider)
	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)

	if app.cfg.AdminToken == "" {
		app.logger.Warn("no admin token configured, invitation creation is disabled")
	}

	return nil
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.cfg.AdminToken, app.db, app.logger)

	router.InvitationService = app.invitationService
	router.ValidatorService = app.validatorService
	router.MigratorService = app.migratorService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
