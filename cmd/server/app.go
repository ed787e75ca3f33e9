package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/libris-project/libris-api/internal/api"
	"github.com/libris-project/libris-api/internal/config"
	"github.com/libris-project/libris-api/internal/platform/logger"
	"github.com/libris-project/libris-api/internal/platform/postgres"
	"github.com/libris-project/libris-api/internal/service/auth"
	"github.com/libris-project/libris-api/internal/store"
)

// application holds the wired dependencies for the running server.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	bookStore   store.BookStore
	authorStore store.AuthorStore
	userStore   store.UserStore

	jwtService     auth.JWTService
	passwordHasher *auth.BcryptVerifier
	googleProvider *auth.GoogleProvider

	bookHandler   *api.BookHandler
	authorHandler *api.AuthorHandler
	authHandler   *api.AuthHandler
}

// newApplication loads configuration and wires every component the server
// needs: logging, the database connection, stores, auth services, and the
// HTTP handlers.
func newApplication() (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"environment", cfg.Server.Environment,
		"google_oauth_configured", cfg.Google.Configured())

	db, err := setupDatabase(cfg, appLogger)
	if err != nil {
		return nil, err
	}

	app := &application{
		config: cfg,
		logger: appLogger,
		db:     db,
	}

	app.bookStore = postgres.NewPostgresBookStore(db, appLogger)
	app.authorStore = postgres.NewPostgresAuthorStore(db, appLogger)
	app.userStore = postgres.NewPostgresUserStore(db, appLogger)

	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}
	app.passwordHasher = auth.NewBcryptVerifier(cfg.Auth.BcryptCost)
	app.googleProvider = auth.NewGoogleProvider(cfg.Google, app.userStore)

	app.bookHandler = api.NewBookHandler(app.bookStore, appLogger)
	app.authorHandler = api.NewAuthorHandler(app.authorStore, appLogger)
	app.authHandler = api.NewAuthHandler(
		app.userStore,
		app.jwtService,
		app.passwordHasher,
		app.passwordHasher,
		app.googleProvider,
		appLogger,
		cfg.Server.IsProduction(),
	)

	return app, nil
}

// cleanup releases resources held by the application. Safe to call more than
// once.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Failed to close database connection", "error", err)
		}
		app.db = nil
	}
}
