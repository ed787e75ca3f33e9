package main

import (
	"fmt"
	"log/slog"

	"github.com/pressly/goose/v3"

	"github.com/libris-project/libris-api/migrations"
)

// migrationTableName is the table goose uses to track applied versions.
const migrationTableName = "schema_migrations"

// slogGooseLogger forwards goose output to the structured logger.
type slogGooseLogger struct{}

func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	slog.Info(fmt.Sprintf(format, v...), "component", "goose")
}

func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	slog.Error(fmt.Sprintf(format, v...), "component", "goose")
}

// runMigrations executes the given migration command (up, down, status)
// against the embedded migration files.
func (app *application) runMigrations(command string) error {
	goose.SetLogger(&slogGooseLogger{})
	goose.SetBaseFS(migrations.FS)
	goose.SetTableName(migrationTableName)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	app.logger.Info("Running migration command", "command", command)

	var err error
	switch command {
	case "up":
		err = goose.Up(app.db, ".")
	case "down":
		err = goose.Down(app.db, ".")
	case "status":
		err = goose.Status(app.db, ".")
	default:
		return fmt.Errorf("unknown migration command %q (want up, down, or status)", command)
	}
	if err != nil {
		return fmt.Errorf("migration command %q failed: %w", command, err)
	}

	app.logger.Info("Migration command completed", "command", command)
	return nil
}
