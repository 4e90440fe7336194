package database

import (
	"embed"
	"errors"
	"log"

	"eventhub/internal/platform/config"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrate applies the embedded schema migrations. Safe to call on every
// startup; a no-op when the schema is current.
func Migrate() {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		log.Fatalf("Error loading embedded migrations: %v", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, config.AppConfig.DBURL)
	if err != nil {
		log.Fatalf("Error initializing migrations: %v", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalf("Error applying migrations: %v", err)
	}
	log.Println("Database schema is up to date.")
}
