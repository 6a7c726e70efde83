package database

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"
)

//go:embed migrations
var migrationsFS embed.FS

// RunMigrations applies the embedded migrations for the connection's dialect.
// Running it against an up-to-date schema is a no-op.
func RunMigrations(db *gorm.DB) error {
	dialect := db.Dialector.Name()

	src, err := iofs.New(migrationsFS, "migrations/"+dialect)
	if err != nil {
		return fmt.Errorf("load %s migrations: %w", dialect, err)
	}
	defer src.Close()

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	var driver migratedb.Driver
	switch dialect {
	case "postgres":
		ctx := context.Background()
		conn, connErr := sqlDB.Conn(ctx)
		if connErr != nil {
			return fmt.Errorf("acquire migration connection: %w", connErr)
		}
		// closes only the borrowed conn, never the pool
		defer conn.Close()
		driver, err = postgres.WithConnection(ctx, conn, &postgres.Config{MultiStatementEnabled: true})
	case "sqlite":
		driver, err = sqlite3.WithInstance(sqlDB, &sqlite3.Config{})
	default:
		return fmt.Errorf("no migrations for dialect %q", dialect)
	}
	if err != nil {
		return fmt.Errorf("init migration driver: %w", err)
	}

	// m.Close is not called: the sqlite driver would close the shared pool
	m, err := migrate.NewWithInstance("iofs", src, dialect, driver)
	if err != nil {
		return fmt.Errorf("init migrator: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
