package database

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"notes/internal/config"
)

// Open connects to the configured database and migrates the schema.
func Open(cfg *config.Config, log *slog.Logger) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	logMode := logger.Silent
	if cfg.LogLevel <= slog.LevelDebug {
		logMode = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 logger.Default.LogMode(logMode),
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	if cfg.DBDriver == config.DriverSQLite {
		// sqlite serialises writers; one connection avoids SQLITE_BUSY
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
		sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	}

	log.Info("running database migrations", "driver", cfg.DBDriver)
	if err := RunMigrations(db); err != nil {
		Close(db, log)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}

func Close(db *gorm.DB, log *slog.Logger) {
	if db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Error("failed to get database connection", "error", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Error("failed to close database connection", "error", err)
	}
}

func dialectorFor(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		return postgres.Open(cfg.PostgresDSN()), nil
	case config.DriverSQLite:
		if err := ensureDir(cfg.DBPath); err != nil {
			return nil, err
		}
		return sqlite.Open(fmt.Sprintf("file:%s?_busy_timeout=5000", cfg.DBPath)), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

func ensureDir(dbPath string) error {
	dir := filepath.Dir(dbPath)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
