package config

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"SERVER_PORT", "DB_DRIVER", "DB_PATH", "ALLOWED_ORIGINS", "NATS_URL", "NATS_SUBJECT_PREFIX", "LOG_LEVEL"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg := Load()

	assert.Equal(t, "5000", cfg.ServerPort)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "data/notes.db", cfg.DBPath)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Empty(t, cfg.NATSURL)
	assert.Equal(t, "tasks", cfg.NATSSubject)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test ,")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := Load()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, 50, cfg.DBMaxOpenConns)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Contains(t, cfg.PostgresDSN(), "host=db ")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelWarn, parseLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLevel("ERROR"))
	assert.Equal(t, slog.LevelInfo, parseLevel("chatty"))
}
