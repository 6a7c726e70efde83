package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	ServerPort     string
	DBDriver       string
	DBPath         string
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBMaxIdleConns int
	DBMaxOpenConns int
	AllowedOrigins []string
	NATSURL        string
	NATSSubject    string
	StaticDir      string
	LogLevel       slog.Level
	GinMode        string
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using system environment variables")
	}

	return &Config{
		ServerPort:     getEnv("SERVER_PORT", "5000"),
		DBDriver:       strings.ToLower(getEnv("DB_DRIVER", DriverSQLite)),
		DBPath:         getEnv("DB_PATH", "data/notes.db"),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "notes"),
		DBPassword:     getEnv("DB_PASSWORD", "notes"),
		DBName:         getEnv("DB_NAME", "notes"),
		DBMaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
		DBMaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 50),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "*")),
		NATSURL:        getEnv("NATS_URL", ""),
		NATSSubject:    getEnv("NATS_SUBJECT_PREFIX", "tasks"),
		StaticDir:      getEnv("STATIC_DIR", ""),
		LogLevel:       parseLevel(getEnv("LOG_LEVEL", "info")),
		GinMode:        getEnv("GIN_MODE", "release"),
	}
}

// PostgresDSN builds the connection string for the postgres driver.
func (c *Config) PostgresDSN() string {
	return "host=" + c.DBHost +
		" port=" + c.DBPort +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" sslmode=disable"
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		slog.Warn("invalid integer value, using default", "key", key, "default", defaultVal)
	}
	return defaultVal
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseLevel(raw string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return slog.LevelInfo
	}
	return level
}
