package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIAddress string

	PostgresAddress  string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
	MigrationsDir    string

	JWTSecret string
	JWTTTL    time.Duration

	// share links are built on top of it
	ClientURL   string
	CORSOrigins []string

	LogLevel  string
	LogFormat string
	// empty means stdout only
	LogFile string

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Load reads envFile into the process environment when it exists and then
// builds Config from the environment. Variables already set win over the
// file.
func Load(envFile string) (*Config, error) {
	cfg, err := LoadDatabase(envFile)
	if err != nil {
		return nil, err
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}
	if cfg.JWTTTL <= 0 {
		return nil, errors.New("JWT_TTL must be positive")
	}
	switch cfg.LogFormat {
	case "json", "text":
	default:
		return nil, errors.New("unsupported LOG_FORMAT: " + cfg.LogFormat)
	}
	return cfg, nil
}

// LoadDatabase is Load without the checks of API-only settings, for tools
// that only talk to postgres.
func LoadDatabase(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, errors.New("loading envs error: " + err.Error())
		}
	}
	cfg := &Config{
		APIAddress:       getEnv("API_ADDRESS", ":8080"),
		PostgresAddress:  getEnv("POSTGRES_DB_ADDRESS", "localhost:5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "postgres"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", ""),
		PostgresDB:       getEnv("POSTGRES_DB", "habitrack"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		MigrationsDir:    getEnv("MIGRATIONS_DIR", "./migrations"),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTTTL:           getDurationEnv("JWT_TTL", 24*time.Hour),
		ClientURL:        strings.TrimRight(getEnv("CLIENT_URL", "http://localhost:3000"), "/"),
		LogLevel:         strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:        strings.ToLower(getEnv("LOG_FORMAT", "json")),
		LogFile:          getEnv("LOG_FILE", ""),
		ReadTimeout:      getDurationEnv("HTTP_READ_TIMEOUT", 10*time.Second),
		WriteTimeout:     getDurationEnv("HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:      getDurationEnv("HTTP_IDLE_TIMEOUT", time.Minute),
		ShutdownTimeout:  getDurationEnv("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
	cfg.CORSOrigins = splitAndTrim(getEnv("CORS_ORIGINS", cfg.ClientURL))
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}
