// Package config loads process configuration once at startup.
//
// Everything the server needs is collected into a single Config struct and
// passed down explicitly — no package reads the environment on its own.
// This keeps configuration visible at the composition root and makes every
// component trivially testable (construct a Config literal, done).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Defaults applied when the corresponding variable is unset.
const (
	DefaultPort        = 8000
	DefaultDBPath      = "data/notas.db"
	DefaultTokenExpiry = 24 * time.Hour
)

// Config holds everything read from the environment.
type Config struct {
	Port           int
	DBPath         string
	JWTSecret      string
	TokenExpiry    time.Duration
	AllowedOrigins []string
}

// Load reads configuration from the environment, after loading a .env file
// if one exists next to the binary. A missing .env is not an error — in
// production the variables come from the real environment.
//
// Variables:
//
//	PORT            listen port (default 8000)
//	DB_PATH         SQLite database file (default data/notas.db)
//	JWT_SECRET      token signing secret (required, min length checked by
//	                the token service)
//	TOKEN_EXPIRY    Go duration string, e.g. "24h", "30m" (default 24h)
//	ALLOWED_ORIGINS comma-separated CORS origins (default "*")
func Load() (Config, error) {
	// Ignore the error: .env is a development convenience only.
	_ = godotenv.Load()

	cfg := Config{
		Port:           DefaultPort,
		DBPath:         DefaultDBPath,
		TokenExpiry:    DefaultTokenExpiry,
		AllowedOrigins: []string{"*"},
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: invalid PORT %q: %w", v, err)
		}
		cfg.Port = port
	}

	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("config: JWT_SECRET is required")
	}

	if v := os.Getenv("TOKEN_EXPIRY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: invalid TOKEN_EXPIRY %q: %w", v, err)
		}
		if d <= 0 {
			return Config{}, fmt.Errorf("config: TOKEN_EXPIRY must be positive, got %q", v)
		}
		cfg.TokenExpiry = d
	}

	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		cfg.AllowedOrigins = origins
	}

	return cfg, nil
}
