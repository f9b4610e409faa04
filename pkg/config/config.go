package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr          string
	JWTSecret     []byte
	PasswordHash  string
	TokenTTL      time.Duration
	DotSyntax     bool
	StrictOffsets bool
	DBDriver      string
	DBDSN         string
	LogLevel      slog.Level
}

// Load reads a .env file into the environment, if there is one, and then
// the LINGOSCOPE_ variables.
func Load(path string) (*Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
	}

	cfg := &Config{
		Addr:         env("LINGOSCOPE_ADDR", ":8765"),
		PasswordHash: os.Getenv("LINGOSCOPE_PASSWORD_HASH"),
		DBDriver:     env("LINGOSCOPE_DB_DRIVER", "sqlite"),
		DBDSN:        os.Getenv("LINGOSCOPE_DB_DSN"),
	}

	if secret := os.Getenv("LINGOSCOPE_JWT_SECRET"); secret != "" {
		cfg.JWTSecret = []byte(secret)
	} else {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return nil, err
		}
		cfg.JWTSecret = []byte(hex.EncodeToString(buf))
	}

	var err error
	if cfg.TokenTTL, err = time.ParseDuration(env("LINGOSCOPE_TOKEN_TTL", "12h")); err != nil {
		return nil, fmt.Errorf("LINGOSCOPE_TOKEN_TTL: %w", err)
	}
	if cfg.DotSyntax, err = boolEnv("LINGOSCOPE_DOT_SYNTAX"); err != nil {
		return nil, err
	}
	if cfg.StrictOffsets, err = boolEnv("LINGOSCOPE_STRICT_OFFSETS"); err != nil {
		return nil, err
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(env("LINGOSCOPE_LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("LINGOSCOPE_LOG_LEVEL: %w", err)
	}

	switch cfg.DBDriver {
	case "sqlite", "mysql", "postgres":
	default:
		return nil, fmt.Errorf("LINGOSCOPE_DB_DRIVER: unsupported driver %q", cfg.DBDriver)
	}

	return cfg, nil
}

// Logger returns a text logger at the configured level.
func (c *Config) Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: c.LogLevel}))
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func boolEnv(key string) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
