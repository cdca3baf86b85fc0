// Package config loads questline configuration from defaults, an optional
// YAML file, and QUESTLINE_-prefixed environment variables, in that order of
// increasing priority.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
)

// EnvPrefix is stripped from environment variables before mapping them onto
// config keys: QUESTLINE_AUTH_NONCE_TTL becomes auth.nonce.ttl.
const EnvPrefix = "QUESTLINE_"

// Config is the root configuration for the questline server.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Log      LogConfig      `koanf:"log"`
	Redis    RedisConfig    `koanf:"redis"`
	Postgres PostgresConfig `koanf:"postgres"`
	Auth     AuthConfig     `koanf:"auth"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr string `koanf:"addr"`
}

// LogConfig configures process logging.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// RedisConfig configures the ephemeral store connection.
type RedisConfig struct {
	URL string `koanf:"url"`
}

// PostgresConfig configures the durable store connection.
type PostgresConfig struct {
	URL string `koanf:"url"`
}

// AuthConfig holds the credential lifetimes.
type AuthConfig struct {
	Nonce LedgerConfig `koanf:"nonce"`
	Token LedgerConfig `koanf:"token"`
}

// LedgerConfig holds the TTL for one ledger.
type LedgerConfig struct {
	TTL time.Duration `koanf:"ttl"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Addr: ":9000"},
		Log:    LogConfig{Level: "info", Format: "json"},
		Redis:  RedisConfig{URL: "redis://localhost:6379/0"},
		Postgres: PostgresConfig{
			URL: "postgres://localhost:5432/questline?sslmode=disable",
		},
		Auth: AuthConfig{
			Nonce: LedgerConfig{TTL: 2 * time.Minute},
			Token: LedgerConfig{TTL: 30 * time.Minute},
		},
	}
}

// Load builds the configuration from defaults, then the YAML file at path if
// path is non-empty, then environment variables.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	// QUESTLINE_AUTH_NONCE_TTL -> auth.nonce.ttl
	envTransformer := func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		s = strings.ToLower(s)
		s = strings.ReplaceAll(s, "_", ".")
		return s
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformer), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("config: server.addr must not be empty")
	}
	if c.Redis.URL == "" {
		return fmt.Errorf("config: redis.url must not be empty")
	}
	if c.Postgres.URL == "" {
		return fmt.Errorf("config: postgres.url must not be empty")
	}
	if c.Auth.Nonce.TTL <= 0 {
		return fmt.Errorf("config: auth.nonce.ttl must be positive, got %s", c.Auth.Nonce.TTL)
	}
	if c.Auth.Token.TTL <= 0 {
		return fmt.Errorf("config: auth.token.ttl must be positive, got %s", c.Auth.Token.TTL)
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.Log.Level)); err != nil {
		return fmt.Errorf("config: log.level %q is not a valid level: %w", c.Log.Level, err)
	}
	return nil
}
