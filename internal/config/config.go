// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds runtime settings shared by the CLI and the server.
// Command-line flags take precedence over these values.
type Config struct {
	DBPath        string        `env:"CREASE_DB_PATH"        envDefault:"crease.db"`
	RedisAddr     string        `env:"CREASE_REDIS_ADDR"`
	MirrorChannel string        `env:"CREASE_MIRROR_CHANNEL" envDefault:"crease:matches"`
	ListenAddr    string        `env:"CREASE_LISTEN_ADDR"    envDefault:":8080"`
	WriteTimeout  time.Duration `env:"CREASE_WRITE_TIMEOUT"  envDefault:"10s"`
	MatchID       string        `env:"CREASE_MATCH_ID"`
}

// Load reads Config from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// MirrorEnabled reports whether snapshots should be published to redis.
func (c Config) MirrorEnabled() bool {
	return c.RedisAddr != ""
}
