// Package config loads server configuration from YAML and the environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// Backend names accepted by Storage.Backend.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config is the full server configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Storage   StorageConfig   `koanf:"storage"`
	Bot       BotConfig       `koanf:"bot"`
	RateLimit RateLimitConfig `koanf:"ratelimit"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	ListenAddr      string        `koanf:"listen_addr"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// StorageConfig selects and parameterizes the persistence backend.
type StorageConfig struct {
	Backend string `koanf:"backend"`
	// Path is the data directory for the file backend or the database
	// file for the sqlite backend. Unused by the memory backend.
	Path string `koanf:"path"`
}

// BotConfig tunes the conversation engine.
type BotConfig struct {
	PageSize     int `koanf:"page_size"`
	PreviewRunes int `koanf:"preview_runes"`
}

// RateLimitConfig tunes per-user event throttling. Disabled when
// EventsPerSecond is zero.
type RateLimitConfig struct {
	EventsPerSecond float64       `koanf:"events_per_second"`
	Burst           int           `koanf:"burst"`
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
}

// Load reads configuration with the precedence env > YAML file > defaults.
// A missing file is not an error; a malformed one is.
//
// Environment variables map section_field to section.field, for example
// SERVER_LISTEN_ADDR -> server.listen_addr.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath != "" {
		content, err := os.ReadFile(configPath)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config file %s: %w", configPath, err)
			}
		} else if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", configPath, err)
		}
	}

	// Split on the first underscore only: section, then field name.
	if err := k.Load(env.Provider("", ".", func(s string) string {
		lower := strings.ToLower(s)
		parts := strings.SplitN(lower, "_", 2)
		if len(parts) == 1 {
			return lower
		}
		return parts[0] + "." + parts[1]
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = ":8080"
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}

	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = BackendMemory
	}

	if cfg.Bot.PageSize == 0 {
		cfg.Bot.PageSize = 5
	}
	if cfg.Bot.PreviewRunes == 0 {
		cfg.Bot.PreviewRunes = 150
	}

	if cfg.RateLimit.EventsPerSecond > 0 {
		if cfg.RateLimit.Burst == 0 {
			cfg.RateLimit.Burst = 10
		}
		if cfg.RateLimit.CleanupInterval == 0 {
			cfg.RateLimit.CleanupInterval = time.Hour
		}
	}
}

// Validate rejects configurations the server cannot run with.
func (cfg *Config) Validate() error {
	switch cfg.Storage.Backend {
	case BackendMemory:
	case BackendFile, BackendSQLite:
		if cfg.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for the %s backend", cfg.Storage.Backend)
		}
	default:
		return fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	if cfg.Bot.PageSize < 1 {
		return fmt.Errorf("bot.page_size must be positive, got %d", cfg.Bot.PageSize)
	}
	if cfg.Bot.PreviewRunes < 1 {
		return fmt.Errorf("bot.preview_runes must be positive, got %d", cfg.Bot.PreviewRunes)
	}

	if cfg.RateLimit.EventsPerSecond < 0 {
		return fmt.Errorf("ratelimit.events_per_second must not be negative")
	}
	if cfg.RateLimit.EventsPerSecond > 0 && cfg.RateLimit.Burst < 1 {
		return fmt.Errorf("ratelimit.burst must be positive when rate limiting is enabled")
	}
	return nil
}
