package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Env names read by Load.
const (
	EnvPrefix     = "MEETGLOBE_"
	EnvConfigFile = "MEETGLOBE_CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if MEETGLOBE_CONFIG is set
//  3. env (prefix MEETGLOBE_)
func Load(_ context.Context) (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// MEETGLOBE_STORAGE_DRIVER -> storage_driver; underscores are kept to
	// match the flat koanf tags.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := New()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	cfg.CORSOrigins = splitList(cfg.CORSOrigins)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// splitList expands comma separated entries, which is how lists arrive
// from env vars.
func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return invalid("addr must not be empty")
	}
	switch c.StorageDriver {
	case DriverMemory:
	case DriverFile:
		if c.StorageDir == "" {
			return invalid("storage_dir is required for the file driver")
		}
	case DriverRedis:
		if c.RedisURL == "" {
			return invalid("redis_url is required for the redis driver")
		}
	case DriverPostgres:
		if c.PostgresDSN == "" {
			return invalid("postgres_dsn is required for the postgres driver")
		}
	default:
		return invalid("unknown storage_driver %q", c.StorageDriver)
	}
	switch c.CitiesSource {
	case SourceFile:
		if c.CitiesPath == "" {
			return invalid("cities_path is required for the file source")
		}
	case SourcePostgres:
		if c.PostgresDSN == "" {
			return invalid("postgres_dsn is required for the postgres city source")
		}
	default:
		return invalid("unknown cities_source %q", c.CitiesSource)
	}
	if c.MaxParticipants < 1 {
		return invalid("max_participants must be positive")
	}
	if c.MaxTitleLength < 1 {
		return invalid("max_title_length must be positive")
	}
	if c.PublishWorkers < 1 {
		return invalid("publish_workers must be positive")
	}
	if c.EventQueueSize < 1 {
		return invalid("event_queue_size must be positive")
	}
	return nil
}
