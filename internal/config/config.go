// Package config defines service configuration and its loading hooks.
package config

// Storage drivers accepted by StorageDriver.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// City dataset sources accepted by CitiesSource.
const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// StorageDriver selects the record store: memory, file, redis or postgres.
	StorageDriver string `koanf:"storage_driver"`

	// StorageDir is the root directory of the file store.
	StorageDir string `koanf:"storage_dir"`

	// RedisURL and RedisPrefix configure the redis store.
	RedisURL    string `koanf:"redis_url"`
	RedisPrefix string `koanf:"redis_prefix"`

	// PostgresDSN is used by the postgres store and the postgres city source.
	PostgresDSN string `koanf:"postgres_dsn"`

	// CitiesSource selects where the geocoded city dataset is read from.
	CitiesSource string `koanf:"cities_source"`

	// CitiesPath is the YAML or JSON dataset read by the file source.
	CitiesPath string `koanf:"cities_path"`

	// NATSURL enables lifecycle event publishing when set.
	NATSURL string `koanf:"nats_url"`

	// EventsSubjectPrefix is prepended to published subjects.
	EventsSubjectPrefix string `koanf:"events_subject_prefix"`

	// PublishWorkers is the number of goroutines publishing lifecycle events.
	PublishWorkers int `koanf:"publish_workers"`

	// EventQueueSize bounds the pending lifecycle events; extra events are dropped.
	EventQueueSize int `koanf:"event_queue_size"`

	// CORSOrigins lists allowed browser origins; comma separated in env.
	CORSOrigins []string `koanf:"cors_origins"`

	// MaxParticipants caps the roster size accepted by meeting creation.
	MaxParticipants int `koanf:"max_participants"`

	// MaxTitleLength caps meeting titles in characters.
	MaxTitleLength int `koanf:"max_title_length"`

	// ArcWarnThreshold logs a warning when a visualization has more points.
	ArcWarnThreshold int `koanf:"arc_warn_threshold"`

	// RequireResolvedCity drops participants whose city has no coordinates.
	RequireResolvedCity bool `koanf:"require_resolved_city"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		StorageDriver:       DriverMemory,
		StorageDir:          "data",
		RedisURL:            "redis://localhost:6379/0",
		RedisPrefix:         "meetglobe",
		CitiesSource:        SourceFile,
		CitiesPath:          "cities.yaml",
		EventsSubjectPrefix: "meetglobe",
		PublishWorkers:      1,
		EventQueueSize:      1024,
		CORSOrigins:         []string{"*"},
		MaxParticipants:     500,
		MaxTitleLength:      200,
		ArcWarnThreshold:    200,
	}
}
