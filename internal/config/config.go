// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Prefix is prepended to every variable name: DIFFEQ_PORT, DIFFEQ_CACHE_TTL...
const Prefix = "DIFFEQ"

// Config holds the application configuration. Variable names come from the
// field names; an envconfig tag is also read unprefixed (PATH, PORT).
type Config struct {
	Port     int    `default:"5001"`
	Version  string `default:"1.0.0"`
	LogLevel string `split_words:"true" default:"info"`
	// LogFormat is "text" or "json".
	LogFormat string `split_words:"true" default:"text"`

	Cache     Cache
	RateLimit RateLimit
	Otel      Otel

	// CORSOrigins is a comma-separated list; "*" allows any origin.
	CORSOrigins []string `split_words:"true" default:"*"`
}

// Cache configures the response cache (DIFFEQ_CACHE_*). An empty Path keeps
// entries in memory only.
type Cache struct {
	Size    int           `default:"512"`
	TTL     time.Duration `default:"5m"`
	Path    string
	Cleanup time.Duration `default:"1h"`
}

// RateLimit bounds requests per remote address (DIFFEQ_RATELIMIT_*).
// PerHour <= 0 disables it; Burst <= 0 allows PerHour requests at once.
type RateLimit struct {
	PerHour int `split_words:"true" default:"50"`
	Burst   int
	// Clients is how many remote addresses are tracked at once.
	Clients int `default:"4096"`
	// TrustProxy takes the client address from X-Forwarded-For.
	TrustProxy bool `split_words:"true"`
}

// Otel configures the OTLP metrics exporter (DIFFEQ_OTEL_*). Metrics are off
// without an endpoint.
type Otel struct {
	Endpoint string
	Insecure bool
}

// Load reads files (".env" when none are given) into the environment and
// then processes DIFFEQ_* variables. Missing files are ignored; variables
// already set win over file contents.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Enabled reports whether metrics should be exported.
func (o Otel) Enabled() bool { return o.Endpoint != "" }
