package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/hupe1980/navmesh/logging"
)

// Config holds the settings recognised by navmesh.NewFromConfig.
type Config struct {
	LogLevel          string `env:"NAVMESH_LOG_LEVEL"          envDefault:"info"`
	LogFormat         string `env:"NAVMESH_LOG_FORMAT"         envDefault:"text"`
	LogSource         bool   `env:"NAVMESH_LOG_SOURCE"         envDefault:"false"`
	SelectOnInsert    bool   `env:"NAVMESH_SELECT_ON_INSERT"   envDefault:"true"`
	DeferredDiscovery bool   `env:"NAVMESH_DEFERRED_DISCOVERY" envDefault:"true"`
	OTelEnabled       bool   `env:"NAVMESH_OTEL_ENABLED"       envDefault:"true"`
	OTelEndpoint      string `env:"NAVMESH_OTEL_ENDPOINT"`
	ServiceName       string `env:"NAVMESH_SERVICE_NAME"       envDefault:"navmesh"`
}

// ParseEnv parses environment variables into the provided struct.
func ParseEnv(v any) error {
	if err := env.Parse(v); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads a Config from the environment and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the configuration an empty environment produces.
func Default() Config {
	return Config{
		LogLevel:          "info",
		LogFormat:         "text",
		SelectOnInsert:    true,
		DeferredDiscovery: true,
		OTelEnabled:       true,
		ServiceName:       "navmesh",
	}
}

// Validate rejects values the loggers cannot honour.
func (c Config) Validate() error {
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("config: invalid log format %q", c.LogFormat)
	}
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("config: invalid log level %q", c.LogLevel)
	}
	return nil
}

// Level returns the parsed log level.
func (c Config) Level() logging.LogLevel {
	return logging.ParseLevel(c.LogLevel)
}

// TracingEndpoint returns the OTLP endpoint, or "" when tracing is disabled.
func (c Config) TracingEndpoint() string {
	if !c.OTelEnabled {
		return ""
	}
	return c.OTelEndpoint
}
