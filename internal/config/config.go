// Package config handles loading and parsing application configuration.
// It supports two sources (in priority order):
//  1. An environment variable:  CONFIG_PATH=/path/to/config.yaml
//  2. A command-line flag:      --config=/path/to/config.yaml
//
// Every value in the file can be overridden by the environment variable
// named in its env:"..." tag.
package config

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Source kinds.
const (
	SourceJSON   = "json"
	SourceSQLite = "sqlite"
)

// Config is the root configuration structure.
type Config struct {
	// Env controls log format and verbosity.
	// Valid values: "dev", "staging", "prod"
	Env string `yaml:"env" env:"ENV" env-required:"true"`

	// Source is where the initial student snapshot is read from.
	Source Source `yaml:"source"`

	// Store tunes the in-memory record store.
	Store Store `yaml:"store"`

	// Metrics controls the /metrics endpoint.
	Metrics Metrics `yaml:"metrics"`

	HTTPServer `yaml:"http_server"`
}

// Source selects and locates the seed data.
type Source struct {
	// Kind is "json" (a students.json file) or "sqlite" (a database file).
	Kind string `yaml:"kind" env:"SOURCE_KIND" env-default:"json"`
	Path string `yaml:"path" env:"SOURCE_PATH" env-required:"true"`
}

// Store holds record store options.
type Store struct {
	// Strict turns update/delete of an unknown id into a not-found error
	// instead of a silent no-op.
	Strict bool `yaml:"strict" env:"STORE_STRICT" env-default:"false"`
}

// Metrics holds Prometheus exposition settings. Metrics are served unless
// disabled.
type Metrics struct {
	Disabled bool `yaml:"disabled" env:"METRICS_DISABLED" env-default:"false"`
}

// HTTPServer holds settings specific to the HTTP server.
type HTTPServer struct {
	// Addr is the TCP address the server listens on, e.g. "localhost:8082".
	Addr string `yaml:"address" env:"HTTP_SERVER_ADDR" env-required:"true"`
}

// Validate checks values cleanenv cannot express as tags.
func (c *Config) Validate() error {
	switch c.Source.Kind {
	case SourceJSON, SourceSQLite:
		return nil
	default:
		return fmt.Errorf("unknown source kind %q: use %q or %q", c.Source.Kind, SourceJSON, SourceSQLite)
	}
}

// Load reads the config file at path, applies environment overrides and
// validates the result.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", path)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MustLoad reads, validates, and returns the application config.
//
// Functions prefixed with "Must" are allowed to fatal on failure: if this
// returns, the config is valid.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")

	if configPath == "" {
		flags := flag.String("config", "", "Path to the configuration YAML file")
		flag.Parse()
		configPath = *flags
	}

	if configPath == "" {
		log.Fatal("config path is not set: use --config flag or CONFIG_PATH env var")
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatal(err)
	}
	return cfg
}
