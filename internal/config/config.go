// Package config loads the server configuration: defaults, then an optional
// YAML file, then ADMINGEN_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-admingen/pkg/crud"
)

// EnvPrefix prefixes every environment variable.
const EnvPrefix = "ADMINGEN_"

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Definitions DefinitionsConfig `yaml:"definitions"`
	Storage     StorageConfig     `yaml:"storage"`
	Logging     LoggingConfig     `yaml:"logging"`
	Admin       AdminConfig       `yaml:"admin"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"             env:"ADDR"`
	BasePath        string        `yaml:"base_path"        env:"BASE_PATH"`
	APIPath         string        `yaml:"api_path"         env:"API_PATH"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

// DefinitionsConfig says where entities come from. An empty Dir with no
// Sources serves the bundled demo definitions.
type DefinitionsConfig struct {
	Dir       string   `yaml:"dir"       env:"DEFINITIONS_DIR"`
	Sources   []string `yaml:"sources"   env:"DEFINITION_SOURCES" envSeparator:","`
	Overrides string   `yaml:"overrides" env:"OVERRIDES_FILE"`
	Seed      bool     `yaml:"seed"      env:"SEED"`
}

// StorageConfig selects the record store.
type StorageConfig struct {
	Driver string `yaml:"driver" env:"STORAGE_DRIVER"`
	DSN    string `yaml:"dsn"    env:"STORAGE_DSN"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"`  // debug, info, warn, error
	Format string `yaml:"format" env:"LOG_FORMAT"` // console, json
}

// AdminConfig tunes the generated admin.
type AdminConfig struct {
	PageSize     int           `yaml:"page_size"     env:"PAGE_SIZE"`
	RelationTTL  time.Duration `yaml:"relation_ttl"  env:"RELATION_TTL"`
	BulkPolicy   string        `yaml:"bulk_policy"   env:"BULK_POLICY"`
	Theme        string        `yaml:"theme"         env:"THEME"`
	ThemeVariant string        `yaml:"theme_variant" env:"THEME_VARIANT"`
	Renderer     string        `yaml:"renderer"      env:"RENDERER"`
}

// DefaultConfig returns a Config populated with the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			BasePath:        "/admin",
			APIPath:         "/api",
			ShutdownTimeout: 10 * time.Second,
		},
		Definitions: DefinitionsConfig{Seed: true},
		Storage:     StorageConfig{Driver: "memory"},
		Logging:     LoggingConfig{Level: "info", Format: "console"},
		Admin: AdminConfig{
			PageSize:    crud.DefaultPageSize,
			RelationTTL: 5 * time.Minute,
			BulkPolicy:  "abort",
			Theme:       "default",
		},
	}
}

// Load reads the YAML file at path (skipped when path is empty) and applies
// the process environment on top.
func Load(path string) (*Config, error) {
	return LoadWithEnv(path, nil)
}

// LoadWithEnv is Load with an explicit environment. A nil environ reads the
// process environment.
func LoadWithEnv(path string, environ map[string]string) (*Config, error) {
	cfg := DefaultConfig()

	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("config: parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("invalid log level %q (must be debug, info, warn or error)", c.Logging.Level))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("invalid log format %q (must be console or json)", c.Logging.Format))
	}
	switch strings.ToLower(c.Storage.Driver) {
	case "memory", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("invalid storage driver %q (must be memory or sqlite)", c.Storage.Driver))
	}
	if _, err := crud.ParseBulkPolicy(c.Admin.BulkPolicy); err != nil {
		errs = append(errs, err)
	}
	if c.Admin.PageSize < 1 || c.Admin.PageSize > crud.MaxPageSize {
		errs = append(errs, fmt.Errorf("page size %d out of range 1..%d", c.Admin.PageSize, crud.MaxPageSize))
	}
	if c.Admin.RelationTTL < 0 {
		errs = append(errs, errors.New("relation ttl must not be negative"))
	}
	if !strings.HasPrefix(c.Server.BasePath, "/") || !strings.HasPrefix(c.Server.APIPath, "/") {
		errs = append(errs, errors.New("base_path and api_path must start with /"))
	}
	return errors.Join(errs...)
}

// Policy returns the parsed bulk policy. Call after Validate.
func (c *Config) Policy() crud.BulkPolicy {
	policy, _ := crud.ParseBulkPolicy(c.Admin.BulkPolicy)
	return policy
}
