// Package config reads ordercat settings from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = "ORDERCAT"

type Config struct {
	Sources     []string      `envconfig:"ORDERCAT_SOURCE"`
	RulesFile   string        `envconfig:"ORDERCAT_RULES_FILE"`
	LogLevel    string        `envconfig:"ORDERCAT_LOG_LEVEL" default:"warn" validate:"omitempty,oneof=trace debug info warn error fatal panic disabled"`
	LogFormat   string        `envconfig:"ORDERCAT_LOG_FORMAT" default:"console" validate:"omitempty,oneof=console json"`
	HTTPTimeout time.Duration `envconfig:"ORDERCAT_HTTP_TIMEOUT" default:"15s" validate:"gt=0"`
	Addr        string        `envconfig:"ORDERCAT_ADDR" default:":8080" validate:"required"`
}

var validate = validator.New()

// Load reads an optional .env file from the working directory, then the
// environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads the environment only.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.Sources = cleanSources(cfg.Sources)
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// SetSources replaces the source list from a comma-separated value.
func (c *Config) SetSources(raw string) {
	c.Sources = cleanSources(strings.Split(raw, ","))
}

func cleanSources(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
