// Package appconf assembles the run configuration from defaults, the
// environment (optionally seeded from a .env file), a YAML file and command
// line flags, in increasing order of precedence.
package appconf

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/busnet/transitcat/internal/router"
)

// EnvPrefix prefixes every environment variable read by Config.
const EnvPrefix = "TRANSITCAT_"

// Config is the run configuration.
type Config struct {
	Env         Environment
	LogLevel    string `validate:"omitempty,oneof=debug info warn error"`
	Indent      int    `validate:"gte=0,lte=16"`
	MetricsFile string
	GTFSPath    string
	// Routing is used when the request document has no routing_settings.
	Routing *router.Settings
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Env:    Development,
		Indent: 0,
	}
}

// Validate checks field ranges and the routing fallback, if any.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Routing != nil {
		if err := c.Routing.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
	}
	return nil
}

// EffectiveLogLevel returns the configured level or the environment's
// default.
func (c Config) EffectiveLogLevel() string {
	if c.LogLevel != "" {
		return c.LogLevel
	}
	return c.Env.DefaultLogLevel()
}

// fileConfig mirrors Config with optional fields so that a file only
// overrides what it sets.
type fileConfig struct {
	Env         *Environment     `yaml:"env"`
	LogLevel    *string          `yaml:"log_level"`
	Indent      *int             `yaml:"indent"`
	MetricsFile *string          `yaml:"metrics_file"`
	GTFSPath    *string          `yaml:"gtfs"`
	Routing     *router.Settings `yaml:"routing_settings"`
}

func (f fileConfig) applyTo(c *Config) {
	if f.Env != nil {
		c.Env = *f.Env
	}
	if f.LogLevel != nil {
		c.LogLevel = *f.LogLevel
	}
	if f.Indent != nil {
		c.Indent = *f.Indent
	}
	if f.MetricsFile != nil {
		c.MetricsFile = *f.MetricsFile
	}
	if f.GTFSPath != nil {
		c.GTFSPath = *f.GTFSPath
	}
	if f.Routing != nil {
		routing := *f.Routing
		c.Routing = &routing
	}
}

// ApplyFile overlays the YAML file at path onto c.
func (c *Config) ApplyFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("failed to stat config file: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var f fileConfig
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("failed to parse YAML config: %w", err)
	}
	f.applyTo(c)
	return nil
}

// LoadDotEnv exports the variables in the .env file at path into the
// process environment without overriding variables that are already set.
// A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overlays TRANSITCAT_* variables onto c.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		if !ok || strings.TrimSpace(v) == "" {
			return "", false
		}
		return strings.TrimSpace(v), true
	}

	if v, ok := get("ENV"); ok {
		env, err := EnvFromString(v)
		if err != nil {
			return fmt.Errorf("%sENV: %w", EnvPrefix, err)
		}
		c.Env = env
	}
	if v, ok := get("LOG_LEVEL"); ok {
		c.LogLevel = strings.ToLower(v)
	}
	if v, ok := get("INDENT"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sINDENT: %w", EnvPrefix, err)
		}
		c.Indent = n
	}
	if v, ok := get("METRICS_FILE"); ok {
		c.MetricsFile = v
	}
	if v, ok := get("GTFS"); ok {
		c.GTFSPath = v
	}

	wait, hasWait := get("BUS_WAIT_TIME")
	velocity, hasVelocity := get("BUS_VELOCITY")
	if hasWait || hasVelocity {
		routing := router.Settings{}
		if c.Routing != nil {
			routing = *c.Routing
		}
		if hasWait {
			n, err := strconv.Atoi(wait)
			if err != nil {
				return fmt.Errorf("%sBUS_WAIT_TIME: %w", EnvPrefix, err)
			}
			routing.BusWaitTime = n
		}
		if hasVelocity {
			f, err := strconv.ParseFloat(velocity, 64)
			if err != nil {
				return fmt.Errorf("%sBUS_VELOCITY: %w", EnvPrefix, err)
			}
			routing.BusVelocity = f
		}
		c.Routing = &routing
	}
	return nil
}

// Sources lists where Load reads configuration from. Empty paths are
// skipped.
type Sources struct {
	DotEnvPath string
	ConfigPath string
	Lookup     LookupFunc
}

// Load builds a Config from defaults, the environment and the config file.
// Flags are applied by the caller afterwards, followed by Validate.
func Load(src Sources) (Config, error) {
	cfg := Default()

	if err := LoadDotEnv(src.DotEnvPath); err != nil {
		return Config{}, err
	}
	lookup := src.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if err := cfg.ApplyEnv(lookup); err != nil {
		return Config{}, err
	}
	if src.ConfigPath != "" {
		if err := cfg.ApplyFile(src.ConfigPath); err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}
