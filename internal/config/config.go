// Package config loads the rdfkit command configuration.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/geoknoesis/rdfkit/rdf"
)

// Config is the command configuration.
type Config struct {
	// Format is the output format name.
	Format string `yaml:"format"`
	// Base is the base URI used for relative references.
	Base string `yaml:"base"`
	// Prefixes maps namespace prefixes to URIs.
	Prefixes map[string]string `yaml:"prefixes"`
	Log      LogConfig         `yaml:"log"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Format:   string(rdf.FormatTurtle),
		Prefixes: map[string]string{},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML file over the defaults and validates the result. An
// empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if cfg.Prefixes == nil {
		cfg.Prefixes = map[string]string{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration and reports every problem found.
func (c *Config) Validate() error {
	var errs []error
	if _, err := rdf.ParseFormat(c.Format); err != nil {
		errs = append(errs, fmt.Errorf("format: %w", err))
	}
	if c.Base != "" {
		if u, err := url.Parse(c.Base); err != nil || !u.IsAbs() {
			errs = append(errs, fmt.Errorf("base: %q is not an absolute URI", c.Base))
		}
	}
	for prefix, uri := range c.Prefixes {
		if uri == "" {
			errs = append(errs, fmt.Errorf("prefixes: %q has no URI", prefix))
		}
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level: unknown level %q", c.Log.Level))
	}
	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %w", errors.Join(errs...))
	}
	return nil
}

// OutputFormat returns the parsed output format.
func (c *Config) OutputFormat() (rdf.Format, error) {
	return rdf.ParseFormat(c.Format)
}

// Namespaces returns the configured prefixes as a namespace manager.
func (c *Config) Namespaces() *rdf.Namespaces {
	return rdf.NewNamespacesFromMap(c.Prefixes)
}

// SetPrefix parses a "prefix=uri" binding and adds it.
func (c *Config) SetPrefix(binding string) error {
	prefix, uri, ok := strings.Cut(binding, "=")
	if !ok || uri == "" {
		return fmt.Errorf("invalid prefix binding %q, want prefix=uri", binding)
	}
	if c.Prefixes == nil {
		c.Prefixes = map[string]string{}
	}
	c.Prefixes[strings.TrimSpace(prefix)] = strings.TrimSpace(uri)
	return nil
}
