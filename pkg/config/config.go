// Package config loads the proxy configuration from an optional YAML file
// and the environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDomain    = "example.com"
	DefaultPort      = "8080"
	DefaultUserAgent = "wikiproxy/1.0 (+https://github.com/andesco/wikiproxy)"
	DefaultTimeout   = 15
)

// Config is read once at startup and never changed afterwards.
type Config struct {
	// Domain is the proxy domain that replaces ".org", e.g. "example.com".
	// Include the port when clients reach the proxy on a non-default one.
	Domain string `yaml:"domain"`
	// RewriteInPageURL enables rewriting of absolute links to project hosts.
	// Root-relative links are always rewritten.
	RewriteInPageURL bool   `yaml:"rewrite_in_page_url"`
	Port             string `yaml:"port"`
	// UpstreamScheme is used for every upstream fetch.
	UpstreamScheme string `yaml:"upstream_scheme"`
	// Timeout is the upstream request timeout in seconds.
	Timeout     int    `yaml:"timeout"`
	UserAgent   string `yaml:"user_agent"`
	MetricsAddr string `yaml:"metrics_addr"`
	Log         Log    `yaml:"log"`
}

type Log struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
	// URLs logs every translated URL at debug level.
	URLs bool `yaml:"urls"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Domain:         DefaultDomain,
		Port:           DefaultPort,
		UpstreamScheme: "https",
		Timeout:        DefaultTimeout,
		UserAgent:      DefaultUserAgent,
		Log:            Log{Level: "info"},
	}
}

// Load builds the configuration from defaults, the YAML file at path (if
// path is not empty) and environment overrides, then validates it.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file '%s': %w", path, err)
		}
		if err := decode(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("syntax error in config file '%s': %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Domain = getenv("DOMAIN", c.Domain)
	c.Port = getenv("PORT", c.Port)
	c.UpstreamScheme = getenv("UPSTREAM_SCHEME", c.UpstreamScheme)
	c.UserAgent = getenv("USER_AGENT", c.UserAgent)
	c.MetricsAddr = getenv("METRICS_ADDR", c.MetricsAddr)
	c.Log.Level = getenv("LOG_LEVEL", c.Log.Level)

	if v, ok := os.LookupEnv("REWRITE_IN_PAGE_URL"); ok {
		c.RewriteInPageURL = parseBool(v)
	}
	if v, ok := os.LookupEnv("LOG_PRETTY"); ok {
		c.Log.Pretty = parseBool(v)
	}
	if v, ok := os.LookupEnv("LOG_URLS"); ok {
		c.Log.URLs = parseBool(v)
	}
	if v, ok := os.LookupEnv("HTTP_TIMEOUT"); ok && v != "" {
		timeout, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid HTTP_TIMEOUT '%s': %w", v, err)
		}
		c.Timeout = timeout
	}
	return nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.Domain == "":
		return errors.New("domain must not be empty")
	case strings.Contains(c.Domain, "://"), strings.ContainsAny(c.Domain, "/?#"):
		return fmt.Errorf("domain '%s' must be a bare host, without scheme or path", c.Domain)
	case c.UpstreamScheme != "http" && c.UpstreamScheme != "https":
		return fmt.Errorf("upstream scheme must be http or https, got '%s'", c.UpstreamScheme)
	case c.Timeout <= 0:
		return fmt.Errorf("timeout must be positive, got %d", c.Timeout)
	case c.Port == "":
		return errors.New("port must not be empty")
	}
	return nil
}

// HTTPTimeout returns Timeout as a duration.
func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

func getenv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

// parseBool accepts "yes" in addition to the strconv forms.
func parseBool(v string) bool {
	if strings.EqualFold(v, "yes") {
		return true
	}
	b, _ := strconv.ParseBool(v)
	return b
}
