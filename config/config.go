// Package config provides configuration management for the application.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file read when Load is given an empty path.
const DefaultPath = "config.yaml"

// Config holds the application configuration
type Config struct {
	Logging     LoggingConfig             `yaml:"logging"`
	Metrics     MetricsConfig             `yaml:"metrics"`
	Telemetry   TelemetryConfig           `yaml:"telemetry"`
	ToolSources ToolSourcesConfig         `yaml:"tool_sources"`
	Providers   map[string]ProviderConfig `yaml:"providers"`
}

// LoggingConfig holds logger configuration
type LoggingConfig struct {
	Level string `yaml:"level"`
	// Format is "auto", "json" or "pretty"
	Format string `yaml:"format"`
}

// MetricsConfig holds Prometheus configuration
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

// TelemetryConfig holds span recording configuration
type TelemetryConfig struct {
	Enabled  bool `yaml:"enabled"`
	LogSpans bool `yaml:"log_spans"`
}

// ToolSourcesConfig selects where the resolved-tools table is read from
type ToolSourcesConfig struct {
	// Type is "local" or "redis"
	Type  string                 `yaml:"type"`
	Local LocalToolSourcesConfig `yaml:"local"`
	Redis RedisToolSourcesConfig `yaml:"redis"`
}

// LocalToolSourcesConfig holds file store configuration
type LocalToolSourcesConfig struct {
	Path string `yaml:"path"`
}

// RedisToolSourcesConfig holds Redis store configuration
type RedisToolSourcesConfig struct {
	URL string `yaml:"url"`
	Key string `yaml:"key"`
	// TTL in seconds
	TTL int `yaml:"ttl"`
}

// ProviderConfig holds per-provider call defaults
type ProviderConfig struct {
	// Model is used when a call does not name one
	Model string `yaml:"model"`
	// Options are merged into the outbound provider options of every call
	Options map[string]any `yaml:"options"`
}

// LoadResult is the loaded configuration and where it came from
type LoadResult struct {
	Config *Config
	// Path is the config file that was read, empty when none was found
	Path string
}

// Load reads .env (if present), the YAML file at path (if present) and
// environment overrides, in that order of increasing precedence.
func Load(path string) (*LoadResult, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if path == "" {
		path = DefaultPath
	}

	cfg := buildDefaultConfig()
	result := &LoadResult{Config: cfg}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decodeYAML(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		result.Path = path
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return result, nil
}

func buildDefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info", Format: "auto"},
		Metrics: MetricsConfig{Namespace: "llmpipe"},
		Telemetry: TelemetryConfig{
			Enabled:  true,
			LogSpans: true,
		},
		ToolSources: ToolSourcesConfig{
			Type:  "local",
			Local: LocalToolSourcesConfig{Path: ".cache/tool_sources.json"},
			Redis: RedisToolSourcesConfig{Key: "llmpipe:tool_sources", TTL: 86400},
		},
		Providers: map[string]ProviderConfig{},
	}
}

// decodeYAML expands ${VAR} placeholders in every string scalar before
// decoding into cfg.
func decodeYAML(data []byte, cfg *Config) error {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return err
	}
	if root.Kind == 0 {
		return nil
	}
	expandNode(&root)
	return root.Decode(cfg)
}

func expandNode(n *yaml.Node) {
	if n.Kind == yaml.ScalarNode && n.Tag == "!!str" {
		expanded := expandString(n.Value)
		if expanded == n.Value {
			return
		}
		n.Value = expanded
		// plain scalars are re-resolved so ${TTL:-60} decodes into an int
		if n.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle) == 0 {
			n.Tag = ""
		}
		return
	}
	for _, c := range n.Content {
		expandNode(c)
	}
}

var placeholder = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}`)

// expandString replaces ${VAR} and ${VAR:-default}. A variable that is unset
// or empty takes the default; without a default the placeholder is kept.
func expandString(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return placeholder.ReplaceAllStringFunc(s, func(m string) string {
		groups := placeholder.FindStringSubmatch(m)
		name, hasDefault, def := groups[1], groups[2] != "", groups[3]
		if v := os.Getenv(name); v != "" {
			return v
		}
		if hasDefault {
			return def
		}
		return m
	})
}

func applyEnvOverrides(cfg *Config) error {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setBool := func(key string, dst *bool) error {
		v := os.Getenv(key)
		if v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = b
		return nil
	}
	setInt := func(key string, dst *int) error {
		v := os.Getenv(key)
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = n
		return nil
	}

	setString("LOG_LEVEL", &cfg.Logging.Level)
	setString("LOG_FORMAT", &cfg.Logging.Format)
	setString("METRICS_NAMESPACE", &cfg.Metrics.Namespace)
	setString("TOOL_SOURCES_TYPE", &cfg.ToolSources.Type)
	setString("TOOL_SOURCES_PATH", &cfg.ToolSources.Local.Path)
	setString("REDIS_URL", &cfg.ToolSources.Redis.URL)
	setString("REDIS_KEY", &cfg.ToolSources.Redis.Key)

	return errors.Join(
		setBool("METRICS_ENABLED", &cfg.Metrics.Enabled),
		setBool("TELEMETRY_ENABLED", &cfg.Telemetry.Enabled),
		setBool("TELEMETRY_LOG_SPANS", &cfg.Telemetry.LogSpans),
		setInt("REDIS_TTL", &cfg.ToolSources.Redis.TTL),
	)
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch c.ToolSources.Type {
	case "", "local":
	case "redis":
		if c.ToolSources.Redis.URL == "" {
			return errors.New("tool_sources.redis.url is required when tool_sources.type is redis")
		}
	default:
		return fmt.Errorf("unknown tool_sources.type %q", c.ToolSources.Type)
	}
	if c.ToolSources.Redis.TTL < 0 {
		return errors.New("tool_sources.redis.ttl must not be negative")
	}
	return nil
}
