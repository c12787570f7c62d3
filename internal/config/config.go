// Package config provides configuration types, defaults and validation for xwidget.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zjrosen/xwidget/internal/lifecycle"
	"github.com/zjrosen/xwidget/internal/log"
	"github.com/zjrosen/xwidget/internal/tracing"
)

// Config holds all configuration options for xwidget.
type Config struct {
	Manager  ManagerConfig   `mapstructure:"manager"`
	Resolver ResolverConfig  `mapstructure:"resolver"`
	Tracing  tracing.Config  `mapstructure:"tracing"`
	Log      LogConfig       `mapstructure:"log"`
	Watch    WatchConfig     `mapstructure:"watch"`
	Flags    map[string]bool `mapstructure:"flags"`
}

// ManagerConfig configures the lifecycle manager.
type ManagerConfig struct {
	// Traversal is "sequential" (default) or "parallel".
	Traversal string `mapstructure:"traversal"`
	// MaxConcurrency bounds parallel sibling visits. 0 means no limit.
	MaxConcurrency int `mapstructure:"max_concurrency"`
}

// ResolverConfig configures widget path resolution.
type ResolverConfig struct {
	// Cache keeps resolved factories in memory.
	Cache           bool          `mapstructure:"cache"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	// Latency delays every resolution, simulating remote widget loading.
	Latency time.Duration `mapstructure:"latency"`
}

// LogConfig configures the debug log.
type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// WatchConfig configures the watch command.
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// ManagerOptions converts the manager section into lifecycle options.
func (c Config) ManagerOptions() []lifecycle.Option {
	return []lifecycle.Option{
		lifecycle.WithTraversal(lifecycle.Traversal(c.Manager.Traversal)),
		lifecycle.WithMaxConcurrency(c.Manager.MaxConcurrency),
	}
}

// DefaultTracesFilePath returns ~/.config/xwidget/traces/traces.jsonl, or an
// empty string if the home directory is unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "xwidget", "traces", "traces.jsonl")
}

// Defaults returns the default configuration.
func Defaults() Config {
	tc := tracing.DefaultConfig()
	tc.FilePath = DefaultTracesFilePath()
	return Config{
		Manager: ManagerConfig{
			Traversal: string(lifecycle.Sequential),
		},
		Resolver: ResolverConfig{
			Cache:           true,
			CacheTTL:        10 * time.Minute,
			CleanupInterval: 30 * time.Minute,
		},
		Tracing: tc,
		Log: LogConfig{
			Level: "debug",
		},
		Watch: WatchConfig{
			Debounce: 250 * time.Millisecond,
		},
		Flags: map[string]bool{},
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := ValidateManager(c.Manager); err != nil {
		return err
	}
	if err := ValidateResolver(c.Resolver); err != nil {
		return err
	}
	if err := c.Tracing.Validate(); err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %s", c.Watch.Debounce)
	}
	return nil
}

// ValidateManager checks the manager section.
func ValidateManager(m ManagerConfig) error {
	if m.Traversal != "" && !lifecycle.Traversal(m.Traversal).IsValid() {
		return fmt.Errorf("manager.traversal must be %q or %q, got %q",
			lifecycle.Sequential, lifecycle.Parallel, m.Traversal)
	}
	if m.MaxConcurrency < 0 {
		return fmt.Errorf("manager.max_concurrency must not be negative, got %d", m.MaxConcurrency)
	}
	return nil
}

// ValidateResolver checks the resolver section.
func ValidateResolver(r ResolverConfig) error {
	for name, d := range map[string]time.Duration{
		"resolver.cache_ttl":        r.CacheTTL,
		"resolver.cleanup_interval": r.CleanupInterval,
		"resolver.latency":          r.Latency,
	} {
		if d < 0 {
			return fmt.Errorf("%s must not be negative, got %s", name, d)
		}
	}
	return nil
}

// DefaultConfigTemplate returns the default config file written by
// "xwidget config init".
func DefaultConfigTemplate() string {
	return `# xwidget configuration

manager:
  # How sibling subtrees are visited during init: sequential or parallel
  traversal: sequential
  # Upper bound on concurrently visited siblings (parallel only, 0 = no limit)
  max_concurrency: 0

resolver:
  # Keep resolved widget factories in memory
  cache: true
  cache_ttl: 10m
  cleanup_interval: 30m
  # Artificial delay per resolution, useful to watch widgets load
  latency: 0s

tracing:
  enabled: false
  exporter: file          # none, file, stdout or otlp
  # file_path: ~/.config/xwidget/traces/traces.jsonl
  otlp_endpoint: localhost:4317
  sample_rate: 1.0

log:
  # file: debug.log
  level: debug

watch:
  debounce: 250ms

flags:
  sweep-on-reload: true
  resolver-dedupe: true
  status-color: true
`
}

// WriteDefaultConfig writes the default template to configPath.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "created default config", "path", configPath)
	return nil
}
