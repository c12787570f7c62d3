package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// SetDefaults registers every default with v so unset keys decode to them.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("manager.traversal", d.Manager.Traversal)
	v.SetDefault("manager.max_concurrency", d.Manager.MaxConcurrency)
	v.SetDefault("resolver.cache", d.Resolver.Cache)
	v.SetDefault("resolver.cache_ttl", d.Resolver.CacheTTL)
	v.SetDefault("resolver.cleanup_interval", d.Resolver.CleanupInterval)
	v.SetDefault("resolver.latency", d.Resolver.Latency)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.file_path", d.Tracing.FilePath)
	v.SetDefault("tracing.otlp_endpoint", d.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("watch.debounce", d.Watch.Debounce)
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
