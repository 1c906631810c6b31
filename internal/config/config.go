// Package config loads the gridiron configuration from gridiron.yml plus
// environment variables, with defaults for every engine bound.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is the full gridiron configuration.
type Config struct {
	Engine   EngineConfig   `mapstructure:"engine"`
	Upstream UpstreamConfig `mapstructure:"upstream"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Server   ServerConfig   `mapstructure:"server"`
	// SchemaPath points at a YAML schema definition; empty uses the embedded
	// college football schema.
	SchemaPath string `mapstructure:"schema_path"`
}

// EngineConfig holds the query engine's safety bounds and scoring constants.
type EngineConfig struct {
	MaxDepth            int      `mapstructure:"max_depth"`
	MaxFields           int      `mapstructure:"max_fields"`
	MaxLimit            int      `mapstructure:"max_limit"`
	DefaultLimit        int      `mapstructure:"default_limit"`
	ComplexityThreshold float64  `mapstructure:"complexity_threshold"`
	DepthWeightBase     float64  `mapstructure:"depth_weight_base"`
	CardinalityWeight   float64  `mapstructure:"cardinality_weight"`
	DeniedFields        []string `mapstructure:"denied_fields"`
}

// UpstreamConfig describes the GraphQL endpoint queries execute against.
type UpstreamConfig struct {
	Endpoint   string        `mapstructure:"endpoint"`
	APIKey     string        `mapstructure:"api_key"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`
}

// CacheConfig describes the result cache.
type CacheConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// ServerConfig describes the HTTP transport.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Load reads gridiron.yml (or environment variables) from the working
// directory, falling back to defaults when no file exists.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("engine.max_depth", 4)
	v.SetDefault("engine.max_fields", 50)
	v.SetDefault("engine.max_limit", 1000)
	v.SetDefault("engine.default_limit", 100)
	v.SetDefault("engine.complexity_threshold", 500.0)
	v.SetDefault("engine.depth_weight_base", 2.0)
	v.SetDefault("engine.cardinality_weight", 5.0)
	v.SetDefault("engine.denied_fields", []string{"sourceId", "ingestedAt"})
	v.SetDefault("upstream.timeout", 30*time.Second)
	v.SetDefault("upstream.max_retries", 3)
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.addr", "localhost:6379")
	v.SetDefault("cache.ttl", 5*time.Minute)
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)

	v.SetConfigName("gridiron")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("GRIDIRON")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func validateConfig(cfg *Config) error {
	e := cfg.Engine
	if e.MaxDepth < 1 {
		return fmt.Errorf("engine.max_depth must be at least 1, got %d", e.MaxDepth)
	}
	if e.MaxFields < 1 {
		return fmt.Errorf("engine.max_fields must be at least 1, got %d", e.MaxFields)
	}
	if e.MaxLimit < 1 {
		return fmt.Errorf("engine.max_limit must be at least 1, got %d", e.MaxLimit)
	}
	if e.DefaultLimit < 1 || e.DefaultLimit > e.MaxLimit {
		return fmt.Errorf("engine.default_limit must be between 1 and engine.max_limit, got %d", e.DefaultLimit)
	}
	if e.DepthWeightBase < 1 {
		return fmt.Errorf("engine.depth_weight_base must be at least 1, got %g", e.DepthWeightBase)
	}
	if e.CardinalityWeight < 1 {
		return fmt.Errorf("engine.cardinality_weight must be at least 1, got %g", e.CardinalityWeight)
	}
	return nil
}
