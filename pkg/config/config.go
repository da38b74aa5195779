package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server ServerConfig
	Engine EngineConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	Host         string        `mapstructure:"host"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// EngineConfig holds the tunables of the license-expiry extraction engine.
// Defaults reflect the behaviour of the production OCR documents; change
// them only with a regression corpus at hand.
type EngineConfig struct {
	// ProximityWindow is the number of bytes after an identifier within
	// which a date token is considered to belong to that identifier.
	ProximityWindow int `mapstructure:"proximity_window"`
	// ContextWindow is the number of bytes preceding an unlabeled date
	// token searched for a license/expiry keyword.
	ContextWindow int `mapstructure:"context_window"`
	// SimilarityThreshold is the minimum character-level similarity ratio
	// for the fuzzy identifier match.
	SimilarityThreshold float64 `mapstructure:"similarity_threshold"`
	// MaxHammingDistance bounds how many positions two same-length
	// identifiers may differ in and still be treated as an OCR misread.
	MaxHammingDistance int `mapstructure:"max_hamming_distance"`
	// FuzzyScanCap limits how many document-wide identifier candidates the
	// fuzzy strategies consider, to bound work on dense OCR text.
	FuzzyScanCap int `mapstructure:"fuzzy_scan_cap"`
	// SentinelDates are literal dates known to be OCR artifacts, rejected
	// even when numerically plausible.
	SentinelDates []string `mapstructure:"sentinel_dates"`
	// RunSummaryTTL controls how long debugging run summaries are retained.
	RunSummaryTTL time.Duration `mapstructure:"run_summary_ttl"`
}

// Load loads configuration from environment and config files.
// This function applies development defaults and is suitable for local development.
// For production use, prefer LoadWithValidation which enforces required configuration.
func Load(serviceName string) (*Config, error) {
	return loadConfig(serviceName)
}

// LoadWithValidation loads configuration and validates it for the current environment.
// Use this function in service main() for fail-fast behaviour.
func LoadWithValidation(serviceName string) (*Config, error) {
	cfg, err := loadConfig(serviceName)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}

// Validate checks that the engine configuration is usable.
func (c *Config) Validate() error {
	if c.Engine.ProximityWindow <= 0 {
		return fmt.Errorf("engine proximity_window must be positive, got %d", c.Engine.ProximityWindow)
	}
	if c.Engine.SimilarityThreshold <= 0 || c.Engine.SimilarityThreshold > 1 {
		return fmt.Errorf("engine similarity_threshold must be in (0,1], got %f", c.Engine.SimilarityThreshold)
	}
	if c.Engine.FuzzyScanCap <= 0 {
		return fmt.Errorf("engine fuzzy_scan_cap must be positive, got %d", c.Engine.FuzzyScanCap)
	}
	// The run store derives its cleanup interval from this TTL.
	if c.Engine.RunSummaryTTL <= 0 {
		return fmt.Errorf("engine run_summary_ttl must be positive, got %s", c.Engine.RunSummaryTTL)
	}
	return nil
}

func loadConfig(serviceName string) (*Config, error) {
	v := viper.New()

	v.SetConfigName(serviceName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/claims")

	v.SetEnvPrefix("CLAIMS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional; environment variables and defaults suffice.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 8085)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.environment", EnvDevelopment)

	// Engine defaults
	v.SetDefault("engine.proximity_window", 500)
	v.SetDefault("engine.context_window", 100)
	v.SetDefault("engine.similarity_threshold", 0.85)
	v.SetDefault("engine.max_hamming_distance", 2)
	v.SetDefault("engine.fuzzy_scan_cap", 8)
	v.SetDefault("engine.sentinel_dates", []string{"19/11/2025"})
	v.SetDefault("engine.run_summary_ttl", "1h")
}
