package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Load loads configuration with defaults < config file < environment
// precedence. Environment variables use the HELIOS_ prefix with dots
// replaced by underscores (HELIOS_DATABASE_URL, HELIOS_ENGINE_CACHE_TTL).
func Load(configPath string) (*Config, error) {
	v := viper.New()

	def := Default()
	v.SetDefault("database.url", def.DatabaseURL)
	v.SetDefault("engine.cache_ttl", def.CacheTTL.String())
	v.SetDefault("engine.max_rules_per_evaluation", def.MaxRulesPerEvaluation)
	v.SetDefault("log.level", def.LogLevel)
	v.SetDefault("log.format", def.LogFormat)

	v.SetEnvPrefix("HELIOS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		DatabaseURL:           v.GetString("database.url"),
		CacheTTL:              v.GetDuration("engine.cache_ttl"),
		MaxRulesPerEvaluation: v.GetInt("engine.max_rules_per_evaluation"),
		LogLevel:              v.GetString("log.level"),
		LogFormat:             v.GetString("log.format"),
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks value ranges after all precedence layers are applied.
func validate(cfg *Config) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("database.url must not be empty")
	}
	if cfg.CacheTTL <= 0 {
		return fmt.Errorf("engine.cache_ttl must be positive, got %v", cfg.CacheTTL)
	}
	if cfg.MaxRulesPerEvaluation <= 0 {
		return fmt.Errorf("engine.max_rules_per_evaluation must be positive, got %d", cfg.MaxRulesPerEvaluation)
	}
	switch cfg.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("log.format must be json or console, got %q", cfg.LogFormat)
	}
	return nil
}
