// Package config provides configuration management for Helios services.
package config

import (
	"time"
)

// Config holds runtime configuration for the rule subsystem host.
type Config struct {
	DatabaseURL           string
	CacheTTL              time.Duration
	MaxRulesPerEvaluation int
	LogLevel              string
	LogFormat             string
}

// Default returns configuration with default values.
func Default() *Config {
	return &Config{
		DatabaseURL:           "sqlite://helios.db",
		CacheTTL:              5 * time.Minute,
		MaxRulesPerEvaluation: 200,
		LogLevel:              "info",
		LogFormat:             "json",
	}
}
