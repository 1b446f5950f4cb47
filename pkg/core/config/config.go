// Package config loads the recognizer's runtime settings from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Reconciliation holds the hybrid-layer policy switches and oracle limits.
type Reconciliation struct {
	EnableOracle                  bool   `yaml:"enableOracle"`
	AlwaysQueryOracle             bool   `yaml:"alwaysQueryOracle"`
	AutoAcceptOnMatch             bool   `yaml:"autoAcceptOnMatch"`
	AllowManualResolution         bool   `yaml:"allowManualResolution"`
	FallbackToRuleOnOracleFailure bool   `yaml:"fallbackToRuleOnOracleFailure"`
	PersistAuditLog               bool   `yaml:"persistAuditLog"`
	AuditLogPath                  string `yaml:"auditLogPath"`
	OracleTimeoutSeconds          int    `yaml:"oracleTimeoutSeconds"`
	OracleMaxRetries              int    `yaml:"oracleMaxRetries"`
}

// Provider selects and tunes the oracle's LLM backend. The API key is
// never stored here; each provider reads it from its environment variable.
type Provider struct {
	Name        string  `yaml:"name"` // "openai", "anthropic", "gemini", "gemini-session"
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

type Config struct {
	Reconciliation Reconciliation `yaml:"reconciliation"`
	Provider       Provider       `yaml:"provider"`
}

// Default returns the settings used when no config file is given:
// rules-only classification with corroboration disabled and a local
// JSON audit log.
func Default() *Config {
	return &Config{
		Reconciliation: Reconciliation{
			AutoAcceptOnMatch:             true,
			FallbackToRuleOnOracleFailure: true,
			PersistAuditLog:               true,
			AuditLogPath:                  "reconciliation_log.json",
			OracleTimeoutSeconds:          30,
			OracleMaxRetries:              3,
		},
		Provider: Provider{
			Name:        "openai",
			Model:       "gpt-4o-mini",
			MaxTokens:   1024,
			Temperature: 0,
		},
	}
}

// Load reads path and overlays it on the defaults. Unknown keys are
// rejected so a typoed policy switch fails loudly instead of silently
// keeping its default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if cfg.Reconciliation.OracleTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("oracleTimeoutSeconds must be positive, got %d", cfg.Reconciliation.OracleTimeoutSeconds)
	}
	if cfg.Reconciliation.OracleMaxRetries < 0 {
		return nil, fmt.Errorf("oracleMaxRetries must not be negative, got %d", cfg.Reconciliation.OracleMaxRetries)
	}
	return cfg, nil
}
