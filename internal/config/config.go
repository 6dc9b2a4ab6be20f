// Package config defines service configuration and its loading.
package config

// Config contains process configuration.
type Config struct {
	// Addr is the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Tiers maps a pool identifier to its per-member stake amount.
	// The tier set is fixed for the lifetime of the process.
	Tiers map[string]float64 `koanf:"tiers"`

	// ProviderURL is an OpenAI-compatible chat-completions base URL.
	// Empty means the built-in static question bank is used instead.
	ProviderURL   string `koanf:"provider_url"`
	ProviderModel string `koanf:"provider_model"`
	ProviderKey   string `koanf:"provider_key"`

	// ProviderTimeoutSec bounds a single generation attempt.
	ProviderTimeoutSec int `koanf:"provider_timeout_sec"`

	// ProviderAttempts is the generation retry budget.
	ProviderAttempts int `koanf:"provider_attempts"`
}

// New returns the defaults: the four stake tiers the original lobby
// offered, and the static question bank.
func New() *Config {
	return &Config{
		Addr:     ":8080",
		LogLevel: "info",
		Tiers: map[string]float64{
			"0.50": 0.50,
			"1":    1,
			"5":    5,
			"10":   10,
		},
		ProviderModel:      "gpt-4o-mini",
		ProviderTimeoutSec: 20,
		ProviderAttempts:   3,
	}
}
