package config

import (
	"errors"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering, lowest precedence first:
//  1. defaults (New())
//  2. YAML file named by MINDDUEL_CONFIG, if set
//  3. environment variables with the MINDDUEL_ prefix
func Load() (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("MINDDUEL_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// MINDDUEL_ADDR -> addr, MINDDUEL_PROVIDER_URL -> provider_url, ...
	envProvider := env.Provider("MINDDUEL_", ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), "mindduel_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if cfg.Addr == "" {
		return nil, errors.New("addr must not be empty")
	}
	if len(cfg.Tiers) == 0 {
		return nil, errors.New("at least one stake tier is required")
	}
	for tier, stake := range cfg.Tiers {
		if stake <= 0 {
			return nil, errors.New("tier " + tier + " has a non-positive stake")
		}
	}
	return &cfg, nil
}
