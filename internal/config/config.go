// Package config loads server configuration from ONLOOK_* environment
// variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the server daemon's configuration.
type Config struct {
	// address the HTTP API listens on
	ListenAddr string `env:"ONLOOK_LISTEN" envDefault:":8080"`

	// store backend: leveldb, bolt, or sqlite
	Backend string `env:"ONLOOK_BACKEND" envDefault:"leveldb"`

	// path of the store's database file (or directory, for leveldb)
	StorePath string `env:"ONLOOK_STORE_PATH,required,notEmpty"`

	// path of the allowlist policy file; empty means allow all
	AllowlistPath string `env:"ONLOOK_ALLOWLIST"`

	// shared secret the login collaborator presents on /api/federated;
	// empty disables the route
	FederatedKey string `env:"ONLOOK_FEDERATED_KEY"`
}

// Parse reads the configuration from the environment.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}
