package config

import "github.com/caarlos0/env/v11"

// TestConfig carries settings only used by _test.go files. Tests that need a
// database skip themselves when TEST_POSTGRES_DSN is unset.
type TestConfig struct {
	TestPostgresDSN string `env:"TEST_POSTGRES_DSN,required,notEmpty"`
}

func LoadTest() (TestConfig, error) {
	var cfg TestConfig
	err := env.Parse(&cfg)
	return cfg, err
}
