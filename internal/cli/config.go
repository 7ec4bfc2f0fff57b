package cli

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds CLI configuration
type Config struct {
	ServerURL string `env:"DUTYCTL_SERVER" envDefault:"http://localhost:8080"`
	Output    string `env:"DUTYCTL_OUTPUT" envDefault:"text"`
}

// DefaultConfig returns a Config populated from the environment, falling
// back to defaults for anything unset
func DefaultConfig() *Config {
	cfg, err := configFrom(nil)
	if err != nil {
		return &Config{ServerURL: "http://localhost:8080", Output: "text"}
	}
	return cfg
}

func configFrom(environ map[string]string) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the flag values after parsing
func (c *Config) Validate() error {
	switch c.Output {
	case "text", "json":
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want text or json)", c.Output)
	}
}
