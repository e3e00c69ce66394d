package config

import (
	"fmt"

	"github.com/caarlos0/env/v9"
)

// EnvPrefix is prepended to every variable name in Config's env tags.
const EnvPrefix = "CREDKEEPER_"

// parseEnv overlays variables that are set; unset ones keep their current
// value.
func parseEnv(config *Config) error {
	if err := env.ParseWithOptions(config, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	return nil
}
