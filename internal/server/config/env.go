package config

import "github.com/kelseyhightower/envconfig"

// parseEnv overlays GOPHCOURSE_* environment variables. Unset variables
// leave the current value untouched. Durations use time.ParseDuration syntax
// and lists are comma separated.
func parseEnv(config *Config) {
	if err := envconfig.Process(EnvPrefix, config); err != nil {
		panic(err)
	}
}
