// Package config loads runtime configuration for the authctl CLI: defaults,
// then an optional JSON file (-c/-config), then flags.
//
//	-a string   address:port of the credkeeper gRPC endpoint
//	-r int      per-request timeout (seconds)
package config

import "time"

// Config holds runtime settings for the CLI.
type Config struct {
	ServerEndpointAddr string
	RequestTimeout     time.Duration
}

func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.RequestTimeout = 5 * time.Second
}

// LoadConfig applies defaults, JSON and flags in that order.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
