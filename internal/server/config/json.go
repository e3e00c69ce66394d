package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/credkeeper/internal/flagx"
	"github.com/dmitrijs2005/credkeeper/internal/timex"
)

// JsonConfig mirrors Config for JSON files. Pointer fields distinguish an
// absent key from a zero value so a partial file only overrides what it
// names. Durations accept "90m" or integer nanoseconds.
type JsonConfig struct {
	EndpointAddrGRPC   *string         `json:"endpoint_addr_grpc"`
	EndpointAddrHTTP   *string         `json:"endpoint_addr_http"`
	CORSOrigins        *[]string       `json:"cors_origins"`
	DatabaseDSN        *string         `json:"database_dsn"`
	SecretKey          *string         `json:"secret_key"`
	Issuer             *string         `json:"issuer"`
	Audience           *string         `json:"audience"`
	TokenTTL           *timex.Duration `json:"token_ttl"`
	AllowEmptyIdentity *bool           `json:"allow_empty_identity"`
	LogFormat          *string         `json:"log_format"`
	Debug              *bool           `json:"debug"`
	HashMemoryKiB      *uint32         `json:"hash_memory_kib"`
	HashIterations     *uint32         `json:"hash_iterations"`
	HashParallelism    *uint8          `json:"hash_parallelism"`
}

// parseJson loads the file named by -c/-config, if any, into config.
// An unreadable file or invalid JSON panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	set(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	set(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	set(&config.CORSOrigins, c.CORSOrigins)
	set(&config.DatabaseDSN, c.DatabaseDSN)
	set(&config.SecretKey, c.SecretKey)
	set(&config.Issuer, c.Issuer)
	set(&config.Audience, c.Audience)
	set(&config.AllowEmptyIdentity, c.AllowEmptyIdentity)
	set(&config.LogFormat, c.LogFormat)
	set(&config.Debug, c.Debug)
	set(&config.HashMemoryKiB, c.HashMemoryKiB)
	set(&config.HashIterations, c.HashIterations)
	set(&config.HashParallelism, c.HashParallelism)
	if c.TokenTTL != nil {
		config.TokenTTL = c.TokenTTL.Duration
	}
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
