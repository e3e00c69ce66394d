// Package config handles configuration for the server component: defaults,
// an optional JSON file, CREDKEEPER_* environment variables and finally
// command-line flags, each layer overriding the previous one.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/credkeeper/internal/common"
	"github.com/dmitrijs2005/credkeeper/internal/cryptox"
)

// Config holds runtime settings for the credkeeper server.
type Config struct {
	EndpointAddrGRPC   string        `env:"GRPC_ADDR"`
	EndpointAddrHTTP   string        `env:"HTTP_ADDR"`
	CORSOrigins        []string      `env:"CORS_ORIGINS" envSeparator:","`
	DatabaseDSN        string        `env:"DATABASE_DSN"`
	SecretKey          string        `env:"SECRET_KEY"`
	Issuer             string        `env:"ISSUER"`
	Audience           string        `env:"AUDIENCE"`
	TokenTTL           time.Duration `env:"TOKEN_TTL"`
	AllowEmptyIdentity bool          `env:"ALLOW_EMPTY_IDENTITY"`
	LogFormat          string        `env:"LOG_FORMAT"`
	Debug              bool          `env:"DEBUG"`

	HashMemoryKiB   uint32 `env:"HASH_MEMORY_KIB"`
	HashIterations  uint32 `env:"HASH_ITERATIONS"`
	HashParallelism uint8  `env:"HASH_PARALLELISM"`
}

// LoadDefaults populates Config with development defaults. SecretKey is
// deliberately left empty so a real key must be supplied.
func (c *Config) LoadDefaults() {
	c.EndpointAddrGRPC = ":50051"
	c.EndpointAddrHTTP = ":8080"
	c.CORSOrigins = []string{"*"}
	c.DatabaseDSN = "memory://"
	c.SecretKey = ""
	c.Issuer = common.DefaultIssuer
	c.Audience = common.DefaultAudience
	c.TokenTTL = 60 * time.Minute
	c.AllowEmptyIdentity = true
	c.LogFormat = "json"

	c.HashMemoryKiB = cryptox.DefaultArgon2Params.MemoryKiB
	c.HashIterations = cryptox.DefaultArgon2Params.Iterations
	c.HashParallelism = cryptox.DefaultArgon2Params.Parallelism
}

// Argon2Params returns the password hashing parameters.
func (c *Config) Argon2Params() cryptox.Argon2Params {
	p := cryptox.DefaultArgon2Params
	p.MemoryKiB = c.HashMemoryKiB
	p.Iterations = c.HashIterations
	p.Parallelism = c.HashParallelism
	return p
}

// Validate reports every problem that would make the server unusable.
func (c *Config) Validate() error {
	var errs []error

	if len(c.SecretKey) < common.MinSigningKeyLength {
		errs = append(errs, fmt.Errorf("secret key must be at least %d bytes, got %d", common.MinSigningKeyLength, len(c.SecretKey)))
	}
	if c.Issuer == "" {
		errs = append(errs, errors.New("issuer must not be empty"))
	}
	if c.Audience == "" {
		errs = append(errs, errors.New("audience must not be empty"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("token ttl must be positive, got %s", c.TokenTTL))
	}
	if c.EndpointAddrGRPC == "" && c.EndpointAddrHTTP == "" {
		errs = append(errs, errors.New("at least one of the gRPC or HTTP addresses must be set"))
	}
	if c.DatabaseDSN == "" {
		errs = append(errs, errors.New("database dsn must not be empty"))
	}
	switch c.LogFormat {
	case "json", "text", "zap":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.LogFormat))
	}
	if err := c.Argon2Params().Validate(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment and command-line flags.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	parseFlags(cfg)
	return cfg, nil
}
