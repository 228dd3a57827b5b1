package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Server captures process-level configuration. Defaults suit local
// development; production overrides everything through the environment.
type Server struct {
	Addr          string        `env:"AMDESK_ADDR" envDefault:":4000"`
	DataDir       string        `env:"AMDESK_DATA_DIR" envDefault:"data"`
	JWTSigningKey string        `env:"JWT_SIGNING_KEY" envDefault:"dev-secret-key-change-in-production"`
	TokenTTL      time.Duration `env:"TOKEN_TTL" envDefault:"2h"`

	// RedisURL selects the Redis-backed notification store when set. Empty
	// keeps notifications in memory, matching the single-process demo setup.
	RedisURL string `env:"REDIS_URL"`
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, fmt.Errorf("parse config from env: %w", err)
	}
	return cfg, nil
}
