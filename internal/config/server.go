package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ServerConfig is the runtime configuration of the REST server. It comes
// from the environment only.
type ServerConfig struct {
	Addr        string   `env:"READALOUD_ADDR" envDefault:":8080"`
	DB          string   `env:"READALOUD_DB"`
	BaseURL     string   `env:"READALOUD_BASE_URL"`
	CORSOrigins []string `env:"READALOUD_CORS_ORIGINS" envDefault:"*" envSeparator:","`
	RateLimit   float64  `env:"READALOUD_RATE_LIMIT" envDefault:"20"`
	RateBurst   int      `env:"READALOUD_RATE_BURST" envDefault:"40"`
	CacheBytes  int64    `env:"READALOUD_CACHE_BYTES" envDefault:"8388608"`
	Debug       bool     `env:"READALOUD_DEBUG"`
}

// DebugEnabled reports whether READALOUD_DEBUG asks for debug logging. An
// unparsable environment counts as disabled.
func DebugEnabled() bool {
	cfg, err := env.ParseAs[ServerConfig]()
	return err == nil && cfg.Debug
}

// LoadServerConfig parses the environment. The database defaults to
// posts.db in the user data directory.
func LoadServerConfig() (ServerConfig, error) {
	cfg, err := env.ParseAs[ServerConfig]()
	if err != nil {
		return cfg, fmt.Errorf("error parsing server config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	if cfg.DB == "" {
		if cfg.DB, err = DataPath("posts.db"); err != nil {
			return cfg, err
		}
	}
	cfg.DB = ExpandPath(cfg.DB)
	return cfg, nil
}

// Validate checks the limits.
func (c ServerConfig) Validate() error {
	if c.Addr == "" {
		return errors.New("server address cannot be empty")
	}
	if c.RateLimit <= 0 {
		return fmt.Errorf("rate limit must be positive, got %v", c.RateLimit)
	}
	if c.RateBurst < 1 {
		return fmt.Errorf("rate burst must be at least 1, got %d", c.RateBurst)
	}
	if c.CacheBytes < 0 {
		return fmt.Errorf("cache size cannot be negative, got %d", c.CacheBytes)
	}
	return nil
}
