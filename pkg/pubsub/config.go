package pubsub

import (
	"fmt"
	"time"
)

// Config selects and configures the pub/sub backend.
type Config struct {
	Driver string      `mapstructure:"driver"` // "redis", "memory"
	Redis  RedisConfig `mapstructure:"redis"`
	// Buffer is the per-subscription channel size.
	Buffer int `mapstructure:"buffer"`
}

// RedisConfig holds Redis-specific configuration.
type RedisConfig struct {
	Address      string        `mapstructure:"address"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Driver: "redis",
		Buffer: 16,
		Redis: RedisConfig{
			Address:      "localhost:6379",
			PoolSize:     10,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
	}
}

// New creates the configured backend.
func New(cfg Config) (PubSub, error) {
	if cfg.Buffer <= 0 {
		cfg.Buffer = 16
	}
	switch cfg.Driver {
	case "", "redis":
		return NewRedisPubSub(cfg.Redis, cfg.Buffer)
	case "memory":
		return NewMemoryPubSub(cfg.Buffer), nil
	default:
		return nil, fmt.Errorf("unsupported pubsub driver: %s", cfg.Driver)
	}
}
