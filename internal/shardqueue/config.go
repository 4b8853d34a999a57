package shardqueue

import (
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
)

// Config tunes the executor. LoadConfig reads it from STOCKROOM_PREFETCH_*
// variables, e.g. STOCKROOM_PREFETCH_SHARDS=8.
type Config struct {
	Shards         int           `envconfig:"SHARDS"          default:"4"`
	QueueSize      int           `envconfig:"QUEUE_SIZE"      default:"64"`
	EnqueueTimeout time.Duration `envconfig:"ENQUEUE_TIMEOUT" default:"100ms"`

	// MaxAttempts of 1 disables retry. Only recoverable failures are
	// retried.
	MaxAttempts int           `envconfig:"MAX_ATTEMPTS" default:"1"`
	BaseBackoff time.Duration `envconfig:"BASE_BACKOFF" default:"200ms"`
	MaxInterval time.Duration `envconfig:"MAX_INTERVAL" default:"5s"`

	// ErrorHandler receives the final error of a failed job. It runs on
	// the worker goroutine.
	ErrorHandler func(key string, err error) `envconfig:"-"`
	Logger       zerolog.Logger              `envconfig:"-"`
}

// LoadConfig populates Config from the environment.
func LoadConfig() (Config, error) {
	var c Config
	err := envconfig.Process("STOCKROOM_PREFETCH", &c)
	c.Logger = zerolog.Nop()
	return c, err
}

func (c Config) withDefaults() Config {
	if c.Shards <= 0 {
		c.Shards = 4
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 64
	}
	if c.EnqueueTimeout <= 0 {
		c.EnqueueTimeout = 100 * time.Millisecond
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 1
	}
	if c.BaseBackoff <= 0 {
		c.BaseBackoff = 200 * time.Millisecond
	}
	if c.MaxInterval <= 0 {
		c.MaxInterval = 5 * time.Second
	}
	return c
}
