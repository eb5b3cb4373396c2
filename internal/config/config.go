// Package config loads walletbridge configuration from environment
// variables, prefixed with WALLETBRIDGE_.
package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// envPrefix namespaces every environment variable consumed here.
const envPrefix = "walletbridge"

// Config is the full application configuration.
type Config struct {
	// RPCEndpoint is the JSON-RPC URL of the Ethereum-compatible node.
	RPCEndpoint string `envconfig:"RPC_ENDPOINT" required:"true"`

	// RequestTimeout bounds a single JSON-RPC HTTP request.
	RequestTimeout time.Duration `envconfig:"RPC_REQUEST_TIMEOUT" default:"5s"`

	// PollInterval drives the confirmation waiter and event pollers.
	PollInterval time.Duration `envconfig:"POLL_INTERVAL" default:"4s"`

	// LogLevel is the minimum log level (debug, info, warn, error).
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// TelemetryEnabled turns on OTLP export of logs, metrics, and traces.
	TelemetryEnabled bool `envconfig:"TELEMETRY_ENABLED" default:"false"`

	Redis RedisConfig
}

// RedisConfig configures the optional Redis-backed chain registry. When Addr
// is empty the registry falls back to in-memory storage.
type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR"`
	Username string `envconfig:"REDIS_USERNAME"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	return cfg, envconfig.Process(envPrefix, &cfg)
}
