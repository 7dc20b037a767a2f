package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

const defaultAddr = "0.0.0.0:8080"

// Config holds the task API configuration, loadable from TASKS_-prefixed
// environment variables, flags, or YAML files.
type Config struct {
	Addr         string `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL  string `usage:"PostgreSQL connection URL (TASKS_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	APIKeyPepper string `usage:"HMAC pepper for API key hashing (TASKS_API_KEY_PEPPER)" flag:"api-key-pepper"`
	Database     DatabaseConfig
	RateLimit    RateLimitConfig
	CORS         CORSConfig
	Health       HealthConfig
	Graceful     GracefulConfig
}

// DatabaseConfig tunes the connection pool.
type DatabaseConfig struct {
	MaxConns        int32         `default:"10" usage:"Maximum open connections"`
	MaxConnIdleTime time.Duration `default:"5m" usage:"Close connections idle for this long"`
}

// RateLimitConfig controls the per-client token bucket.
type RateLimitConfig struct {
	RPS       float64       `default:"5"  usage:"Sustained requests per second per client"`
	Burst     int           `default:"20" usage:"Maximum burst per client"`
	ExpiresIn time.Duration `default:"3m" usage:"Evict clients idle for this long"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials" flag:"cors-credentials"`
}

// HealthConfig controls probe scheduling.
type HealthConfig struct {
	Interval      time.Duration `default:"10s" usage:"Interval between health checks"`
	MaxGoroutines int           `default:"10000" usage:"Liveness fails above this many goroutines"`
	MaxGCPause    time.Duration `default:"1s" usage:"Liveness fails on a longer GC pause"`
	PingTimeout   time.Duration `default:"5s" usage:"Readiness ping timeout" flag:"ping-timeout"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig reads the configuration and applies platform defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "TASKS",
		Files:     []string{"config.yaml", "/etc/tasks/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults(os.Getenv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the fields that have no usable default.
func (c *Config) Validate() error {
	switch {
	case c.DatabaseURL == "":
		return errors.New("database URL is required: set TASKS_DATABASE_URL or DATABASE_URL")
	case c.APIKeyPepper == "":
		return errors.New("api key pepper is required: set TASKS_API_KEY_PEPPER")
	case c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0:
		return errors.Errorf("rate limit must be positive, got %v rps burst %d", c.RateLimit.RPS, c.RateLimit.Burst)
	}
	return nil
}

// applyPlatformDefaults maps DATABASE_URL and PORT, as set by hosting
// platforms, onto the TASKS_-prefixed settings.
func (c *Config) applyPlatformDefaults(getenv func(string) string) {
	if c.DatabaseURL == "" {
		c.DatabaseURL = getenv("DATABASE_URL")
	}
	if port := getenv("PORT"); port != "" && c.Addr == defaultAddr {
		c.Addr = "0.0.0.0:" + port
	}
}
