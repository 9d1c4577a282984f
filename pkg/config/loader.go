package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "ambience")
	v.SetDefault("app.version", "dev")
	v.SetDefault("app.environment", "development")

	v.SetDefault("http.port", 8080)
	v.SetDefault("http.read_timeout", 10*time.Second)
	v.SetDefault("http.write_timeout", 10*time.Second)
	v.SetDefault("http.idle_timeout", 60*time.Second)
	v.SetDefault("http.body_limit", 1<<20)

	v.SetDefault("catalog.timeout", 10*time.Second)
	v.SetDefault("catalog.shared_cache_ttl", 0)
	v.SetDefault("session.ttl", 30*time.Minute)
	v.SetDefault("suggestions.count", 6)
	v.SetDefault("assistant.session_entities", false)

	v.SetDefault("queue.subject", "ambience.tracks.played")

	v.SetDefault("opentelemetry.service_name", "ambience")
	v.SetDefault("opentelemetry.jaeger.endpoint", "http://localhost:14268/api/traces")
	v.SetDefault("opentelemetry.jaeger.sampler_param", 1.0)

	v.SetDefault("prometheus.enabled", true)
	v.SetDefault("prometheus.path", "/metrics")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("circuit_breaker.enabled", true)
	v.SetDefault("circuit_breaker.max_requests", 3)
	v.SetDefault("circuit_breaker.interval", time.Minute)
	v.SetDefault("circuit_breaker.timeout", 30*time.Second)
	v.SetDefault("circuit_breaker.failure_threshold", 5)
	v.SetDefault("circuit_breaker.failure_ratio", 0.6)
	v.SetDefault("circuit_breaker.min_requests", 10)

	v.SetDefault("cors.enabled", true)
}

func Load() (*Config, error) {
	return LoadWith(viper.GetViper())
}

// LoadWith reads configuration into the given viper instance.
func LoadWith(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")
	v.AddConfigPath("/app/configs")

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Allow common env vars without APP_ prefix for Docker/VM deploys
	v.BindEnv("http.port", "HTTP_PORT", "APP_HTTP_PORT")
	v.BindEnv("redis.url", "REDIS_URL", "APP_REDIS_URL")
	v.BindEnv("catalog.url", "CATALOG_URL", "APP_CATALOG_URL")
	v.BindEnv("queue.url", "NATS_URL", "APP_QUEUE_URL")
	v.BindEnv("app.environment", "APP_ENVIRONMENT")
	v.BindEnv("logging.level", "LOG_LEVEL")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Catalog.URL) == "" {
		return fmt.Errorf("catalog.url is required")
	}
	switch c.Queue.Driver {
	case "", "nats", "rabbitmq":
	default:
		return fmt.Errorf("unknown queue.driver %q", c.Queue.Driver)
	}
	if c.Queue.Driver != "" && c.Queue.URL == "" {
		return fmt.Errorf("queue.url is required for driver %s", c.Queue.Driver)
	}
	if c.Suggestions.Count < 0 {
		return fmt.Errorf("suggestions.count must not be negative")
	}
	return nil
}
