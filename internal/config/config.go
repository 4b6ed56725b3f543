package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/Cheertaboi/pharmacy-pricing-service/pkg/db"
)

type Config struct {
	Env      string `env:"APP_ENV" envDefault:"production"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	HTTPAddr        string        `env:"HTTP_ADDR" envDefault:":8080"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"15s"`
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
	RequestTimeout  time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`

	Postgres      db.PostgresConfig
	RunMigrations bool `env:"DB_RUN_MIGRATIONS" envDefault:"true"`

	// Empty RedisAddr keeps the shipping cache in process.
	RedisAddr        string        `env:"REDIS_ADDR"`
	RedisPassword    string        `env:"REDIS_PASSWORD"`
	RedisDB          int           `env:"REDIS_DB" envDefault:"0"`
	ShippingCacheTTL time.Duration `env:"SHIPPING_CACHE_TTL" envDefault:"10m"`

	// Empty KafkaBrokers discards order events.
	KafkaBrokers    []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaOrderTopic string   `env:"KAFKA_ORDER_TOPIC" envDefault:"pharmacy.orders"`

	CartLoadWorkers int `env:"CART_LOAD_WORKERS" envDefault:"4"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.CartLoadWorkers < 1 {
		cfg.CartLoadWorkers = 1
	}
	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
