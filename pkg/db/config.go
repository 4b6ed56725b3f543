package db

import (
	"fmt"
	"net/url"

	"github.com/caarlos0/env/v11"
)

type PostgresConfig struct {
	Host         string `env:"DB_HOST" envDefault:"localhost"`
	Port         int    `env:"DB_PORT" envDefault:"5432"`
	User         string `env:"DB_USER"`
	Password     string `env:"DB_PASSWORD"`
	DBName       string `env:"DB_NAME"`
	SSLMode      string `env:"DB_SSLMODE" envDefault:"disable"`
	MaxOpenConns int    `env:"DB_MAX_OPEN_CONNS" envDefault:"20"`
	MaxIdleConns int    `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
}

func LoadPostgresConfig() (PostgresConfig, error) {
	var cfg PostgresConfig
	if err := env.Parse(&cfg); err != nil {
		return PostgresConfig{}, fmt.Errorf("parse postgres config: %w", err)
	}
	return cfg, nil
}

func (c PostgresConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	return u.String()
}
