package config

import (
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

type Environment string

const (
	EnvLocal      Environment = "local"
	EnvDev        Environment = "dev"
	EnvStage      Environment = "stage"
	EnvProduction Environment = "production"
)

type Config struct {
	App struct {
		Version  string      `env:"APP_VERSION" envDefault:"local"`
		Env      Environment `env:"APP_ENV" envDefault:"local"`
		Timezone string      `env:"APP_TIMEZONE" envDefault:"America/New_York"`
	}

	HTTP struct {
		Port string `env:"HTTP_SERVER_PORT" envDefault:"8080"`
		Host string `env:"HTTP_SERVER_HOST" envDefault:"localhost"`
	}

	Cosmic struct {
		URL        string  `env:"COSMIC_URL" envDefault:"https://api.cosmicjs.com/v1"`
		BucketSlug string  `env:"COSMIC_BUCKET_SLUG"`
		ReadKey    string  `env:"COSMIC_READ_KEY"`
		WriteKey   string  `env:"COSMIC_WRITE_KEY"`
		ObjectType string  `env:"COSMIC_OBJECT_TYPE" envDefault:"appointments"`
		ConfigSlug string  `env:"COSMIC_CONFIG_SLUG" envDefault:"site-config"`
		RateLimit  float64 `env:"COSMIC_RATE_LIMIT" envDefault:"10"`
		RateBurst  int     `env:"COSMIC_RATE_BURST" envDefault:"5"`
	}

	Twilio struct {
		Enabled    bool   `env:"TWILIO_ENABLED"`
		URL        string `env:"TWILIO_URL" envDefault:"https://api.twilio.com"`
		AccountSID string `env:"TWILIO_ACCOUNT_SID"`
		AuthToken  string `env:"TWILIO_AUTH_TOKEN"`
		FromNumber string `env:"TWILIO_FROM_NUMBER"`
	}

	Admin struct {
		Username string `env:"ADMIN_USERNAME" envDefault:"admin"`
		Password string `env:"ADMIN_PASSWORD" envDefault:"admin"`
	}

	RabbitMQ struct {
		Enabled  bool   `env:"RABBITMQ_ENABLED"`
		URL      string `env:"RABBITMQ_URL"`
		Exchange string `env:"RABBITMQ_EXCHANGE" envDefault:"cosmic.events"`
		Queue    string `env:"RABBITMQ_QUEUE" envDefault:"appointment-scheduler.bookings"`
		BindKey  string `env:"RABBITMQ_BIND_KEY" envDefault:"cosmic.appointment-scheduler.booking.*"`
	}

	Cache struct {
		Enabled bool `env:"CACHE_ENABLED"`
		Size    int  `env:"CACHE_SIZE" envDefault:"8"`
	}
}

func NewConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	// Normalize the environment for comparisons
	cfg.App.Env = Environment(strings.ToLower(string(cfg.App.Env)))

	return cfg, nil
}

func (c *Config) IsLocal() bool {
	return c.App.Env == EnvLocal
}

func (c *Config) IsNotLocal() bool {
	return c.App.Env == EnvDev || c.App.Env == EnvStage || c.App.Env == EnvProduction
}

// Location resolves the configured timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
