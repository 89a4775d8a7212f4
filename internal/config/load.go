package config

import (
	"os"

	"github.com/Skotchmaster/storefront/internal/notify"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/pkg/config"
)

type ServiceConfig struct {
	config.Config

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	ResendAPIKey  string
	ResendBaseURL string
	EmailFrom     string

	StrictStatusTransitions bool
	SecureCookies           bool
}

func FromEnv() ServiceConfig {
	return ServiceConfig{
		Config: config.Load(),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       config.EnvIntDefault("REDIS_DB", 0),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    config.EnvDefault("ES_INDEX", search.DefaultIndex),

		ResendAPIKey:  os.Getenv("RESEND_API_KEY"),
		ResendBaseURL: config.EnvDefault("RESEND_BASE_URL", notify.DefaultBaseURL),
		EmailFrom:     config.EnvDefault("EMAIL_FROM", "Audiophile <orders@audiophile.shop>"),

		StrictStatusTransitions: config.EnvBoolDefault("STRICT_STATUS_TRANSITIONS", true),
		SecureCookies:           config.EnvBoolDefault("SECURE_COOKIES", true),
	}
}

// Load reads the environment and exits when a required value is missing.
func Load() ServiceConfig {
	cfg := FromEnv()

	config.Required{
		"DATABASE_URL": cfg.DatabaseURL,
		"JWT_SECRET":   string(cfg.JWTAccessSecret),
		"REDIS_ADDR":   cfg.RedisAddr,
	}.MustAll()

	return cfg
}
