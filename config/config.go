// Package config loads the application configuration from the environment.
package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/goliatone/go-errors"
)

// Config holds the server, database, and auth settings. The getters satisfy
// the auth.Config interface so the struct can be handed to the auth package
// directly.
type Config struct {
	ServerAddress string `env:"SERVER_ADDRESS" envDefault:":3333"`
	Debug         bool   `env:"DEBUG" envDefault:"false"`
	DatabaseDSN   string `env:"DATABASE_DSN" envDefault:"file:bookmarkd.db?cache=shared"`

	JWTSecret        string   `env:"JWT_SECRET"`
	JWTSigningMethod string   `env:"JWT_SIGNING_METHOD" envDefault:"HS256"`
	JWTTTLMinutes    int      `env:"JWT_TTL_MINUTES" envDefault:"15"`
	JWTIssuer        string   `env:"JWT_ISSUER" envDefault:"bookmarkd"`
	JWTAudience      []string `env:"JWT_AUDIENCE" envSeparator:","`

	AuthContextKey  string `env:"AUTH_CONTEXT_KEY" envDefault:"user"`
	AuthTokenLookup string `env:"AUTH_TOKEN_LOOKUP" envDefault:"header:Authorization"`
	AuthScheme      string `env:"AUTH_SCHEME" envDefault:"Bearer"`
}

// Load parses the environment into a Config and validates it
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "failed to parse environment")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate enforces the settings the server cannot run without. A missing
// signing secret is a hard failure, never a silent default.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required", errors.CategoryBadInput).
			WithTextCode("MISSING_JWT_SECRET")
	}

	if c.JWTTTLMinutes <= 0 {
		return errors.New("JWT_TTL_MINUTES must be a positive number of minutes", errors.CategoryBadInput).
			WithTextCode("INVALID_TOKEN_TTL")
	}

	return nil
}

func (c *Config) GetSigningKey() string {
	return c.JWTSecret
}

func (c *Config) GetSigningMethod() string {
	return c.JWTSigningMethod
}

func (c *Config) GetContextKey() string {
	return c.AuthContextKey
}

// GetTokenExpiration is the session token lifetime in minutes
func (c *Config) GetTokenExpiration() int {
	return c.JWTTTLMinutes
}

func (c *Config) GetTokenLookup() string {
	return c.AuthTokenLookup
}

func (c *Config) GetAuthScheme() string {
	return c.AuthScheme
}

func (c *Config) GetIssuer() string {
	return c.JWTIssuer
}

func (c *Config) GetAudience() []string {
	return c.JWTAudience
}
