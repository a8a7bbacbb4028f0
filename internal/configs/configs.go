/*
Package configs is responsible for loading and parsing the application's configuration settings.

Settings are read from operating system environment variables, optionally seeded from a local
.env file. They cover the running environment, port, CORS allowed origins, the JWT secret,
the generative-text oracle credential and the simulated chat latency.
*/
package configs

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

const (
	// EnvDevelopment is the default running environment.
	EnvDevelopment = "development"

	devJWTSecret = "your_default_insecure_secret_key_change_me"
)

// AppConfig contains all configuration parameters required for the application to run.
type AppConfig struct {
	// General Server Settings
	Environment   string `env:"ENVIRONMENT" envDefault:"development"`
	Port          int    `env:"PORT" envDefault:"8080"`
	PowDifficulty int    `env:"POW_DIFFICULTY" envDefault:"0"`

	// Security Settings
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`
	JWTSecret      string   `env:"JWT_SECRET"`

	// AdminBypass enables the literal admin/system login shortcut.
	AdminBypass bool `env:"ADMIN_BYPASS" envDefault:"true"`

	// Oracle Settings
	// GenAIAPIKey may be empty; the oracles then run in fallback-only mode.
	GenAIAPIKey   string        `env:"API_KEY"`
	GenAIModel    string        `env:"GENAI_MODEL" envDefault:"gemini-2.5-flash"`
	OracleTimeout time.Duration `env:"ORACLE_TIMEOUT" envDefault:"10s"`

	// Chat Settings
	ReplyDelayMin time.Duration `env:"REPLY_DELAY_MIN" envDefault:"1500ms"`
	ReplyDelayMax time.Duration `env:"REPLY_DELAY_MAX" envDefault:"2500ms"`
}

// IsDevelopment reports whether the server runs in the development environment.
func (c *AppConfig) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

// LoadConfig reads and parses the application configuration from environment variables.
// A missing .env file is not an error.
func LoadConfig() (*AppConfig, error) {
	_ = godotenv.Load()

	cfg := &AppConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// normalize validates cross-field constraints and fills environment-dependent defaults.
func (c *AppConfig) normalize() error {
	if c.Port < 1024 || c.Port > 65535 {
		return fmt.Errorf("port number %d is outside the recommended range (%d-%d) to avoid privileged ports", c.Port, 1024, 65535)
	}

	if c.PowDifficulty < 0 || c.PowDifficulty > 8 {
		return fmt.Errorf("invalid POW_DIFFICULTY %d: must be between 0 and 8", c.PowDifficulty)
	}

	if c.JWTSecret == "" {
		if !c.IsDevelopment() {
			return fmt.Errorf("JWT_SECRET environment variable is required in %s environment for security", c.Environment)
		}
		c.JWTSecret = devJWTSecret
	}

	if c.ReplyDelayMin < 0 || c.ReplyDelayMax < c.ReplyDelayMin {
		return fmt.Errorf("invalid reply delay range [%s, %s]", c.ReplyDelayMin, c.ReplyDelayMax)
	}

	if c.OracleTimeout <= 0 {
		return fmt.Errorf("ORACLE_TIMEOUT must be positive, got %s", c.OracleTimeout)
	}

	if c.AllowedOrigins == nil {
		c.AllowedOrigins = []string{}
	}

	return nil
}
