package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the process configuration, read once at startup.
type Config struct {
	AppPort string

	DatabaseDriver string
	DatabaseDSN    string

	JWTSecret         string
	JWTSigningKeyFile string
	JWTIssuer         string
	JWTAudience       string
	TokenTTL          time.Duration

	PasswordAlgorithm string

	GeocodingBaseURL string
	GeocodingAPIKey  string
	GeocodingTimeout time.Duration

	RabbitMQURL string

	CORSOrigins        string
	RateLimitPerMinute int
}

// loadConfig reads defaults, an optional config file and the environment,
// in increasing order of precedence.
func loadConfig(v *viper.Viper) (Config, error) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "prospects.db")
	v.SetDefault("JWT_ISSUER", "prospects")
	v.SetDefault("JWT_AUDIENCE", "prospects")
	v.SetDefault("TOKEN_TTL", time.Hour)
	v.SetDefault("PASSWORD_ALGORITHM", "argon2id")
	v.SetDefault("GEOCODING_BASE_URL", "https://maps.googleapis.com")
	v.SetDefault("GEOCODING_TIMEOUT", 5*time.Second)
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 30)
	v.AutomaticEnv()

	explicit := v.GetString("CONFIG_FILE")
	if explicit != "" {
		v.SetConfigFile(explicit)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := Config{
		AppPort:            v.GetString("APP_PORT"),
		DatabaseDriver:     strings.ToLower(v.GetString("DATABASE_DRIVER")),
		DatabaseDSN:        v.GetString("DATABASE_DSN"),
		JWTSecret:          v.GetString("JWT_SECRET"),
		JWTSigningKeyFile:  v.GetString("JWT_SIGNING_KEY_FILE"),
		JWTIssuer:          v.GetString("JWT_ISSUER"),
		JWTAudience:        v.GetString("JWT_AUDIENCE"),
		TokenTTL:           v.GetDuration("TOKEN_TTL"),
		PasswordAlgorithm:  strings.ToLower(v.GetString("PASSWORD_ALGORITHM")),
		GeocodingBaseURL:   v.GetString("GEOCODING_BASE_URL"),
		GeocodingAPIKey:    v.GetString("GEOCODING_API_KEY"),
		GeocodingTimeout:   v.GetDuration("GEOCODING_TIMEOUT"),
		RabbitMQURL:        v.GetString("RABBITMQ_URL"),
		CORSOrigins:        v.GetString("CORS_ORIGINS"),
		RateLimitPerMinute: v.GetInt("RATE_LIMIT_PER_MINUTE"),
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.DatabaseDriver {
	case "postgres", "sqlite", "memory":
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	if c.DatabaseDriver != "memory" && c.DatabaseDSN == "" {
		return errors.New("DATABASE_DSN is required")
	}
	if c.JWTSecret == "" && c.JWTSigningKeyFile == "" {
		return errors.New("either JWT_SECRET or JWT_SIGNING_KEY_FILE must be set")
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	switch c.PasswordAlgorithm {
	case "argon2id", "bcrypt":
	default:
		return fmt.Errorf("unsupported PASSWORD_ALGORITHM %q", c.PasswordAlgorithm)
	}
	return nil
}
