package config

import (
	"fmt"
	"strings"
	"time"
)

type BackendConfig struct {
	App struct {
		Env string `mapstructure:"env"`
	} `mapstructure:"app"`
	Server   ServerConfig `mapstructure:"server"`
	Log      LogConfig    `mapstructure:"log"`
	Database struct {
		URL string `mapstructure:"url"`
	} `mapstructure:"database"`
	JWT struct {
		Secret string        `mapstructure:"secret"`
		TTL    time.Duration `mapstructure:"ttl"`
	} `mapstructure:"jwt"`
	// Retention is how long finished reservations are kept after checkout.
	Retention time.Duration `mapstructure:"retention"`
}

func (c *BackendConfig) ProdLike() bool {
	return isProdLike(c.App.Env)
}

func LoadBackend() (*BackendConfig, error) {
	v := newViper()
	v.SetDefault("server.port", "5000")
	v.SetDefault("database.url", "file:travelbooking.db?_pragma=foreign_keys(1)")
	v.SetDefault("jwt.secret", defaultJWTSecret)
	v.SetDefault("jwt.ttl", "24h")
	v.SetDefault("retention", "2160h")
	_ = v.BindEnv("server.port", "BACKEND_PORT", "SERVER_PORT")

	cfg := &BackendConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode backend config: %w", err)
	}
	if err := validateBackend(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateBackend(cfg *BackendConfig) error {
	if err := validateLog(cfg.Log); err != nil {
		return err
	}
	if strings.TrimSpace(cfg.Database.URL) == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.Retention <= 0 {
		return fmt.Errorf("RETENTION must be > 0")
	}
	if cfg.JWT.TTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if isProdLike(cfg.App.Env) && isEmptyOrDefault(cfg.JWT.Secret, defaultJWTSecret) {
		return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
	}
	return nil
}
