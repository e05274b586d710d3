// Package config loads runtime settings for the gateway and backend binaries.
// Values come from the environment (optionally a .env file) with defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultSessionSecret = "change-me-session-secret"
	defaultJWTSecret     = "change-me-jwt-secret"
)

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	// CORSOrigins is comma separated.
	CORSOrigins string `mapstructure:"cors_origins"`
}

func (s ServerConfig) Origins() []string {
	return splitList(s.CORSOrigins)
}

func (s ServerConfig) Addr() string {
	return ":" + strings.TrimPrefix(s.Port, ":")
}

// LoadEnvFile loads .env when present. A missing file is not an error.
func LoadEnvFile(paths ...string) error {
	if err := godotenv.Load(paths...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// newViper maps nested keys to env names: "server.port" reads SERVER_PORT.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("app.env", "dev")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("server.cors_origins", "")
	_ = v.BindEnv("app.env", "APP_ENV", "ENV")
	_ = v.BindEnv("server.cors_origins", "SERVER_CORS_ORIGINS", "CORS_ALLOWED_ORIGINS")
	return v
}

func validateLog(cfg LogConfig) error {
	switch strings.ToLower(cfg.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be one of: text, json")
	}
	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
