// Package config loads service configuration from layered sources:
// built-in defaults, an optional YAML file, then CT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of every environment variable the service reads
const EnvPrefix = "CT_"

// ConfigPathEnvVar overrides the config file location
const ConfigPathEnvVar = "CT_CONFIG_PATH"

// DefaultConfigPaths are searched in order when CT_CONFIG_PATH is unset
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/capetravel/config.yaml",
}

// Config is the full service configuration
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Auth     AuthConfig     `koanf:"auth"`
	Identity IdentityConfig `koanf:"identity"`
	Viewport ViewportConfig `koanf:"viewport"`
	Logging  LoggingConfig  `koanf:"logging"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	CORSOrigins     []string      `koanf:"cors_origins" validate:"min=1"`
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

// Addr is the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig selects the reaction/catalogue store. An empty URL runs the
// service on in-process stores seeded with the starter catalogue.
type DatabaseConfig struct {
	URL          string `koanf:"url"`
	MaxOpenConns int    `koanf:"max_open_conns" validate:"min=1"`
	MaxIdleConns int    `koanf:"max_idle_conns" validate:"min=0"`
	Migrate      bool   `koanf:"migrate"`
}

type AuthConfig struct {
	TokenSecret string        `koanf:"token_secret" validate:"required,min=32"`
	Issuer      string        `koanf:"issuer" validate:"required"`
	TokenTTL    time.Duration `koanf:"token_ttl" validate:"gt=0"`
}

type IdentityConfig struct {
	CookieName   string        `koanf:"cookie_name" validate:"required"`
	CookieSecret string        `koanf:"cookie_secret"`
	CookieSecure bool          `koanf:"cookie_secure"`
	CookieMaxAge time.Duration `koanf:"cookie_max_age" validate:"gt=0"`
}

type ViewportConfig struct {
	DefaultLatitude  float64 `koanf:"default_latitude" validate:"min=-90,max=90"`
	DefaultLongitude float64 `koanf:"default_longitude" validate:"min=-180,max=180"`
	DefaultZoom      int     `koanf:"default_zoom" validate:"min=0,max=22"`
	MaxSpanDegrees   float64 `koanf:"max_span_degrees" validate:"gt=0"`
	Padding          float64 `koanf:"padding" validate:"min=0"`
}

type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8000,
			CORSOrigins:     []string{"*"},
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			MaxOpenConns: 25,
			MaxIdleConns: 5,
			Migrate:      true,
		},
		Auth: AuthConfig{
			Issuer:   "capetravel",
			TokenTTL: 7 * 24 * time.Hour,
		},
		Identity: IdentityConfig{
			CookieName:   "ct_visitor",
			CookieSecure: false,
			CookieMaxAge: 365 * 24 * time.Hour,
		},
		Viewport: ViewportConfig{
			DefaultLatitude:  -33.9249,
			DefaultLongitude: 18.4241,
			DefaultZoom:      12,
			MaxSpanDegrees:   2.0,
			Padding:          0.2,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads configuration with precedence env > file > defaults
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	// The cookie signing key falls back to the token secret
	if cfg.Identity.CookieSecret == "" {
		cfg.Identity.CookieSecret = cfg.Auth.TokenSecret
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks field constraints
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	err := v.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func findConfigFile() string {
	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// legacyEnv maps variable names that predate the sectioned layout
var legacyEnv = map[string]string{
	"secret_key":      "auth.token_secret",
	"allowed_origins": "server.cors_origins",
	"database_url":    "database.url",
	"config_path":     "",
}

// envTransformFunc maps CT_SECTION_FIELD_NAME to section.field_name
//
//   - CT_SERVER_PORT -> server.port
//   - CT_AUTH_TOKEN_TTL -> auth.token_ttl
//   - CT_SECRET_KEY -> auth.token_secret
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	if mapped, ok := legacyEnv[key]; ok {
		return mapped
	}
	section, field, ok := strings.Cut(key, "_")
	if !ok {
		return key
	}
	return section + "." + field
}

var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields splits comma-separated env values into slices
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}
