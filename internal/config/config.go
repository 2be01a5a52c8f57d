// Package config loads server configuration from defaults, an optional
// salesledger.yaml file and SALES_* environment variables, in that order of
// increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	configName = "salesledger"
	envPrefix  = "SALES"

	// devSecret is only accepted when Env is "dev".
	devSecret = "dev-insecure-secret"
)

// ErrMissingSecret is returned when no JWT secret is configured outside dev.
var ErrMissingSecret = errors.New("jwt.secret (SALES_JWT_SECRET) must be set outside dev")

// Config is the full server configuration.
type Config struct {
	Env    string       `mapstructure:"env"`
	Server ServerConfig `mapstructure:"server"`
	DB     DBConfig     `mapstructure:"db"`
	JWT    JWTConfig    `mapstructure:"jwt"`
	Log    LogConfig    `mapstructure:"log"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Issuer string        `mapstructure:"issuer"`
	TTL    time.Duration `mapstructure:"ttl"`
}

type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level"`
	// Format is "text" for colored output or "json".
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)
	v.SetDefault("db.path", "./data/sales.db")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "salesledger")
	v.SetDefault("jwt.ttl", 24*time.Hour)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads configuration. Searched paths are the working directory and
// ./config; a missing file is not an error. Keys map to environment variables
// by upper-casing and replacing dots, e.g. jwt.ttl becomes SALES_JWT_TTL.
func Load(searchPaths ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	if len(searchPaths) == 0 {
		searchPaths = []string{".", "./config"}
	}
	for _, p := range searchPaths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read %s config: %w", configName, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		if c.Env != "dev" {
			return ErrMissingSecret
		}
		c.JWT.Secret = devSecret
	}
	if c.JWT.TTL <= 0 {
		return fmt.Errorf("jwt.ttl must be positive, got %s", c.JWT.TTL)
	}
	if c.DB.Path == "" {
		return errors.New("db.path must be set")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// UsingDevSecret reports whether the insecure built-in JWT secret is in use.
func (c *Config) UsingDevSecret() bool {
	return c.JWT.Secret == devSecret
}
