// Package config loads runtime settings from an optional YAML file, a .env
// file and ARMORY_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/erazemk/armory/internal/model"
)

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// DatabaseConfig holds the SQLite location.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// JWTConfig holds token settings. An empty secret means the secret stored
// in the database is used.
type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Expiry time.Duration `mapstructure:"expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Path  string `mapstructure:"path"`
	Level string `mapstructure:"level"`
}

// AuditConfig holds the async audit queue settings.
type AuditConfig struct {
	QueueSize int `mapstructure:"queue_size"`
}

// TransfersConfig holds transfer completion policy.
type TransfersConfig struct {
	MissingSibling string `mapstructure:"missing_sibling"`
}

// Config is the full runtime configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Log       LogConfig       `mapstructure:"log"`
	Audit     AuditConfig     `mapstructure:"audit"`
	Transfers TransfersConfig `mapstructure:"transfers"`
}

// SiblingPolicy returns the parsed missing sibling policy.
func (c Config) SiblingPolicy() model.MissingSiblingPolicy {
	p, _ := model.ParseMissingSiblingPolicy(c.Transfers.MissingSibling)
	return p
}

// Validate checks values that would otherwise fail late.
func (c Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr must not be empty")
	}
	if c.Database.Path == "" {
		return errors.New("database.path must not be empty")
	}
	if c.JWT.Expiry <= 0 {
		return fmt.Errorf("jwt.expiry must be positive, got %s", c.JWT.Expiry)
	}
	if _, err := model.ParseMissingSiblingPolicy(c.Transfers.MissingSibling); err != nil {
		return fmt.Errorf("transfers.missing_sibling: %w", err)
	}
	return nil
}

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "ARMORY"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("database.path", "armory.db")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiry", 24*time.Hour)
	v.SetDefault("log.path", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("audit.queue_size", 256)
	v.SetDefault("transfers.missing_sibling", string(model.SiblingSkip))
}

// Load reads configuration. file may be empty, in which case armory.yaml is
// looked up in the working directory and is optional. A .env file in the
// working directory is loaded into the environment first if present.
func Load(file string) (Config, error) {
	var cfg Config

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("armory")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return cfg, fmt.Errorf("reading config: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
