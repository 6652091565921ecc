// Package config loads toolbox settings from a YAML file, TOOLBOX_*
// environment variables and command-line overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Validation errors.
var (
	ErrInvalidPort   = errors.New("server.port must be between 1 and 65535")
	ErrInvalidLevel  = errors.New("log.level must be one of trace, debug, info, warn, error")
	ErrInvalidFormat = errors.New("log.format must be json or console")
	ErrUnknownDriver = errors.New("drafts.driver must be sqlite3 or postgres")
	ErrMissingRegion = errors.New("artifacts.s3.region is required when a bucket is set")
)

// Config is the full application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Browser   BrowserConfig   `mapstructure:"browser"`
	Drafts    DraftsConfig    `mapstructure:"drafts"`
	Artifacts ArtifactsConfig `mapstructure:"artifacts"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type BrowserConfig struct {
	ChromePath   string        `mapstructure:"chrome_path"`
	NoSandbox    bool          `mapstructure:"no_sandbox"`
	AutoDownload bool          `mapstructure:"auto_download"`
	Timeout      time.Duration `mapstructure:"timeout"`
	DeviceScale  float64       `mapstructure:"device_scale"`
}

type DraftsConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type ArtifactsConfig struct {
	Dir string   `mapstructure:"dir"`
	S3  S3Config `mapstructure:"s3"`
}

type S3Config struct {
	Bucket   string `mapstructure:"bucket"`
	Region   string `mapstructure:"region"`
	Prefix   string `mapstructure:"prefix"`
	Endpoint string `mapstructure:"endpoint"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("browser.timeout", 30*time.Second)
	v.SetDefault("browser.device_scale", 2.0)
	v.SetDefault("drafts.driver", "sqlite3")
	v.SetDefault("drafts.dsn", "toolbox.db")
	v.SetDefault("artifacts.dir", "")
}

// New returns a viper instance reading cfgFile, or toolbox.yaml from the
// working directory or ~/.config/toolbox when cfgFile is empty. A missing
// default file is not an error.
func New(cfgFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("toolbox")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "toolbox"))
		}
	}

	v.SetEnvPrefix("TOOLBOX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}
	return v, nil
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field ranges and enumerations.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: got %d", ErrInvalidPort, c.Server.Port)
	}
	switch strings.ToLower(c.Log.Level) {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidLevel, c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidFormat, c.Log.Format)
	}
	switch c.Drafts.Driver {
	case "sqlite3", "postgres":
	default:
		return fmt.Errorf("%w: got %q", ErrUnknownDriver, c.Drafts.Driver)
	}
	if c.Artifacts.S3.Bucket != "" && c.Artifacts.S3.Region == "" {
		return ErrMissingRegion
	}
	return nil
}
