// Package config loads the command-line configuration from an optional
// YAML file and JUNQI_* environment variables.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of the environment variables read by Load.
const EnvPrefix = "JUNQI"

// DefaultFile is the config file looked up in the working directory when
// no explicit path is given.
const DefaultFile = "junqi.yaml"

// Config holds the CLI settings.
type Config struct {
	LogLevel   string   `mapstructure:"log_level"`
	LogFormat  string   `mapstructure:"log_format"`
	Debug      bool     `mapstructure:"debug"`
	Workers    int      `mapstructure:"workers"`
	CacheSize  int      `mapstructure:"cache_size"`
	Indent     int      `mapstructure:"indent"`
	Extensions []string `mapstructure:"extensions"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		LogLevel:  "WARN",
		LogFormat: "text",
		Workers:   4,
		CacheSize: 256,
		Indent:    2,
	}
}

// Load reads the configuration. path names a config file; when empty,
// junqi.yaml in the working directory is used if it exists. Environment
// variables such as JUNQI_LOG_LEVEL or JUNQI_EXTENSIONS=math,aggregate
// override file values.
func Load(path string) (Config, error) {
	v := viper.New()

	def := Default()
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("log_format", def.LogFormat)
	v.SetDefault("debug", def.Debug)
	v.SetDefault("workers", def.Workers)
	v.SetDefault("cache_size", def.CacheSize)
	v.SetDefault("indent", def.Indent)
	v.SetDefault("extensions", []string{})

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("cache_size must not be negative, got %d", c.CacheSize)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be text or json, got %q", c.LogFormat)
	}
	return nil
}
