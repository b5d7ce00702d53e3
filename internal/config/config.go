package config

import (
	"fmt"
	"strings"
	"time"

	"image-converter-go/internal/engine"
	"image-converter-go/internal/formats"
	"image-converter-go/internal/logger"

	"github.com/spf13/viper"
)

// Config represents the main configuration structure
type Config struct {
	SourceDirectory  string         `mapstructure:"source_directory"`
	OutputDirectory  string         `mapstructure:"output_directory"`
	SourceExtensions []string       `mapstructure:"source_extensions"`
	OutputExtensions []string       `mapstructure:"output_extensions"`
	ScalePercent     int            `mapstructure:"scale_percent"`
	Progress         ProgressConfig `mapstructure:"progress"`
	Web              WebConfig      `mapstructure:"web"`
	Logging          LoggingConfig  `mapstructure:"logging"`
}

// ProgressConfig controls how often discovery reports progress
type ProgressConfig struct {
	Every    int           `mapstructure:"every"`
	Interval time.Duration `mapstructure:"interval"`
}

// WebConfig contains web server settings
type WebConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"` // MB
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
	Compress   bool   `mapstructure:"compress"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		SourceExtensions: formats.AllEnabled().Names(),
		OutputExtensions: []string{string(formats.JPG)},
		ScalePercent:     100,
		Progress: ProgressConfig{
			Every:    100,
			Interval: 200 * time.Millisecond,
		},
		Web: WebConfig{
			Host: "localhost",
			Port: 8080,
		},
		Logging: LoggingConfig{
			Level:      "info",
			FilePath:   "image-converter.log",
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     30,
			Compress:   true,
		},
	}
}

// LoadConfig loads configuration from file and environment variables.
// An empty configPath searches for config.yaml in the usual places; a missing
// file is not an error.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetConfigType("yaml")
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.image-converter")
		v.AddConfigPath("/etc/image-converter")
	}

	v.SetEnvPrefix("IMAGE_CONVERTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// setDefaults registers every key so environment variables can override it.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("source_directory", d.SourceDirectory)
	v.SetDefault("output_directory", d.OutputDirectory)
	v.SetDefault("source_extensions", d.SourceExtensions)
	v.SetDefault("output_extensions", d.OutputExtensions)
	v.SetDefault("scale_percent", d.ScalePercent)
	v.SetDefault("progress.every", d.Progress.Every)
	v.SetDefault("progress.interval", d.Progress.Interval)
	v.SetDefault("web.host", d.Web.Host)
	v.SetDefault("web.port", d.Web.Port)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.file_path", d.Logging.FilePath)
	v.SetDefault("logging.max_size", d.Logging.MaxSize)
	v.SetDefault("logging.max_backups", d.Logging.MaxBackups)
	v.SetDefault("logging.max_age", d.Logging.MaxAge)
	v.SetDefault("logging.compress", d.Logging.Compress)
}

// Validate validates the configuration and normalizes extension lists to
// canonical names.
func (c *Config) Validate() error {
	c.SourceDirectory = engine.ExpandPath(c.SourceDirectory)
	c.OutputDirectory = engine.ExpandPath(c.OutputDirectory)

	source, err := formats.ParseFilter(c.SourceExtensions)
	if err != nil {
		return fmt.Errorf("invalid source_extensions: %w", err)
	}
	c.SourceExtensions = source.Names()

	output, err := formats.ParseFilter(c.OutputExtensions)
	if err != nil {
		return fmt.Errorf("invalid output_extensions: %w", err)
	}
	c.OutputExtensions = output.Names()

	if c.ScalePercent < 1 || c.ScalePercent > 100 {
		return fmt.Errorf("invalid scale_percent: %d (valid: 1-100)", c.ScalePercent)
	}

	if c.Progress.Every <= 0 {
		c.Progress.Every = 100
	}
	if c.Progress.Interval < 0 {
		c.Progress.Interval = 200 * time.Millisecond
	}

	if c.Web.Port < 0 || c.Web.Port > 65535 {
		return fmt.Errorf("invalid web.port: %d", c.Web.Port)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error)", c.Logging.Level)
	}

	return nil
}

// SourceFilter returns the configured source formats as a filter.
func (c *Config) SourceFilter() formats.Filter {
	f, _ := formats.ParseFilter(c.SourceExtensions)
	return f
}

// OutputFilter returns the configured output formats as a filter.
func (c *Config) OutputFilter() formats.Filter {
	f, _ := formats.ParseFilter(c.OutputExtensions)
	return f
}

// LoggerConfig converts the logging section for logger.NewLogger.
func (c *Config) LoggerConfig(console bool) logger.LoggerConfig {
	return logger.LoggerConfig{
		Level:      strings.ToLower(c.Logging.Level),
		FilePath:   c.Logging.FilePath,
		MaxSize:    c.Logging.MaxSize,
		MaxBackups: c.Logging.MaxBackups,
		MaxAge:     c.Logging.MaxAge,
		Compress:   c.Logging.Compress,
		Console:    console,
	}
}
