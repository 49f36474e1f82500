// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds the entire application configuration. It is built once at
// startup and treated as immutable afterwards; components receive the
// sections they need by value.
type Config struct {
	Logger   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Browser  BrowserConfig  `mapstructure:"browser" yaml:"browser"`
	Form     FormConfig     `mapstructure:"form" yaml:"form"`
	Storage  StorageConfig  `mapstructure:"storage" yaml:"storage"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// ServerConfig holds settings for the inbound HTTP service.
type ServerConfig struct {
	Host      string `mapstructure:"host" yaml:"host"`
	Port      int    `mapstructure:"port" yaml:"port"`
	APIKey    string `mapstructure:"api_key" yaml:"-"`
	HostURL   string `mapstructure:"host_url" yaml:"host_url"`
	StaticDir string `mapstructure:"static_dir" yaml:"static_dir"`
	// RunsPerMinute bounds how often new automation runs may start. The IRS
	// endpoint tolerates very little parallel traffic from one origin.
	RunsPerMinute int `mapstructure:"runs_per_minute" yaml:"runs_per_minute"`
	RunBurst      int `mapstructure:"run_burst" yaml:"run_burst"`
}

// BrowserConfig holds settings for the headless browser session.
type BrowserConfig struct {
	Headless     bool `mapstructure:"headless" yaml:"headless"`
	WindowWidth  int  `mapstructure:"window_width" yaml:"window_width"`
	WindowHeight int  `mapstructure:"window_height" yaml:"window_height"`
	// WaitTimeout is the per-interaction wait budget (element presence,
	// visibility, clickability).
	WaitTimeout time.Duration `mapstructure:"wait_timeout" yaml:"wait_timeout"`
	// SettleDelay is the pause between scrolling a control into view and
	// acting on it; RetryDelay is the pause between click retry attempts.
	SettleDelay  time.Duration `mapstructure:"settle_delay" yaml:"settle_delay"`
	RetryDelay   time.Duration `mapstructure:"retry_delay" yaml:"retry_delay"`
	ClickRetries int           `mapstructure:"click_retries" yaml:"click_retries"`
}

// FormConfig identifies the external form being automated.
type FormConfig struct {
	URL string `mapstructure:"url" yaml:"url"`
}

// StorageConfig holds the blob storage sink settings. Uploads are disabled
// entirely when Bucket is empty.
type StorageConfig struct {
	Bucket string `mapstructure:"bucket" yaml:"bucket"`
	Region string `mapstructure:"region" yaml:"region"`
}

// DatabaseConfig holds the optional run-history database connection.
type DatabaseConfig struct {
	URL string `mapstructure:"url" yaml:"-"`
}

// SetDefaults initializes default values for all configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "einfill")
	v.SetDefault("logger.log_file", "einfill.log")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Server --
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.host_url", "http://localhost:8000")
	v.SetDefault("server.static_dir", "static")
	v.SetDefault("server.runs_per_minute", 2)
	v.SetDefault("server.run_burst", 1)

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.window_width", 1920)
	v.SetDefault("browser.window_height", 1080)
	v.SetDefault("browser.wait_timeout", "10s")
	v.SetDefault("browser.settle_delay", "500ms")
	v.SetDefault("browser.retry_delay", "1s")
	v.SetDefault("browser.click_retries", 3)

	// -- Form --
	v.SetDefault("form.url", "https://sa.www4.irs.gov/modiein/individual/index.jsp")

	// -- Storage --
	v.SetDefault("storage.region", "us-east-1")
}

// NewDefaultConfig creates a configuration struct populated with defaults.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// NewConfigFromViper creates a configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	// Bind environment variables for sensitive data.
	v.BindEnv("server.api_key", "EINFILL_API_KEY")
	v.BindEnv("database.url", "EINFILL_DATABASE_URL")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Viper occasionally misses bound env vars on nested keys.
	if cfg.Server.APIKey == "" {
		cfg.Server.APIKey = os.Getenv("EINFILL_API_KEY")
	}
	if cfg.Database.URL == "" {
		cfg.Database.URL = os.Getenv("EINFILL_DATABASE_URL")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be a valid TCP port")
	}
	if c.Server.StaticDir == "" {
		return fmt.Errorf("server.static_dir is a required configuration field")
	}
	if c.Form.URL == "" {
		return fmt.Errorf("form.url is a required configuration field")
	}
	if c.Browser.WaitTimeout <= 0 {
		return fmt.Errorf("browser.wait_timeout must be a positive duration")
	}
	if c.Browser.ClickRetries < 0 {
		return fmt.Errorf("browser.click_retries must not be negative")
	}
	if c.Storage.Bucket != "" && c.Storage.Region == "" {
		return fmt.Errorf("storage.region is required when storage.bucket is set")
	}
	return nil
}
