package config

import (
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the application configuration. It is loaded once at
// startup and treated as immutable afterwards.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Data      DataConfig      `mapstructure:"data"`
	Theme     ThemeConfig     `mapstructure:"theme"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig contains listener-specific configuration.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	// ExposeErrors controls whether 500 bodies include the failure detail.
	ExposeErrors bool `mapstructure:"expose_errors"`
}

// DataConfig describes the served content.
type DataConfig struct {
	Root           string   `mapstructure:"root"`
	TemplateFile   string   `mapstructure:"template_file"`
	ProtectedPaths []string `mapstructure:"protected_paths"`
}

// ThemeConfig carries UI cosmetics surfaced in the startup banner.
type ThemeConfig struct {
	Color         string `mapstructure:"color"`
	BlurIntensity string `mapstructure:"blur_intensity"`
	SiteTitle     string `mapstructure:"site_title"`
}

// TelemetryConfig contains telemetry configuration.
type TelemetryConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// LogConfig contains logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// Load loads the configuration from viper.
func Load() (*Config, error) {
	cfg := &Config{}

	setDefaults()

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}

	if err := postProcess(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8000)
	viper.SetDefault("server.expose_errors", false)

	// Data defaults
	viper.SetDefault("data.root", "cdnData")
	viper.SetDefault("data.template_file", "index.html")
	viper.SetDefault("data.protected_paths", []string{})

	// Theme defaults
	viper.SetDefault("theme.color", "#FF0000")
	viper.SetDefault("theme.blur_intensity", "25px")
	viper.SetDefault("theme.site_title", "Index Fo")

	// Telemetry defaults
	viper.SetDefault("telemetry.enabled", false)

	// Log defaults
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.json", false)

	// Environment variable mappings
	viper.BindEnv("data.root", "INDEXFO_DATA_ROOT")
	viper.BindEnv("data.template_file", "INDEXFO_TEMPLATE_FILE")
	viper.BindEnv("telemetry.endpoint", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func postProcess(cfg *Config) error {
	// Serve from an absolute data root so containment checks are anchored.
	if !filepath.IsAbs(cfg.Data.Root) {
		abs, err := filepath.Abs(cfg.Data.Root)
		if err != nil {
			return err
		}
		cfg.Data.Root = abs
	}

	return nil
}
