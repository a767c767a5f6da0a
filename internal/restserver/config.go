package restserver

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

// Config holds the REST server configuration
type Config struct {
	ListenAddr       string `yaml:"listen_addr"`
	HTTPPort         int    `yaml:"http_port"`
	MaxSamples       int    `yaml:"max_samples"`
	DefaultWindow    int    `yaml:"default_window"`
	DefaultTapering  string `yaml:"default_tapering"`
	DefaultNaNPolicy string `yaml:"default_nan_policy"`
}

// LoadConfig reads a YAML configuration file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &cfg, nil
}

// ApplyDefaults fills in any unset fields, logging each substitution
func (c *Config) ApplyDefaults(logger *zap.SugaredLogger) {
	if c.ListenAddr == "" {
		logger.Info("listen_addr not provided; defaulting to 0.0.0.0 (all interfaces)")
		c.ListenAddr = "0.0.0.0"
	}
	if c.HTTPPort == 0 {
		logger.Info("http_port not provided; defaulting to 8090")
		c.HTTPPort = 8090
	}
	if c.MaxSamples == 0 {
		c.MaxSamples = 1_000_000
	}
	if c.DefaultWindow == 0 {
		c.DefaultWindow = 5
	}
	if c.DefaultTapering == "" {
		c.DefaultTapering = "symmetric"
	}
	if c.DefaultNaNPolicy == "" {
		c.DefaultNaNPolicy = "include"
	}
}
