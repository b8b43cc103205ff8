package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kftp/kftp/pkg/logging"
)

// Config represents the file server configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Transport TransportConfig `yaml:"transport"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig contains server-specific settings
type ServerConfig struct {
	Port    int    `yaml:"port"`     // UDP port to bind; the CLI argument overrides this
	RootDir string `yaml:"root_dir"` // Directory served; "." serves the working directory
}

// TransportConfig contains datagram transport settings
type TransportConfig struct {
	ReceiveTimeoutMs int `yaml:"receive_timeout_ms"` // Timeout of a single receive call
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `yaml:"level"`       // debug, info, warn, error
	OutputFile string `yaml:"output_file"` // Log file path (empty = stderr)
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:    8080,
			RootDir: ".",
		},
		Transport: TransportConfig{
			ReceiveTimeoutMs: 500,
		},
		Logging: LoggingConfig{
			Level:      "info",
			OutputFile: "",
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 0 and 65535")
	}
	if c.Server.RootDir == "" {
		return fmt.Errorf("server.root_dir is required")
	}
	if c.Transport.ReceiveTimeoutMs < 10 {
		return fmt.Errorf("transport.receive_timeout_ms must be at least 10")
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	return nil
}

// ReceiveTimeout returns the configured receive timeout as a duration
func (c *Config) ReceiveTimeout() time.Duration {
	return time.Duration(c.Transport.ReceiveTimeoutMs) * time.Millisecond
}
