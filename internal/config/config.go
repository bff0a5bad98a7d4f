package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Proxy   ProxyConfig   `yaml:"proxy"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host              string        `yaml:"host" envconfig:"SERVER_HOST" default:"127.0.0.1"`
	Port              int           `yaml:"port" envconfig:"SERVER_PORT" default:"9848"`
	// Zero read, write and request timeouts leave fetches and uploads unbounded.
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" envconfig:"SERVER_READ_HEADER_TIMEOUT" default:"10s"`
	ReadTimeout       time.Duration `yaml:"read_timeout" envconfig:"SERVER_READ_TIMEOUT" default:"0s"`
	WriteTimeout      time.Duration `yaml:"write_timeout" envconfig:"SERVER_WRITE_TIMEOUT" default:"0s"`
	RequestTimeout    time.Duration `yaml:"request_timeout" envconfig:"SERVER_REQUEST_TIMEOUT" default:"0s"`
}

// StorageConfig holds filesystem storage configuration.
// BasePath is the application data directory; videos land in BasePath/VideosDir.
type StorageConfig struct {
	BasePath        string `yaml:"base_path" envconfig:"STORAGE_PATH" default:"./data"`
	VideosDir       string `yaml:"videos_dir" envconfig:"STORAGE_VIDEOS_DIR" default:"videos"`
	CollisionPolicy string `yaml:"collision_policy" envconfig:"STORAGE_COLLISION_POLICY" default:"overwrite"`
	MaxFileSize     int64  `yaml:"max_file_size" envconfig:"STORAGE_MAX_FILE_SIZE" default:"2147483648"` // 2GB
}

// ProxyConfig holds media proxy configuration.
type ProxyConfig struct {
	// Timeout of zero means the fetch runs until the server finishes or fails.
	Timeout         time.Duration `yaml:"timeout" envconfig:"PROXY_TIMEOUT" default:"0s"`
	UserAgent       string        `yaml:"user_agent" envconfig:"PROXY_USER_AGENT" default:"mediashim/1.0"`
	AllowedPrefixes []string      `yaml:"allowed_prefixes" envconfig:"PROXY_ALLOWED_PREFIXES"`
	MaxBodySize     int64         `yaml:"max_body_size" envconfig:"PROXY_MAX_BODY_SIZE" default:"0"`
}

// Load reads configuration from file and environment variables.
// Environment variables override file values.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set.
func (c *Config) Validate() error {
	if c.Storage.BasePath == "" {
		return fmt.Errorf("STORAGE_PATH is required")
	}
	if c.Storage.VideosDir == "" {
		return fmt.Errorf("STORAGE_VIDEOS_DIR is required")
	}
	switch c.Storage.CollisionPolicy {
	case "", "overwrite", "unique":
	default:
		return fmt.Errorf("STORAGE_COLLISION_POLICY must be overwrite or unique, got %q", c.Storage.CollisionPolicy)
	}
	if c.Storage.MaxFileSize < 0 {
		return fmt.Errorf("STORAGE_MAX_FILE_SIZE must not be negative")
	}
	if c.Proxy.MaxBodySize < 0 {
		return fmt.Errorf("PROXY_MAX_BODY_SIZE must not be negative")
	}
	if c.Server.ReadHeaderTimeout < 0 || c.Server.ReadTimeout < 0 ||
		c.Server.WriteTimeout < 0 || c.Server.RequestTimeout < 0 {
		return fmt.Errorf("server timeouts must not be negative")
	}
	if c.Proxy.Timeout < 0 {
		return fmt.Errorf("PROXY_TIMEOUT must not be negative")
	}
	return nil
}

// Address returns the server address in host:port format.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
