// Package config loads service configuration from a YAML file with
// environment variable overrides. Configuration is read once at startup
// and immutable afterwards.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultReadTimeout is the default HTTP read timeout
	DefaultReadTimeout = 10 * time.Second
	// DefaultWriteTimeout is the default HTTP write timeout
	DefaultWriteTimeout = 30 * time.Second
	// DefaultStrapiTimeout is the default per-call timeout against the CMS origin.
	// It is kept well below the orchestrator's overall resync budget so a
	// single slow origin call cannot starve the retry loop.
	DefaultStrapiTimeout = 10 * time.Second
	// DefaultCacheTTL is the default hot-cache entry lifetime
	DefaultCacheTTL = 2 * time.Minute
)

type Config struct {
	Debug    bool           `yaml:"debug"` // Application debug mode (controls log level and format)
	Server   ServerConfig   `yaml:"server"`
	Strapi   StrapiConfig   `yaml:"strapi"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Content  ContentConfig  `yaml:"content"`
}

type ServerConfig struct {
	Address      string        `yaml:"address"`       // e.g. ":8080"
	ReadTimeout  time.Duration `yaml:"read_timeout"`  // Default: 10s
	WriteTimeout time.Duration `yaml:"write_timeout"` // Default: 30s
	CORSOrigins  []string      `yaml:"cors_origins"`  // Default: allow all
}

type StrapiConfig struct {
	BaseURL string        `yaml:"base_url"` // CMS origin base address
	Token   string        `yaml:"token"`    // Bearer credential, optional
	Timeout time.Duration `yaml:"timeout"`  // Per-call timeout (default: 10s)
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type ContentConfig struct {
	CacheTTL time.Duration `yaml:"cache_ttl"` // Hot-cache TTL (default: 2m)
}

// Validate checks if the configuration is valid and returns an error if not.
func (c *Config) Validate() error {
	if c.Strapi.BaseURL == "" {
		return errors.New("strapi.base_url is required")
	}
	if !strings.HasPrefix(c.Strapi.BaseURL, "http") {
		return fmt.Errorf("strapi.base_url must be an absolute URL, got %q", c.Strapi.BaseURL)
	}
	if c.Database.Host == "" || c.Database.User == "" || c.Database.DBName == "" {
		return errors.New("database.host, database.user and database.dbname are required")
	}
	if c.Redis.Addr == "" {
		return errors.New("redis.addr is required")
	}
	if c.Content.CacheTTL <= 0 {
		return fmt.Errorf("content.cache_ttl must be positive, got %v", c.Content.CacheTTL)
	}
	return nil
}

// setDefaults sets default values for configuration fields
func setDefaults(cfg *Config) {
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Strapi.Timeout == 0 {
		cfg.Strapi.Timeout = DefaultStrapiTimeout
	}
	if cfg.Database.Port == "" {
		cfg.Database.Port = "5432"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Content.CacheTTL == 0 {
		cfg.Content.CacheTTL = DefaultCacheTTL
	}
}

// overrideWithEnvVars overrides configuration with environment variables
func overrideWithEnvVars(cfg *Config) {
	if baseURL := os.Getenv("STRAPI_BASE_URL"); baseURL != "" {
		cfg.Strapi.BaseURL = baseURL
	}
	if token := os.Getenv("STRAPI_API_TOKEN"); token != "" {
		cfg.Strapi.Token = token
	}
	if host := os.Getenv("DATABASE_HOST"); host != "" {
		cfg.Database.Host = host
	}
	if port := os.Getenv("DATABASE_PORT"); port != "" {
		cfg.Database.Port = port
	}
	if user := os.Getenv("DATABASE_USER"); user != "" {
		cfg.Database.User = user
	}
	if password := os.Getenv("DATABASE_PASSWORD"); password != "" {
		cfg.Database.Password = password
	}
	if dbname := os.Getenv("DATABASE_NAME"); dbname != "" {
		cfg.Database.DBName = dbname
	}
	if sslmode := os.Getenv("DATABASE_SSLMODE"); sslmode != "" {
		cfg.Database.SSLMode = sslmode
	}
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		cfg.Redis.Addr = redisAddr
	}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		cfg.Redis.Password = redisPassword
	}
	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Address = ":" + strings.TrimPrefix(port, ":")
	}
	if appDebug := os.Getenv("APP_DEBUG"); appDebug != "" {
		cfg.Debug = parseBool(appDebug)
	}
}

// parseBool parses common boolean string representations
func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// Load reads configuration from the given YAML file, applies defaults and
// environment overrides, and validates the result. A missing file is not an
// error: the configuration is then built from defaults and environment
// variables alone, which is how the service runs in containers.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if unmarshalErr := yaml.Unmarshal(data, &cfg); unmarshalErr != nil {
			return nil, fmt.Errorf("parse config: %w", unmarshalErr)
		}
	case os.IsNotExist(err):
		// Environment-only configuration
	default:
		return nil, fmt.Errorf("read config file: %w", err)
	}

	setDefaults(&cfg)
	overrideWithEnvVars(&cfg)

	if validateErr := cfg.Validate(); validateErr != nil {
		return nil, fmt.Errorf("invalid config: %w", validateErr)
	}

	return &cfg, nil
}
