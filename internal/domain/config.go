package domain

import (
	"time"
)

// Config represents the main application configuration
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	ExternalAPI ExternalAPIConfig `mapstructure:"external_api"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Classifier  ClassifierConfig  `mapstructure:"classifier"`
	Assets      AssetConfig       `mapstructure:"assets"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	MCP         MCPConfig         `mapstructure:"mcp"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// ExternalAPIConfig groups the remote services consulted by the resolvers
type ExternalAPIConfig struct {
	Diagnosis       ServiceConfig `mapstructure:"diagnosis"`
	DrugLabel       ServiceConfig `mapstructure:"drug_label"`
	TextGeneration  ServiceConfig `mapstructure:"text_generation"`
	ImageGeneration ServiceConfig `mapstructure:"image_generation"`
}

// ServiceConfig represents the endpoint, credentials and limits of one remote service
type ServiceConfig struct {
	Endpoint  string        `mapstructure:"endpoint"`
	APIKey    string        `mapstructure:"api_key"`
	Timeout   time.Duration `mapstructure:"timeout"`
	RateLimit int           `mapstructure:"rate_limit"` // requests per second
}

// CacheConfig represents cache configuration
type CacheConfig struct {
	Backend       string        `mapstructure:"backend"` // "file", "sqlite", "redis", "postgres"
	Dir           string        `mapstructure:"dir"`
	SQLitePath    string        `mapstructure:"sqlite_path"`
	RedisURL      string        `mapstructure:"redis_url"`
	PostgresURL   string        `mapstructure:"postgres_url"`
	TTL           time.Duration `mapstructure:"ttl"`
	ImageTTL      time.Duration `mapstructure:"image_ttl"`
	MemoSize      int           `mapstructure:"memo_size"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// ClassifierConfig locates the local diagnosis model
type ClassifierConfig struct {
	ModelPath string `mapstructure:"model_path"`
}

// AssetConfig represents image pipeline configuration
type AssetConfig struct {
	StaticDir         string `mapstructure:"static_dir"`
	DefaultSize       int    `mapstructure:"default_size"`
	GenerationEnabled bool   `mapstructure:"generation_enabled"`
	MaxConcurrency    int    `mapstructure:"max_concurrency"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// MCPConfig represents MCP server configuration
type MCPConfig struct {
	ServerName    string `mapstructure:"server_name"`
	ServerVersion string `mapstructure:"server_version"`
}
