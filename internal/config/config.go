package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/symptom-insight-server/internal/domain"
)

// EnvPrefix is prepended to every environment override, e.g.
// SYMPTOM_INSIGHT_EXTERNAL_API_DIAGNOSIS_API_KEY.
const EnvPrefix = "SYMPTOM_INSIGHT"

var validBackends = map[string]bool{
	"file": true, "sqlite": true, "redis": true, "postgres": true,
}

// Manager implements the ConfigManager interface using Viper
type Manager struct {
	v          *viper.Viper
	config     *domain.Config
	configFile string
	envFiles   []string
}

// Option customizes a Manager before the first load
type Option func(*Manager)

// WithConfigFile reads configuration from an explicit file instead of the search paths
func WithConfigFile(path string) Option {
	return func(m *Manager) {
		m.configFile = path
	}
}

// WithEnvFiles overrides the dotenv files loaded before reading the environment
func WithEnvFiles(paths ...string) Option {
	return func(m *Manager) {
		m.envFiles = paths
	}
}

// NewManager creates a new configuration manager
func NewManager(opts ...Option) (*Manager, error) {
	m := &Manager{envFiles: []string{".env"}}
	for _, opt := range opts {
		opt(m)
	}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

// loadConfig loads configuration from various sources
func (m *Manager) loadConfig() error {
	// A missing .env is normal; variables already set in the environment win
	if err := godotenv.Load(m.envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error loading env file: %w", err)
	}

	v := viper.New()
	if m.configFile != "" {
		v.SetConfigFile(m.configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/symptom-insight/")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read configuration file (optional - will use defaults and env vars if not found)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &domain.Config{}
	if err := v.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.v = v
	m.config = config
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.idle_timeout", "120s")

	// External API defaults
	v.SetDefault("external_api.diagnosis.endpoint", "https://diagnosis.p.rapidapi.com/diagnosis")
	v.SetDefault("external_api.diagnosis.api_key", "")
	v.SetDefault("external_api.diagnosis.timeout", "15s")
	v.SetDefault("external_api.diagnosis.rate_limit", 5)

	v.SetDefault("external_api.drug_label.endpoint", "https://api.fda.gov/drug/label.json")
	v.SetDefault("external_api.drug_label.api_key", "")
	v.SetDefault("external_api.drug_label.timeout", "10s")
	v.SetDefault("external_api.drug_label.rate_limit", 4)

	v.SetDefault("external_api.text_generation.endpoint", "https://generativelanguage.googleapis.com/v1beta/models/gemini-pro:generateContent")
	v.SetDefault("external_api.text_generation.api_key", "")
	v.SetDefault("external_api.text_generation.timeout", "10s")
	v.SetDefault("external_api.text_generation.rate_limit", 2)

	v.SetDefault("external_api.image_generation.endpoint", "https://generativelanguage.googleapis.com/v1beta/models/gemini-pro-vision:generateContent")
	v.SetDefault("external_api.image_generation.api_key", "")
	v.SetDefault("external_api.image_generation.timeout", "10s")
	v.SetDefault("external_api.image_generation.rate_limit", 2)

	// Cache defaults
	v.SetDefault("cache.backend", "file")
	v.SetDefault("cache.dir", "api_cache")
	v.SetDefault("cache.sqlite_path", "api_cache/cache.db")
	v.SetDefault("cache.redis_url", "redis://localhost:6379/0")
	v.SetDefault("cache.postgres_url", "postgres://postgres@localhost:5432/symptom_insight?sslmode=disable")
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.image_ttl", "24h")
	v.SetDefault("cache.memo_size", 100)
	v.SetDefault("cache.sweep_interval", "1h")

	// Classifier and asset defaults
	v.SetDefault("classifier.model_path", "")
	v.SetDefault("assets.static_dir", "static/images")
	v.SetDefault("assets.default_size", 300)
	v.SetDefault("assets.generation_enabled", true)
	v.SetDefault("assets.max_concurrency", 4)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.filename", "logs/symptom-insight.log")
	v.SetDefault("logging.max_size", 100)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age", 28)
	v.SetDefault("logging.compress", true)

	// MCP defaults
	v.SetDefault("mcp.server_name", "symptom-insight-server")
	v.SetDefault("mcp.server_version", "v0.1.0")
}

// GetConfig returns the complete configuration
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// GetServerConfig returns server configuration
func (m *Manager) GetServerConfig() *domain.ServerConfig {
	return &m.config.Server
}

// GetExternalAPIConfig returns external API configuration
func (m *Manager) GetExternalAPIConfig() *domain.ExternalAPIConfig {
	return &m.config.ExternalAPI
}

// GetCacheConfig returns cache configuration
func (m *Manager) GetCacheConfig() *domain.CacheConfig {
	return &m.config.Cache
}

// Reload reloads the configuration
func (m *Manager) Reload() error {
	return m.loadConfig()
}

// Validate validates the configuration
func (m *Manager) Validate() error {
	config := m.config

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	services := map[string]domain.ServiceConfig{
		"diagnosis":        config.ExternalAPI.Diagnosis,
		"drug_label":       config.ExternalAPI.DrugLabel,
		"text_generation":  config.ExternalAPI.TextGeneration,
		"image_generation": config.ExternalAPI.ImageGeneration,
	}
	for name, svc := range services {
		if svc.Endpoint == "" {
			return fmt.Errorf("%s endpoint is required", name)
		}
		if svc.Timeout <= 0 {
			return fmt.Errorf("%s timeout must be positive", name)
		}
	}

	if !validBackends[strings.ToLower(config.Cache.Backend)] {
		return fmt.Errorf("invalid cache backend: %s", config.Cache.Backend)
	}
	if config.Cache.TTL <= 0 || config.Cache.ImageTTL <= 0 {
		return fmt.Errorf("cache TTLs must be positive")
	}
	if config.Cache.MemoSize <= 0 {
		return fmt.Errorf("invalid cache memo size: %d", config.Cache.MemoSize)
	}

	if config.Assets.DefaultSize <= 0 {
		return fmt.Errorf("invalid default asset size: %d", config.Assets.DefaultSize)
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	return nil
}

// IsProduction returns true if running in production mode
func (m *Manager) IsProduction() bool {
	return strings.ToLower(m.v.GetString("environment")) == "production"
}

// IsDevelopment returns true if running in development mode
func (m *Manager) IsDevelopment() bool {
	env := strings.ToLower(m.v.GetString("environment"))
	return env == "development" || env == "dev" || env == ""
}
