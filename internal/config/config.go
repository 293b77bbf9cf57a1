package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"

	defaultPort              = 2333
	defaultEnv               = "development"
	defaultDSN               = "root:password@tcp(127.0.0.1:3306)/snipvault?charset=utf8mb4&parseTime=True&loc=Local"
	defaultRedisURL          = "redis://localhost:6379/0"
	defaultEnrichmentWorkers = 4
	defaultEnrichmentBacklog = 64
)

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port           int              `yaml:"port"`
	DSN            string           `yaml:"dsn"` // MySQL DSN
	RedisURL       string           `yaml:"redis_url"`
	Env            string           `yaml:"env"` // "development" | "production"
	AllowedOrigins []string         `yaml:"allowed_origins"`
	JWTSecret      string           `yaml:"jwt_secret"`
	AI             AIConfig         `yaml:"ai"`
	Enrichment     EnrichmentConfig `yaml:"enrichment"`
}

// AIConfig configures the generative backend providers.
type AIConfig struct {
	Enable    bool         `yaml:"enable"`
	Providers []AIProvider `yaml:"providers"`
}

// AIProvider is a single generative backend endpoint.
type AIProvider struct {
	ID           string `yaml:"id"`
	Type         string `yaml:"type"` // openai | anthropic | openai-compatible
	APIKey       string `yaml:"api_key"`
	Endpoint     string `yaml:"endpoint"`
	DefaultModel string `yaml:"default_model"`
	Enabled      bool   `yaml:"enabled"`
}

// EnrichmentConfig bounds the background enrichment pool.
type EnrichmentConfig struct {
	Workers int `yaml:"workers"`
	Backlog int `yaml:"backlog"` // queued jobs beyond this are rejected
}

// Load reads the YAML config, applies environment fallbacks and defaults.
// A missing file is not an error; env vars and defaults still apply.
func Load(configPath string) (*AppConfig, error) {
	cfg := defaultAppConfig()

	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", configPath, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config %s: %w", configPath, err)
	}

	applyEnv(&cfg)
	normalize(&cfg)
	return &cfg, nil
}

func defaultAppConfig() AppConfig {
	return AppConfig{
		Port:     defaultPort,
		DSN:      defaultDSN,
		RedisURL: defaultRedisURL,
		Env:      defaultEnv,
		Enrichment: EnrichmentConfig{
			Workers: defaultEnrichmentWorkers,
			Backlog: defaultEnrichmentBacklog,
		},
	}
}

func applyEnv(cfg *AppConfig) {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Port = port
		}
	}
	if v := os.Getenv("DSN"); v != "" {
		cfg.DSN = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.RedisURL = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Env = v
	}
	if v := os.Getenv("AI_API_KEY"); v != "" && len(cfg.AI.Providers) == 0 {
		cfg.AI.Enable = true
		cfg.AI.Providers = []AIProvider{{
			ID:           "env",
			Type:         envOr("AI_PROVIDER_TYPE", "openai-compatible"),
			APIKey:       v,
			Endpoint:     os.Getenv("AI_ENDPOINT"),
			DefaultModel: os.Getenv("AI_MODEL"),
			Enabled:      true,
		}}
	}
}

func normalize(cfg *AppConfig) {
	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))
	if cfg.Env != "production" {
		cfg.Env = "development"
	}
	if cfg.Port <= 0 {
		cfg.Port = defaultPort
	}
	if cfg.Enrichment.Workers <= 0 {
		cfg.Enrichment.Workers = defaultEnrichmentWorkers
	}
	if cfg.Enrichment.Backlog <= 0 {
		cfg.Enrichment.Backlog = defaultEnrichmentBacklog
	}

	origins := make([]string, 0, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	cfg.AllowedOrigins = origins
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// IsDev reports whether the app runs in development mode.
func (c *AppConfig) IsDev() bool { return c.Env != "production" }

// FirstEnabledProvider returns the first enabled AI provider, or nil.
func (c *AIConfig) FirstEnabledProvider() *AIProvider {
	for i := range c.Providers {
		if c.Providers[i].Enabled {
			return &c.Providers[i]
		}
	}
	return nil
}
