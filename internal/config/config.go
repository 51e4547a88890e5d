package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures the settings required to boot the remediation agent service.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	HTTP       HTTPConfig       `yaml:"http"`
	Logging    LoggingConfig    `yaml:"logging"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Session    SessionConfig    `yaml:"session"`
	Cache      CacheConfig      `yaml:"cache"`
	Audit      AuditConfig      `yaml:"audit"`
	Events     EventsConfig     `yaml:"events"`
	Escalation EscalationConfig `yaml:"escalation"`
	Agent      AgentConfig      `yaml:"agent"`
}

// ServerConfig controls gRPC listener behaviour.
type ServerConfig struct {
	Address         string        `yaml:"address"`
	GracefulTimeout time.Duration `yaml:"gracefulTimeout"`
}

// HTTPConfig controls the JSON gateway, which also serves /metrics and /health.
type HTTPConfig struct {
	Address string `yaml:"address"`
	Enabled bool   `yaml:"enabled"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// CatalogConfig controls scenario pack loading.
type CatalogConfig struct {
	Packs   []string `yaml:"packs"`
	Watch   bool     `yaml:"watch"`
	Project string   `yaml:"project"`
}

// SessionConfig controls workflow session lifetime.
type SessionConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

// CacheConfig selects the session store. When disabled sessions live in memory.
type CacheConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Addr         string        `yaml:"addr"`
	Username     string        `yaml:"username"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	DialTimeout  time.Duration `yaml:"dialTimeout"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	MaxRetries   int           `yaml:"maxRetries"`
	TLS          bool          `yaml:"tls"`
}

// AuditConfig controls the SQLite decision trail.
type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// EventsConfig controls publication of pipeline transitions to NATS.
type EventsConfig struct {
	Enabled       bool          `yaml:"enabled"`
	URL           string        `yaml:"url"`
	SubjectPrefix string        `yaml:"subjectPrefix"`
	Timeout       time.Duration `yaml:"timeout"`
}

// EscalationConfig controls the webhook fired when a plan is rejected.
type EscalationConfig struct {
	Enabled    bool          `yaml:"enabled"`
	WebhookURL string        `yaml:"webhookURL"`
	Timeout    time.Duration `yaml:"timeout"`
}

// AgentConfig describes the agent registered with the external runtime.
type AgentConfig struct {
	Name  string `yaml:"name"`
	Model string `yaml:"model"`
}

// Load initialises Config from a YAML file and optional environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("AURA_CONFIG")
	}

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in configuration with environment overrides applied.
func Default() *Config {
	cfg := defaultConfig()
	applyEnvOverrides(&cfg)
	return &cfg
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	var errs []error
	if c.Cache.Enabled && c.Cache.Addr == "" {
		errs = append(errs, errors.New("cache.addr is required when cache is enabled"))
	}
	if c.Audit.Enabled && c.Audit.Path == "" {
		errs = append(errs, errors.New("audit.path is required when audit is enabled"))
	}
	if c.Events.Enabled && c.Events.URL == "" {
		errs = append(errs, errors.New("events.url is required when events are enabled"))
	}
	if c.Escalation.Enabled && c.Escalation.WebhookURL == "" {
		errs = append(errs, errors.New("escalation.webhookURL is required when escalation is enabled"))
	}
	if c.Session.TTL < 0 {
		errs = append(errs, errors.New("session.ttl must not be negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Address:         ":50051",
			GracefulTimeout: 10 * time.Second,
		},
		HTTP:    HTTPConfig{Address: ":8080", Enabled: true},
		Logging: LoggingConfig{Level: "info", JSON: false},
		Catalog: CatalogConfig{
			Packs:   []string{"configs/scenarios/*.yaml"},
			Project: "my-project",
		},
		Session: SessionConfig{TTL: 30 * time.Minute},
		Cache: CacheConfig{
			Enabled:      false,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 500 * time.Millisecond,
			MaxRetries:   2,
		},
		Audit:      AuditConfig{Path: "data/audit.db"},
		Events:     EventsConfig{SubjectPrefix: "aura.sessions", Timeout: 2 * time.Second},
		Escalation: EscalationConfig{Timeout: 5 * time.Second},
		Agent:      AgentConfig{Name: "aura_remediation_agent", Model: "gemini-2.5-flash"},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("AURA_SERVER_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("AURA_HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("AURA_HTTP_ENABLED"); v != "" {
		cfg.HTTP.Enabled = parseBool(v)
	}
	if v := os.Getenv("AURA_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("AURA_LOG_FORMAT"); v == "json" {
		cfg.Logging.JSON = true
	}
	if v := os.Getenv("AURA_SCENARIO_PACKS"); v != "" {
		cfg.Catalog.Packs = splitList(v)
	}
	if v := os.Getenv("AURA_SCENARIO_WATCH"); v != "" {
		cfg.Catalog.Watch = parseBool(v)
	}
	if v := os.Getenv("AURA_PROJECT"); v != "" {
		cfg.Catalog.Project = v
	}
	if v := os.Getenv("AURA_SESSION_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Session.TTL = d
		}
	}
	if v := os.Getenv("AURA_CACHE_ADDR"); v != "" {
		cfg.Cache.Addr = v
	}
	if v := os.Getenv("AURA_CACHE_ENABLED"); v != "" {
		cfg.Cache.Enabled = parseBool(v)
	}
	if v := os.Getenv("AURA_CACHE_USERNAME"); v != "" {
		cfg.Cache.Username = v
	}
	if v := os.Getenv("AURA_CACHE_PASSWORD"); v != "" {
		cfg.Cache.Password = v
	}
	if v := os.Getenv("AURA_CACHE_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Cache.DB = db
		}
	}
	if v := os.Getenv("AURA_CACHE_TLS"); parseBool(v) {
		cfg.Cache.TLS = true
	}
	if v := os.Getenv("AURA_AUDIT_ENABLED"); v != "" {
		cfg.Audit.Enabled = parseBool(v)
	}
	if v := os.Getenv("AURA_AUDIT_PATH"); v != "" {
		cfg.Audit.Path = v
	}
	if v := os.Getenv("AURA_NATS_URL"); v != "" {
		cfg.Events.URL = v
		cfg.Events.Enabled = true
	}
	if v := os.Getenv("AURA_ESCALATION_WEBHOOK"); v != "" {
		cfg.Escalation.WebhookURL = v
		cfg.Escalation.Enabled = true
	}
	if v := os.Getenv("AURA_AGENT_MODEL"); v != "" {
		cfg.Agent.Model = v
	}
}

func parseBool(v string) bool {
	return strings.EqualFold(v, "true") || v == "1"
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
