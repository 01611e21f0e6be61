// Copyright 2026 The pepperbot Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package config provides configuration management for pepperbot. It handles
// loading and parsing the YAML configuration file and provides structured
// access to application settings: transport credentials, safety-gate tuning,
// cache sizing, model tiers, knowledge paths, and logging.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application's configuration, loaded from a YAML file.
type Config struct {
	// Telegram configures the chat transport.
	Telegram TelegramConfig `yaml:"telegram"`

	// Server configures the management API listener.
	Server ServerConfig `yaml:"server"`

	// Model configures the upstream LLM endpoint and tier identifiers.
	Model ModelConfig `yaml:"model"`

	// RateLimit tunes the per-user fixed-window limiter.
	RateLimit RateLimitConfig `yaml:"rate-limit"`

	// Dedup tunes the duplicate-message guard.
	Dedup DedupConfig `yaml:"dedup"`

	// Cache tunes the in-memory response cache.
	Cache CacheConfig `yaml:"cache"`

	// Knowledge points at the grounding material and optional data files.
	Knowledge KnowledgeConfig `yaml:"knowledge"`

	// PlannerRules are optional expression rules that override the planner's
	// default strategy and tier selection. First matching rule wins.
	PlannerRules []PlannerRule `yaml:"planner-rules"`

	// Maintenance configures the periodic sweep schedules.
	Maintenance MaintenanceConfig `yaml:"maintenance"`

	// Debug enables debug-level logging.
	Debug bool `yaml:"debug"`

	// LoggingToFile controls whether logs go to rotating files or stdout.
	LoggingToFile bool `yaml:"logging-to-file"`
}

// TelegramConfig holds the chat transport settings.
type TelegramConfig struct {
	// TokenEnv names the environment variable holding the bot token. The
	// token itself never appears in the config file.
	TokenEnv string `yaml:"token-env"`

	// PollTimeoutSeconds is the long-poll timeout for the update feed.
	PollTimeoutSeconds int `yaml:"poll-timeout-seconds"`
}

// ServerConfig holds the management API listener settings.
type ServerConfig struct {
	// Host is the interface to bind; empty binds all interfaces.
	Host string `yaml:"host"`
	// Port is the management API port.
	Port int `yaml:"port"`
}

// ModelConfig holds the upstream model endpoint and tier mapping.
type ModelConfig struct {
	// BaseURL overrides the OpenAI-compatible endpoint; empty uses the
	// client library default.
	BaseURL string `yaml:"base-url"`

	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string `yaml:"api-key-env"`

	// FastModel serves simple and medium queries.
	FastModel string `yaml:"fast-model"`

	// QualityModel serves complex queries.
	QualityModel string `yaml:"quality-model"`

	// TimeoutSeconds bounds each completion call.
	TimeoutSeconds int `yaml:"timeout-seconds"`
}

// RateLimitConfig tunes the per-user message limiter.
type RateLimitConfig struct {
	// WindowSeconds is the fixed window length.
	WindowSeconds int `yaml:"window-seconds"`
	// MaxMessages is the per-user allowance inside one window.
	MaxMessages int `yaml:"max-messages"`
}

// DedupConfig tunes the duplicate-message guard.
type DedupConfig struct {
	// WindowSeconds is how long a message hash suppresses repeats.
	WindowSeconds int `yaml:"window-seconds"`
	// MaxEntries caps the guard's memory; the oldest entry is evicted first.
	MaxEntries int `yaml:"max-entries"`
}

// CacheConfig tunes the response cache.
type CacheConfig struct {
	// MaxEntries caps the cache size.
	MaxEntries int `yaml:"max-entries"`
	// TTLSeconds is the default entry lifetime.
	TTLSeconds int `yaml:"ttl-seconds"`
}

// KnowledgeConfig points at grounding and data files.
type KnowledgeConfig struct {
	// Path is the knowledge markdown file; a .gz suffix enables gzip.
	Path string `yaml:"path"`
	// FactsFile optionally extends the built-in static facts (JSON).
	FactsFile string `yaml:"facts-file"`
	// LinksFile optionally replaces the built-in verified links (JSON).
	LinksFile string `yaml:"links-file"`
	// WatchForChanges reloads the knowledge file when it changes on disk.
	WatchForChanges bool `yaml:"watch-for-changes"`
}

// PlannerRule is one config-defined planner override. Condition is an
// expression over the classification (intent, complexity, length_bucket,
// char_budget); a matching rule may force a tier or force generation.
type PlannerRule struct {
	Name          string `yaml:"name"`
	Condition     string `yaml:"condition"`
	ForceTier     string `yaml:"force-tier"`
	ForceGenerate bool   `yaml:"force-generate"`
}

// MaintenanceConfig holds the sweep schedules in cron syntax.
type MaintenanceConfig struct {
	// SweepSchedule runs the limiter/guard/cache sweeps. Empty disables.
	SweepSchedule string `yaml:"sweep-schedule"`
}

// LoadConfig reads a YAML configuration file from the given path, applies
// defaults, unmarshals it into a Config struct, validates it, and returns it.
func LoadConfig(configFile string) (*Config, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := defaultConfig()
	if err = yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err = cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// defaultConfig returns a Config with every tunable at its default. YAML
// unmarshal overwrites only the keys the file sets.
func defaultConfig() *Config {
	return &Config{
		Telegram: TelegramConfig{
			TokenEnv:           "TELEGRAM_BOT_TOKEN",
			PollTimeoutSeconds: 30,
		},
		Server: ServerConfig{
			Port: 8318,
		},
		Model: ModelConfig{
			APIKeyEnv:      "PEPPERBOT_API_KEY",
			FastModel:      "gpt-4o-mini",
			QualityModel:   "gpt-4o",
			TimeoutSeconds: 30,
		},
		RateLimit: RateLimitConfig{
			WindowSeconds: 60,
			MaxMessages:   5,
		},
		Dedup: DedupConfig{
			WindowSeconds: 30,
			MaxEntries:    1000,
		},
		Cache: CacheConfig{
			MaxEntries: 500,
			TTLSeconds: 900,
		},
		Knowledge: KnowledgeConfig{
			Path: "./data/knowledge.md",
		},
		Maintenance: MaintenanceConfig{
			SweepSchedule: "@every 1m",
		},
	}
}

func (c *Config) validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	if c.Model.FastModel == "" || c.Model.QualityModel == "" {
		return fmt.Errorf("model tiers must both be set")
	}
	for _, rule := range c.PlannerRules {
		if rule.Name == "" || rule.Condition == "" {
			return fmt.Errorf("planner rule needs both name and condition")
		}
		switch rule.ForceTier {
		case "", "fast", "quality":
		default:
			return fmt.Errorf("planner rule %q: unknown tier %q", rule.Name, rule.ForceTier)
		}
	}
	return nil
}

// TelegramToken resolves the bot token from the environment.
func (c *Config) TelegramToken() string {
	return os.Getenv(c.Telegram.TokenEnv)
}

// ModelAPIKey resolves the upstream API key from the environment.
func (c *Config) ModelAPIKey() string {
	return os.Getenv(c.Model.APIKeyEnv)
}

// RateLimitWindow returns the limiter window as a duration.
func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimit.WindowSeconds) * time.Second
}

// DedupWindow returns the guard window as a duration.
func (c *Config) DedupWindow() time.Duration {
	return time.Duration(c.Dedup.WindowSeconds) * time.Second
}

// CacheTTL returns the default cache entry lifetime as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// ModelTimeout returns the per-call completion timeout as a duration.
func (c *Config) ModelTimeout() time.Duration {
	return time.Duration(c.Model.TimeoutSeconds) * time.Second
}
