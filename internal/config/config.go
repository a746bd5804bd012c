// Package config loads the server configuration from YAML, with environment
// overrides for secrets. API keys never live in the YAML file; each provider
// names the environment variable that carries its key.
package config

import (
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root server configuration.
type Config struct {
	Server    ServerConfig        `yaml:"server"`
	Redis     RedisConfig         `yaml:"redis"`
	Decision  DecisionConfig      `yaml:"decision"`
	Game      GameConfig          `yaml:"game"`
	Providers map[string]Provider `yaml:"providers"`
}

// ServerConfig configures the WebSocket/HTTP listener.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr returns the listen address in host:port form.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RedisConfig configures the match-action historian. Disabled means matches
// run without history recording.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Enabled  bool   `yaml:"enabled"`
}

// DecisionConfig configures the external bot decision service.
type DecisionConfig struct {
	BaseURL   string `yaml:"base_url"`
	TimeoutMS int    `yaml:"timeout_ms"` // hard per-request deadline
}

// Timeout returns the per-request deadline for decision calls.
func (c *DecisionConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// GameConfig holds the table knobs.
type GameConfig struct {
	HandSize     int `yaml:"hand_size"`
	BotTurnDelay int `yaml:"bot_turn_delay_ms"` // pacing between consecutive bot turns
	ReadyTimeout int `yaml:"ready_timeout_sec"` // how long to wait for seat readiness
}

// BotTurnDelayDuration returns the pause inserted between bot turns.
func (c *GameConfig) BotTurnDelayDuration() time.Duration {
	return time.Duration(c.BotTurnDelay) * time.Millisecond
}

// Provider describes one LLM backend of the decision service.
type Provider struct {
	Name         string `yaml:"name"`
	DefaultModel string `yaml:"default_model"`
	APIKeyEnv    string `yaml:"api_key_env"`
}

// APIKey reads the provider's key from the environment.
func (p *Provider) APIKey() string {
	return os.Getenv(p.APIKeyEnv)
}

// ProviderNames returns the configured provider keys in stable order, used
// for round-robin bot assignment.
func (c *Config) ProviderNames() []string {
	names := make([]string, 0, len(c.Providers))
	for name := range c.Providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load reads and parses the YAML config at path, filling defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns the built-in configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.Decision.BaseURL == "" {
		c.Decision.BaseURL = "http://localhost:8000"
	}
	if c.Decision.TimeoutMS == 0 {
		c.Decision.TimeoutMS = 10000
	}
	if c.Game.HandSize == 0 {
		c.Game.HandSize = 7
	}
	if c.Game.BotTurnDelay == 0 {
		c.Game.BotTurnDelay = 500
	}
	if c.Game.ReadyTimeout == 0 {
		c.Game.ReadyTimeout = 60
	}
	if len(c.Providers) == 0 {
		c.Providers = map[string]Provider{
			"gemini": {
				Name:         "Google Gemini",
				DefaultModel: "gemini-2.5-pro",
				APIKeyEnv:    "GEMINI_API_KEY",
			},
			"groq": {
				Name:         "Groq",
				DefaultModel: "openai/gpt-oss-120b",
				APIKeyEnv:    "GROQ_API_KEY",
			},
			"cerebras": {
				Name:         "Cerebras",
				DefaultModel: "qwen-3-235b-a22b-thinking-2507",
				APIKeyEnv:    "CEREBRAS_API_KEY",
			},
			"sambanova": {
				Name:         "SambaNova",
				DefaultModel: "DeepSeek-R1-0528",
				APIKeyEnv:    "SAMBANOVA_API_KEY",
			},
		}
	}
}
