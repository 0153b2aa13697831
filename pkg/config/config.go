// Package config provides application configuration.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the root runtime configuration, built once at process start and
// passed to every component. Credentials are optional: a missing value
// degrades the dependent endpoint, it never prevents startup.
type Config struct {
	Host string `env:"NOVA_HOST" envDefault:"0.0.0.0"`
	Port int    `env:"NOVA_PORT" envDefault:"8080"`

	// Intake bot (webhook + lead relay notifications).
	BotToken    string `env:"TELEGRAM_BOT_TOKEN"`
	GroupChatID int64  `env:"TELEGRAM_CHAT_ID"`

	// Support bot (chat bridge between the site widget and a staff account).
	SupportBotToken string `env:"TELEGRAM_SUPPORT_BOT_TOKEN"`
	EmployeeID      int64  `env:"TELEGRAM_EMPLOYEE_ID"`

	Sessions SessionsConfig
	Logging  LoggingConfig
}

// SessionsConfig controls the intake conversation state store.
type SessionsConfig struct {
	// TTL after which an idle intake session falls back to Idle.
	TTL time.Duration `env:"SESSION_TTL" envDefault:"30m"`
	// StorePath enables the sqlite-backed store when set; empty keeps
	// sessions in memory.
	StorePath string `env:"SESSION_STORE_PATH"`
}

// LoggingConfig controls structured log output format and verbosity.
type LoggingConfig struct {
	Format string `env:"NOVA_LOG_FORMAT" envDefault:"text"`
	Level  string `env:"NOVA_LOG_LEVEL" envDefault:"info"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	cfg.BotToken = strings.TrimSpace(cfg.BotToken)
	cfg.SupportBotToken = strings.TrimSpace(cfg.SupportBotToken)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks values that would make the process unusable. Missing
// credentials are allowed; out-of-range basics are not.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("NOVA_PORT must be in 1..65535, got %d", c.Port)
	}
	if c.Sessions.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.Sessions.TTL)
	}
	return nil
}

// HasIntakeBot reports whether the webhook bot credentials are configured.
func (c *Config) HasIntakeBot() bool {
	return c.BotToken != ""
}

// HasGroupChat reports whether the staff group for lead reports is configured.
func (c *Config) HasGroupChat() bool {
	return c.GroupChatID != 0
}

// HasSupportBot reports whether the chat-bridge credentials are configured.
func (c *Config) HasSupportBot() bool {
	return c.SupportBotToken != "" && c.EmployeeID != 0
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
