package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete ghrelay configuration.
type Config struct {
	Service  ServiceConfig         `yaml:"service"`
	Listen   string                `yaml:"listen"`
	API      APIConfig             `yaml:"api,omitempty"`
	Telegram TelegramConfig        `yaml:"telegram"`
	Hooks    map[string]HookConfig `yaml:"hooks"`
}

// ServiceConfig defines core service settings.
type ServiceConfig struct {
	Name      string `yaml:"name"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// APIConfig defines the optional ops API server settings.
type APIConfig struct {
	Enabled bool          `yaml:"enabled"`
	Listen  string        `yaml:"listen"`
	Auth    APIAuthConfig `yaml:"auth"`
}

// APIAuthConfig defines ops API authentication settings.
type APIAuthConfig struct {
	APIKey string `yaml:"api_key"`
}

// TelegramConfig defines the outbound Telegram Bot API settings.
type TelegramConfig struct {
	// BotToken is the bot credential. Usually "${BOT_TOKEN}" in the file.
	BotToken string `yaml:"bot_token"`

	// APIBase is the Telegram API base URL. Overridable for testing.
	APIBase string `yaml:"api_base,omitempty"`

	// Timeout bounds a single sendMessage call.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// HookConfig defines a single registered webhook source: the shared secret
// used for HMAC verification and the destination chat.
type HookConfig struct {
	Secret string `yaml:"secret"`
	ChatID ChatID `yaml:"chat_id"`
}

// ChatID is a Telegram chat identifier. Telegram accepts either a numeric id
// (-1001234567890) or a channel username ("@mychannel"), so YAML integers and
// strings are both allowed.
type ChatID string

// UnmarshalYAML accepts scalar integers and strings.
func (c *ChatID) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("chat_id must be a scalar, got %v", node.Kind)
	}
	*c = ChatID(node.Value)
	return nil
}

// IsNumeric reports whether the chat id looks like a numeric Telegram id
// rather than a channel username.
func (c ChatID) IsNumeric() bool {
	s := string(c)
	if s == "" {
		return false
	}
	if s[0] == '-' {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (c ChatID) String() string {
	return string(c)
}

// Default values for the Telegram client.
const (
	DefaultTelegramAPIBase = "https://api.telegram.org"
	DefaultTelegramTimeout = 10 * time.Second
	DefaultListen          = ":5000"
)

// Defaults returns a Config with sensible defaults.
func Defaults() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:      "ghrelay",
			LogLevel:  "info",
			LogFormat: "json",
		},
		Listen: DefaultListen,
		API: APIConfig{
			Enabled: false,
			Listen:  "127.0.0.1:8080",
		},
		Telegram: TelegramConfig{
			APIBase: DefaultTelegramAPIBase,
			Timeout: DefaultTelegramTimeout,
		},
		Hooks: make(map[string]HookConfig),
	}
}
