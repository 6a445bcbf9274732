// Package config holds orbit configuration: TOML file, defaults, and
// environment overrides for secrets.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config holds all orbit configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Telegram TelegramConfig `toml:"telegram"`
}

type ServerConfig struct {
	Bind string `toml:"bind"`
	Port int    `toml:"port"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type TelegramConfig struct {
	BotToken      string `toml:"bot_token"`
	BotUsername   string `toml:"bot_username"`
	WebhookSecret string `toml:"webhook_secret"`
	WebAppURL     string `toml:"webapp_url"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 8900,
		},
		Database: DatabaseConfig{
			Path: "", // resolved at runtime via store.DefaultDBPath()
		},
		Telegram: TelegramConfig{
			BotUsername: "Friendorbitbot",
		},
	}
}

// Load reads a TOML config file over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overlays secret-bearing environment variables. Env always
// wins over the file so deployments never need tokens on disk.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("ORBIT_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("ORBIT_WEBHOOK_SECRET"); v != "" {
		c.Telegram.WebhookSecret = v
	}
	if v := os.Getenv("ORBIT_WEBAPP_URL"); v != "" {
		c.Telegram.WebAppURL = v
	}
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}
