package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "127.0.0.1:8900", cfg.ListenAddr())
	assert.Equal(t, "Friendorbitbot", cfg.Telegram.BotUsername)
	assert.Empty(t, cfg.Telegram.BotToken)
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "orbit.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
bind = "0.0.0.0"
port = 9000

[telegram]
bot_username = "MyOrbitBot"
webhook_secret = "file-secret"
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", cfg.ListenAddr())
	assert.Equal(t, "MyOrbitBot", cfg.Telegram.BotUsername)
	// Untouched sections keep defaults
	assert.Empty(t, cfg.Database.Path)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/does/not/exist.toml")
	require.Error(t, err)
}

func TestApplyEnvWins(t *testing.T) {
	t.Setenv("ORBIT_BOT_TOKEN", "env-token")
	t.Setenv("ORBIT_WEBHOOK_SECRET", "env-secret")

	cfg := Default()
	cfg.Telegram.WebhookSecret = "file-secret"
	cfg.ApplyEnv()

	assert.Equal(t, "env-token", cfg.Telegram.BotToken)
	assert.Equal(t, "env-secret", cfg.Telegram.WebhookSecret)
}
