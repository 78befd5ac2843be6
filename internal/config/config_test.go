package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"DISCORD_TOKEN", "DISCORD_BOT_TOKEN", "CLIENT_ID", "GUILD_ID",
		"PORT", "STORAGE_PATH", "LOG_LEVEL", "LOG_FILE", "INIT_SLASH_COMMANDS",
	} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "0.0.0.0:3000", cfg.HealthAddr())
	assert.Equal(t, "datastore.json", cfg.StoragePath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.InitSlashCommands)
	assert.Empty(t, cfg.EnvFile)
	assert.ErrorIs(t, cfg.CheckBot(), ErrMissingToken)
}

func TestTokenPrecedence(t *testing.T) {
	clearEnv(t)
	t.Setenv("DISCORD_BOT_TOKEN", "bot-token-value")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "bot-token-value", cfg.Token())
	assert.Equal(t, "DISCORD_BOT_TOKEN", cfg.TokenSource())

	t.Setenv("DISCORD_TOKEN", "primary-token-value")
	cfg, err = Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "primary-token-value", cfg.Token())
	assert.Equal(t, "DISCORD_TOKEN", cfg.TokenSource())
	assert.Equal(t, "primary-to...", cfg.MaskedToken())
}

func TestCheckBotRequiresIDs(t *testing.T) {
	cfg := &Config{DiscordToken: "t"}
	assert.ErrorIs(t, cfg.CheckBot(), ErrMissingIDs)

	cfg.ClientID = "1"
	assert.ErrorIs(t, cfg.CheckBot(), ErrMissingIDs)

	cfg.GuildID = "2"
	assert.NoError(t, cfg.CheckBot())
}

func TestLoadReadsEnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("CLIENT_ID=111\nGUILD_ID=222\nPORT=8080\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("CLIENT_ID")
		os.Unsetenv("GUILD_ID")
		os.Unsetenv("PORT")
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.EnvFile)
	assert.Equal(t, "111", cfg.ClientID)
	assert.Equal(t, "222", cfg.GuildID)
	assert.Equal(t, 8080, cfg.Port)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "70000")
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)

	clearEnv(t)
	t.Setenv("LOG_LEVEL", "verbose")
	_, err = Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)

	clearEnv(t)
	t.Setenv("PORT", "not-a-number")
	_, err = Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}
