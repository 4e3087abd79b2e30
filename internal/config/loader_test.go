package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const minimalConfig = `
service:
  name: ghrelay
  log_level: debug
telegram:
  bot_token: "123456:test-token"
hooks:
  "octocat/hello-world":
    secret: "s3cret"
    chat_id: -1001234567890
  "my-org":
    secret: "org-secret"
    chat_id: "@mychannel"
`

func TestLoad_Minimal(t *testing.T) {
	path := writeConfig(t, minimalConfig)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ghrelay", cfg.Service.Name)
	assert.Equal(t, "debug", cfg.Service.LogLevel)
	assert.Equal(t, "json", cfg.Service.LogFormat) // default
	assert.Equal(t, DefaultListen, cfg.Listen)     // default
	assert.Equal(t, DefaultTelegramAPIBase, cfg.Telegram.APIBase)
	assert.Equal(t, DefaultTelegramTimeout, cfg.Telegram.Timeout)

	repo, ok := cfg.Hooks["octocat/hello-world"]
	require.True(t, ok)
	assert.Equal(t, "s3cret", repo.Secret)
	assert.Equal(t, ChatID("-1001234567890"), repo.ChatID)
	assert.True(t, repo.ChatID.IsNumeric())

	org, ok := cfg.Hooks["my-org"]
	require.True(t, ok)
	assert.Equal(t, ChatID("@mychannel"), org.ChatID)
	assert.False(t, org.ChatID.IsNumeric())
}

func TestLoad_Directory(t *testing.T) {
	path := writeConfig(t, minimalConfig)

	cfg, err := Load(filepath.Dir(path))
	require.NoError(t, err)
	assert.Equal(t, "ghrelay", cfg.Service.Name)
}

func TestLoad_EnvInterpolation(t *testing.T) {
	t.Setenv("TEST_HOOK_SECRET", "from-env")
	path := writeConfig(t, `
telegram:
  bot_token: "tok"
hooks:
  "octocat/hello-world":
    secret: "${TEST_HOOK_SECRET}"
    chat_id: 42
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Hooks["octocat/hello-world"].Secret)
}

func TestLoad_LegacyEnvOverrides(t *testing.T) {
	t.Setenv("BOT_TOKEN", "env-token")
	t.Setenv("PORT", "9000")
	t.Setenv("GH_WEBHOOKS", `{"octocat/hello-world": {"secret": "s", "chat_id": -100123}, "my-org": {"secret": "t", "chat_id": "@chan"}}`)

	path := writeConfig(t, `
service:
  name: ghrelay
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.Telegram.BotToken)
	assert.Equal(t, ":9000", cfg.Listen)
	assert.Equal(t, ChatID("-100123"), cfg.Hooks["octocat/hello-world"].ChatID)
	assert.Equal(t, ChatID("@chan"), cfg.Hooks["my-org"].ChatID)
}

func TestLoad_MissingBotToken(t *testing.T) {
	path := writeConfig(t, `
hooks:
  "octocat/hello-world":
    secret: "s"
    chat_id: 1
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bot_token")
}

func TestLoad_MissingHookSecret(t *testing.T) {
	path := writeConfig(t, `
telegram:
  bot_token: "tok"
hooks:
  "octocat/hello-world":
    chat_id: 1
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "secret")
}

func TestLoad_NoHooks(t *testing.T) {
	path := writeConfig(t, `
telegram:
  bot_token: "tok"
`)

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_BadGHWebhooksJSON(t *testing.T) {
	t.Setenv("GH_WEBHOOKS", `{not json`)
	path := writeConfig(t, `
telegram:
  bot_token: "tok"
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GH_WEBHOOKS")
}

func TestIntegrity_LockAndVerify(t *testing.T) {
	path := writeConfig(t, minimalConfig)

	report, err := GenerateChecksums(path, false)
	require.NoError(t, err)
	assert.True(t, report.Written)
	assert.NotEmpty(t, report.Hash)

	// Verification passes on the unmodified file.
	_, err = Load(path)
	require.NoError(t, err)

	// Tamper with the file; verification must now fail.
	require.NoError(t, os.WriteFile(path, []byte(minimalConfig+"\n# tampered\n"), 0o644))
	_, err = Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "verification failed")
}

func TestIntegrity_DryRunDoesNotWrite(t *testing.T) {
	path := writeConfig(t, minimalConfig)

	report, err := GenerateChecksums(path, true)
	require.NoError(t, err)
	assert.False(t, report.Written)

	_, err = os.Stat(report.ChecksumPath)
	assert.True(t, os.IsNotExist(err))
}
