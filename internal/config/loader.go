package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Load reads and parses configuration from a file or a directory containing
// config.yaml. Environment variable references like ${BOT_TOKEN} are expanded
// before parsing, and the legacy environment overrides (PORT, BOT_TOKEN,
// GH_WEBHOOKS) are applied afterwards.
func Load(configPath string) (*Config, error) {
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path %q: %w", configPath, err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("config file not found: %s\n"+
			"Hint: Check the path or run with --config flag", absPath)
	}

	if info.IsDir() {
		absPath = filepath.Join(absPath, "config.yaml")
		if _, err := os.Stat(absPath); err != nil {
			return nil, fmt.Errorf("directory provided but config.yaml not found: %s", absPath)
		}
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	interpolated := interpolateEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(interpolated), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	applyConfigDefaults(&cfg)

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}

	// Hash-verify the config file against the .checksums manifest, if present.
	if err := verifyConfigHash(absPath); err != nil {
		return nil, err
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// interpolateEnv replaces ${VAR} references with environment values.
// Unset variables expand to the empty string.
func interpolateEnv(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// applyEnvOverrides honors the environment contract of the original deployment:
// BOT_TOKEN for the bot credential, PORT for the listen port, and GH_WEBHOOKS
// as a JSON map of source identity to {"secret": ..., "chat_id": ...}.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("BOT_TOKEN"); v != "" && cfg.Telegram.BotToken == "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Listen = ":" + v
	}
	if v := os.Getenv("GH_WEBHOOKS"); v != "" {
		var hooks map[string]struct {
			Secret string          `json:"secret"`
			ChatID json.RawMessage `json:"chat_id"`
		}
		if err := json.Unmarshal([]byte(v), &hooks); err != nil {
			return fmt.Errorf("failed to parse GH_WEBHOOKS: %w", err)
		}
		if cfg.Hooks == nil {
			cfg.Hooks = make(map[string]HookConfig, len(hooks))
		}
		for name, h := range hooks {
			chatID, err := rawChatID(h.ChatID)
			if err != nil {
				return fmt.Errorf("GH_WEBHOOKS entry %q: %w", name, err)
			}
			cfg.Hooks[name] = HookConfig{Secret: h.Secret, ChatID: chatID}
		}
	}
	return nil
}

// rawChatID converts a JSON chat_id (number or string) to a ChatID.
func rawChatID(raw json.RawMessage) (ChatID, error) {
	if len(raw) == 0 {
		return "", fmt.Errorf("chat_id is required")
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return ChatID(s), nil
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return ChatID(fmt.Sprintf("%d", n)), nil
	}
	return "", fmt.Errorf("chat_id must be a number or string")
}

// applyConfigDefaults merges default values into config where not explicitly set.
func applyConfigDefaults(cfg *Config) {
	defaults := Defaults()

	if cfg.Service.Name == "" {
		cfg.Service.Name = defaults.Service.Name
	}
	if cfg.Service.LogLevel == "" {
		cfg.Service.LogLevel = defaults.Service.LogLevel
	}
	if cfg.Service.LogFormat == "" {
		cfg.Service.LogFormat = defaults.Service.LogFormat
	}
	if cfg.Listen == "" {
		cfg.Listen = defaults.Listen
	}
	if cfg.API.Listen == "" {
		cfg.API.Listen = defaults.API.Listen
	}
	if cfg.Telegram.APIBase == "" {
		cfg.Telegram.APIBase = defaults.Telegram.APIBase
	}
	if cfg.Telegram.Timeout == 0 {
		cfg.Telegram.Timeout = defaults.Telegram.Timeout
	}
	if cfg.Hooks == nil {
		cfg.Hooks = make(map[string]HookConfig)
	}
}

// validate checks the loaded configuration for structural problems.
func validate(cfg *Config) error {
	if cfg.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required (or set BOT_TOKEN)")
	}
	if len(cfg.Hooks) == 0 {
		return fmt.Errorf("at least one hooks entry is required (or set GH_WEBHOOKS)")
	}
	for name, h := range cfg.Hooks {
		if h.Secret == "" {
			return fmt.Errorf("hooks.%q: secret is required", name)
		}
		if h.ChatID == "" {
			return fmt.Errorf("hooks.%q: chat_id is required", name)
		}
	}
	if cfg.API.Enabled && cfg.API.Listen == "" {
		return fmt.Errorf("api.listen is required when the API is enabled")
	}
	return nil
}

// DiscoverConfigDir finds the config location by checking standard locations.
// Priority order: $GHRELAY_CONFIG_DIR, ~/.config/ghrelay, /etc/ghrelay, ./config.yaml
func DiscoverConfigDir() (string, error) {
	if dir := os.Getenv("GHRELAY_CONFIG_DIR"); dir != "" {
		if _, err := os.Stat(dir); err == nil {
			return dir, nil
		}
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		userConfigDir := filepath.Join(homeDir, ".config", "ghrelay")
		if _, err := os.Stat(userConfigDir); err == nil {
			return userConfigDir, nil
		}
	}

	systemConfigDir := "/etc/ghrelay"
	if _, err := os.Stat(systemConfigDir); err == nil {
		return systemConfigDir, nil
	}

	legacyConfigPath := "./config.yaml"
	if _, err := os.Stat(legacyConfigPath); err == nil {
		return legacyConfigPath, nil
	}

	return "", fmt.Errorf("no config found (checked: $GHRELAY_CONFIG_DIR, ~/.config/ghrelay, /etc/ghrelay, ./config.yaml)")
}

// verifyConfigHash verifies the config file against the .checksums manifest in
// its directory. A missing manifest skips verification; a manifest that does
// not cover the file, or a hash mismatch, is an error.
func verifyConfigHash(path string) error {
	dir := filepath.Dir(path)
	checksums, err := LoadChecksums(dir)
	if err != nil {
		// No .checksums file; integrity verification not enabled.
		return nil
	}

	basename := filepath.Base(path)
	expectedHash, ok := checksums.Hashes[basename]
	if !ok {
		return fmt.Errorf("config file %s has no hash in checksums at %s\n"+
			"Run: ghrelay config lock --config %s", basename, dir, path)
	}

	if err := VerifyFileHash(path, expectedHash); err != nil {
		return fmt.Errorf("config verification failed for %s: %w\n"+
			"This indicates tampering or unauthorized modification.\n"+
			"If you edited this file intentionally, run: ghrelay config lock --config %s", path, err, path)
	}
	return nil
}
