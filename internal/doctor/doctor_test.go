package doctor

import (
	"strings"
	"testing"

	"github.com/mattjoyce/ghrelay/internal/config"
)

func validConfig() *config.Config {
	return &config.Config{
		Service: config.ServiceConfig{
			Name:      "ghrelay",
			LogLevel:  "info",
			LogFormat: "json",
		},
		Listen: ":5000",
		Telegram: config.TelegramConfig{
			BotToken: "123456:ABC-DEF1234ghIkl",
			APIBase:  config.DefaultTelegramAPIBase,
		},
		Hooks: map[string]config.HookConfig{
			"octocat/hello-world": {
				Secret: "a-long-enough-webhook-secret",
				ChatID: "-1001234567890",
			},
		},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	t.Parallel()
	r := New(validConfig()).Validate()
	if !r.Valid {
		t.Fatalf("expected valid, got errors: %v", r.Errors)
	}
	if len(r.Warnings) != 0 {
		t.Errorf("expected no warnings, got: %v", r.Warnings)
	}
}

func TestValidate_MissingBotToken(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Telegram.BotToken = ""
	r := New(cfg).Validate()
	if r.Valid {
		t.Fatal("expected invalid")
	}
	if !hasIssue(r.Errors, "telegram.bot_token") {
		t.Errorf("missing bot_token error, got: %v", r.Errors)
	}
}

func TestValidate_NoHooks(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Hooks = nil
	r := New(cfg).Validate()
	if r.Valid {
		t.Fatal("expected invalid")
	}
	if !hasIssue(r.Errors, "hooks") {
		t.Errorf("missing hooks error, got: %v", r.Errors)
	}
}

func TestValidate_HookMissingSecret(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Hooks["octocat/hello-world"] = config.HookConfig{ChatID: "-100555"}
	r := New(cfg).Validate()
	if r.Valid {
		t.Fatal("expected invalid")
	}
	if !hasIssue(r.Errors, "hooks.octocat/hello-world.secret") {
		t.Errorf("missing secret error, got: %v", r.Errors)
	}
}

func TestValidate_SuspiciousChatID(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Hooks["octocat/hello-world"] = config.HookConfig{
		Secret: "a-long-enough-webhook-secret",
		ChatID: "not a chat id",
	}
	r := New(cfg).Validate()
	if !r.Valid {
		t.Fatalf("expected valid with warning, got errors: %v", r.Errors)
	}
	if !hasIssue(r.Warnings, "hooks.octocat/hello-world.chat_id") {
		t.Errorf("missing chat_id warning, got: %v", r.Warnings)
	}
}

func TestValidate_APIEnabledWithoutAuth(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.API = config.APIConfig{Enabled: true, Listen: "127.0.0.1:8080"}
	r := New(cfg).Validate()
	if !r.Valid {
		t.Fatalf("expected valid, got errors: %v", r.Errors)
	}
	if !hasIssue(r.Warnings, "api.auth") {
		t.Errorf("missing api.auth warning, got: %v", r.Warnings)
	}
}

func TestValidate_APIEnabledWithoutListen(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.API = config.APIConfig{Enabled: true, Auth: config.APIAuthConfig{APIKey: "k"}}
	r := New(cfg).Validate()
	if r.Valid {
		t.Fatal("expected invalid")
	}
	if !hasIssue(r.Errors, "api.listen") {
		t.Errorf("missing api.listen error, got: %v", r.Errors)
	}
}

func TestValidate_UnresolvedEnvVar(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.BotToken = "${GHRELAY_TEST_UNSET_VAR}"
	r := New(cfg).Validate()
	if !hasIssue(r.Warnings, "telegram.bot_token") {
		t.Errorf("missing env var warning, got: %v", r.Warnings)
	}
}

func TestFormatHuman(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Telegram.BotToken = ""
	out := FormatHuman(New(cfg).Validate())
	if !strings.Contains(out, "Configuration invalid") {
		t.Errorf("report missing invalid header:\n%s", out)
	}
	if !strings.Contains(out, "ERROR [telegram]") {
		t.Errorf("report missing telegram error:\n%s", out)
	}

	out = FormatHuman(New(validConfig()).Validate())
	if out != "Configuration valid.\n" {
		t.Errorf("valid report = %q", out)
	}
}

func hasIssue(issues []Issue, field string) bool {
	for _, i := range issues {
		if i.Field == field {
			return true
		}
	}
	return false
}
