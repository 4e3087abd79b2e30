// Package doctor validates ghrelay configuration.
package doctor

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/mattjoyce/ghrelay/internal/config"
)

// Result holds the outcome of a validation run.
type Result struct {
	Valid    bool    `json:"valid"`
	Errors   []Issue `json:"errors,omitempty"`
	Warnings []Issue `json:"warnings,omitempty"`
}

// Issue describes a single validation error or warning.
type Issue struct {
	Category string `json:"category"`
	Message  string `json:"message"`
	Field    string `json:"field,omitempty"`
}

// Doctor validates a loaded configuration.
type Doctor struct {
	cfg *config.Config
}

// New creates a Doctor from a loaded config.
func New(cfg *config.Config) *Doctor {
	return &Doctor{cfg: cfg}
}

// Validate runs all checks and returns a result.
func (d *Doctor) Validate() *Result {
	r := &Result{Valid: true}

	d.validateServiceConfig(r)
	d.validateTelegramConfig(r)
	d.validateHooks(r)
	d.validateAPIConfig(r)
	d.warnMissingEnvVars(r)

	r.Valid = len(r.Errors) == 0
	return r
}

func (d *Doctor) addError(r *Result, category, field, msg string) {
	r.Errors = append(r.Errors, Issue{Category: category, Field: field, Message: msg})
}

func (d *Doctor) addWarning(r *Result, category, field, msg string) {
	r.Warnings = append(r.Warnings, Issue{Category: category, Field: field, Message: msg})
}

// validateServiceConfig checks core service fields.
func (d *Doctor) validateServiceConfig(r *Result) {
	switch d.cfg.Service.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		d.addError(r, "service", "service.log_level",
			fmt.Sprintf("invalid log level %q (expected debug, info, warn, or error)", d.cfg.Service.LogLevel))
	}
	switch d.cfg.Service.LogFormat {
	case "", "json", "text":
	default:
		d.addError(r, "service", "service.log_format",
			fmt.Sprintf("invalid log format %q (expected json or text)", d.cfg.Service.LogFormat))
	}
	if d.cfg.Listen == "" {
		d.addError(r, "service", "listen", "listen address is required")
	}
}

// validateTelegramConfig checks the outbound Telegram settings.
func (d *Doctor) validateTelegramConfig(r *Result) {
	if d.cfg.Telegram.BotToken == "" {
		d.addError(r, "telegram", "telegram.bot_token", "bot_token is required")
		return
	}
	// Telegram tokens are "<bot id>:<secret>".
	if !strings.Contains(d.cfg.Telegram.BotToken, ":") {
		d.addWarning(r, "telegram", "telegram.bot_token",
			"bot_token does not look like a Telegram bot token (expected <id>:<secret>)")
	}
	if d.cfg.Telegram.APIBase != "" && !strings.HasPrefix(d.cfg.Telegram.APIBase, "https://") {
		d.addWarning(r, "telegram", "telegram.api_base",
			fmt.Sprintf("api_base %q is not https; the bot token travels in the URL", d.cfg.Telegram.APIBase))
	}
}

// validateHooks checks each registered webhook source.
func (d *Doctor) validateHooks(r *Result) {
	if len(d.cfg.Hooks) == 0 {
		d.addError(r, "hooks", "hooks", "at least one hook is required")
		return
	}

	for name, h := range d.cfg.Hooks {
		field := fmt.Sprintf("hooks.%s", name)

		if h.Secret == "" {
			d.addError(r, "hooks", field+".secret",
				fmt.Sprintf("hook %q: secret is required", name))
		} else if len(h.Secret) < 16 {
			d.addWarning(r, "hooks", field+".secret",
				fmt.Sprintf("hook %q: secret is short (< 16 characters)", name))
		}

		chat := h.ChatID.String()
		switch {
		case chat == "":
			d.addError(r, "hooks", field+".chat_id",
				fmt.Sprintf("hook %q: chat_id is required", name))
		case !h.ChatID.IsNumeric() && !strings.HasPrefix(chat, "@"):
			d.addWarning(r, "hooks", field+".chat_id",
				fmt.Sprintf("hook %q: chat_id %q is neither numeric nor an @username", name, chat))
		}
	}
}

// validateAPIConfig checks ops API server settings.
func (d *Doctor) validateAPIConfig(r *Result) {
	if !d.cfg.API.Enabled {
		return
	}
	if d.cfg.API.Listen == "" {
		d.addError(r, "api", "api.listen", "api.listen is required when API is enabled")
	}
	if d.cfg.API.Auth.APIKey == "" {
		d.addWarning(r, "api", "api.auth", "API enabled but no authentication configured")
	}
}

// warnMissingEnvVars warns about ${VAR} references where VAR is not set.
func (d *Doctor) warnMissingEnvVars(r *Result) {
	envVarRe := regexp.MustCompile(`\$\{([A-Z_][A-Z0-9_]*)\}`)

	check := func(field, value string) {
		for _, m := range envVarRe.FindAllStringSubmatch(value, -1) {
			if os.Getenv(m[1]) == "" {
				d.addWarning(r, "env_vars", field,
					fmt.Sprintf("environment variable ${%s} not set", m[1]))
			}
		}
	}

	check("telegram.bot_token", d.cfg.Telegram.BotToken)
	for name, h := range d.cfg.Hooks {
		check(fmt.Sprintf("hooks.%s.secret", name), h.Secret)
	}
	check("api.auth.api_key", d.cfg.API.Auth.APIKey)
}

// FormatHuman returns a human-readable validation report.
func FormatHuman(r *Result) string {
	var b strings.Builder

	if r.Valid && len(r.Warnings) == 0 {
		b.WriteString("Configuration valid.\n")
		return b.String()
	}

	if r.Valid && len(r.Warnings) > 0 {
		b.WriteString("Configuration valid")
		fmt.Fprintf(&b, " (%d warning(s))\n", len(r.Warnings))
	}

	if !r.Valid {
		fmt.Fprintf(&b, "Configuration invalid (%d error(s), %d warning(s))\n", len(r.Errors), len(r.Warnings))
	}

	for _, e := range r.Errors {
		if e.Field != "" {
			fmt.Fprintf(&b, "  ERROR [%s] %s: %s\n", e.Category, e.Field, e.Message)
		} else {
			fmt.Fprintf(&b, "  ERROR [%s] %s\n", e.Category, e.Message)
		}
	}
	for _, w := range r.Warnings {
		if w.Field != "" {
			fmt.Fprintf(&b, "  WARN  [%s] %s: %s\n", w.Category, w.Field, w.Message)
		} else {
			fmt.Fprintf(&b, "  WARN  [%s] %s\n", w.Category, w.Message)
		}
	}

	return b.String()
}

// FormatJSON returns the result as indented JSON.
func FormatJSON(r *Result) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
