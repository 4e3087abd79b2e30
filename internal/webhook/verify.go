package webhook

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mattjoyce/ghrelay/internal/config"
	"github.com/mattjoyce/ghrelay/internal/format"
	"github.com/mattjoyce/ghrelay/internal/registry"
)

// ErrForbidden is the only error Verify returns. The specific failure reason
// is logged at warn level but never surfaced to the caller.
var ErrForbidden = errors.New("webhook verification failed")

const (
	// userAgentPrefix identifies GitHub's webhook dispatcher.
	userAgentPrefix = "GitHub-Hookshot"

	signatureHeader = "X-Hub-Signature-256"
	contentTypeJSON = "application/json"
)

// Target is the verified destination for one delivery: the source identity
// that authenticated the request, its destination chat, and the parsed
// payload. The same identity that selected the HMAC secret also selects the
// chat, so the two can never disagree.
type Target struct {
	Source  string
	ChatID  config.ChatID
	Payload format.Payload
}

// Verifier authenticates inbound webhook requests against a registry of
// known sources.
type Verifier struct {
	registry *registry.Registry
	logger   *slog.Logger
}

// NewVerifier creates a Verifier over an immutable registry.
func NewVerifier(reg *registry.Registry, logger *slog.Logger) *Verifier {
	return &Verifier{registry: reg, logger: logger}
}

// Verify runs all authentication checks against a request's headers and raw
// body. Every check must pass; any failure returns ErrForbidden and nothing
// else. On success the resolved Target is returned.
func (v *Verifier) Verify(header http.Header, body []byte) (*Target, error) {
	if !strings.HasPrefix(header.Get("User-Agent"), userAgentPrefix) {
		v.logger.Warn("user agent: not from GitHub")
		return nil, ErrForbidden
	}

	if header.Get("Content-Type") != contentTypeJSON {
		v.logger.Warn("content type: not json")
		return nil, ErrForbidden
	}

	var payload format.Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		// Parser details are logged only; the caller sees a generic 403.
		v.logger.Warn("invalid payload", "error", err)
		return nil, ErrForbidden
	}

	source, ok := sourceIdentity(payload)
	if !ok {
		v.logger.Warn("no repo or organization found")
		return nil, ErrForbidden
	}

	entry, ok := v.registry.Lookup(source)
	if !ok {
		v.logger.Warn("unknown repo or organization", "source", source)
		return nil, ErrForbidden
	}

	if err := verifyHMACSignature(body, header.Get(signatureHeader), entry.Secret); err != nil {
		v.logger.Warn("invalid signature", "source", source)
		return nil, ErrForbidden
	}

	return &Target{
		Source:  source,
		ChatID:  entry.ChatID,
		Payload: payload,
	}, nil
}

// sourceIdentity resolves the identity a payload attributes itself to:
// the organization login when present, else the repository full name.
func sourceIdentity(payload format.Payload) (string, bool) {
	if login, ok := payload.String("organization", "login"); ok && login != "" {
		return login, true
	}
	if name, ok := payload.String("repository", "full_name"); ok && name != "" {
		return name, true
	}
	return "", false
}
