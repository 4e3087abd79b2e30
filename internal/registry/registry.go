// Package registry holds the static mapping from a webhook source identity
// (repository full name or organization login) to its shared secret and
// destination chat. The registry is built once at startup and is read-only,
// so concurrent lookups need no locking.
package registry

import (
	"github.com/mattjoyce/ghrelay/internal/config"
)

// Entry pairs a source's HMAC secret with its destination chat.
type Entry struct {
	Secret []byte
	ChatID config.ChatID
}

// Registry is an immutable source identity lookup table.
type Registry struct {
	entries map[string]Entry
}

// FromConfig builds a Registry from the loaded hooks configuration.
func FromConfig(hooks map[string]config.HookConfig) *Registry {
	entries := make(map[string]Entry, len(hooks))
	for name, h := range hooks {
		entries[name] = Entry{
			Secret: []byte(h.Secret),
			ChatID: h.ChatID,
		}
	}
	return &Registry{entries: entries}
}

// Lookup returns the entry for a source identity.
func (r *Registry) Lookup(source string) (Entry, bool) {
	e, ok := r.entries[source]
	return e, ok
}

// Len returns the number of registered sources.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Sources returns the registered source identities.
func (r *Registry) Sources() []string {
	out := make([]string, 0, len(r.entries))
	for name := range r.entries {
		out = append(out, name)
	}
	return out
}
