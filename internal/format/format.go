// Package format renders GitHub webhook payloads into Telegram HTML messages.
//
// Rendering is a pure function of (event type, payload). Each supported event
// type has an entry in a static dispatch table; event types without an entry
// produce no message at all. Free-text user content (issue titles, commit
// messages, and the like) is HTML-escaped before being embedded in markup.
package format

import (
	"fmt"
	"html"
	"strings"
)

// EventType is the event tag carried in the X-GitHub-Event header.
type EventType string

const (
	EventCreate      EventType = "create"
	EventDelete      EventType = "delete"
	EventDiscussion  EventType = "discussion"
	EventFork        EventType = "fork"
	EventIssues      EventType = "issues"
	EventPing        EventType = "ping"
	EventPublic      EventType = "public"
	EventPullRequest EventType = "pull_request"
	EventPush        EventType = "push"
	EventStar        EventType = "star"
	EventWatch       EventType = "watch"
)

// Message is a rendered notification: a title line and an optional detail
// block.
type Message struct {
	Title  string
	Detail string
}

// Render returns the full message text: the title alone, or title and detail
// separated by a newline.
func (m Message) Render() string {
	if m.Detail == "" {
		return m.Title
	}
	return m.Title + "\n" + m.Detail
}

// detailFunc renders the per-event detail block. It reports !ok when a field
// it requires is missing from the payload; the event is then skipped rather
// than rendered partially.
type detailFunc func(Payload) (string, bool)

// renderers is the closed dispatch table. Adding an event type means adding
// a constant above and an entry here; there is no runtime lookup by name.
var renderers = map[EventType]detailFunc{
	EventCreate:      detailCreate,
	EventDelete:      detailDelete,
	EventDiscussion:  detailDiscussion,
	EventFork:        detailFork,
	EventIssues:      detailIssues,
	EventPing:        detailRepoLink,
	EventPublic:      detailRepoLink,
	EventPullRequest: detailPullRequest,
	EventPush:        detailPush,
	EventStar:        detailStar,
	EventWatch:       detailWatch,
}

// Format renders a payload for the given event type. It reports !ok when the
// event type has no renderer or the payload is missing a required field; the
// caller should treat that as nothing to send.
func Format(event string, payload Payload) (Message, bool) {
	render, ok := renderers[EventType(event)]
	if !ok {
		return Message{}, false
	}

	title, ok := title(event, payload)
	if !ok {
		return Message{}, false
	}

	detail, ok := render(payload)
	if !ok {
		return Message{}, false
	}

	return Message{Title: title, Detail: detail}, true
}

// title builds the shared title line:
//
//	<b>owner/repo</b> | <i>sender [action] event</i>
//
// The action segment appears only for action-qualified events.
func title(event string, p Payload) (string, bool) {
	repo, ok := p.String("repository", "full_name")
	if !ok {
		return "", false
	}
	sender, ok := p.String("sender", "login")
	if !ok {
		return "", false
	}

	summary := []string{sender}
	if action, ok := p.String("action"); ok && action != "" {
		summary = append(summary, action)
	}
	summary = append(summary, event)

	return fmt.Sprintf("<b>%s</b> | <i>%s</i>", repo, strings.Join(summary, " ")), true
}

func detailCreate(p Payload) (string, bool) {
	repoURL, ok := p.String("repository", "html_url")
	if !ok {
		return "", false
	}
	refType, ok := p.String("ref_type")
	if !ok {
		return "", false
	}
	ref, ok := p.String("ref")
	if !ok {
		return "", false
	}
	return fmt.Sprintf("→ <a href=\"%s/tree/%s\">%s: %s</a>", repoURL, ref, refType, ref), true
}

func detailDelete(p Payload) (string, bool) {
	refType, ok := p.String("ref_type")
	if !ok {
		return "", false
	}
	ref, ok := p.String("ref")
	if !ok {
		return "", false
	}
	return fmt.Sprintf("→ %s: <code>%s</code>", refType, ref), true
}

func detailDiscussion(p Payload) (string, bool) {
	url, ok := p.String("discussion", "html_url")
	if !ok {
		return "", false
	}
	title, ok := p.String("discussion", "title")
	if !ok {
		return "", false
	}
	number, ok := p.Int("discussion", "number")
	if !ok {
		return "", false
	}
	return fmt.Sprintf("→ <a href=\"%s\">%s · Discussion #%d</a>",
		url, html.EscapeString(title), number), true
}

func detailFork(p Payload) (string, bool) {
	url, ok := p.String("forkee", "html_url")
	if !ok {
		return "", false
	}
	name, ok := p.String("forkee", "full_name")
	if !ok {
		return "", false
	}
	counts, ok := repoStarFork(p)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("→ <a href=\"%s\">%s</a>\n%s", url, name, counts), true
}

func detailIssues(p Payload) (string, bool) {
	url, ok := p.String("issue", "html_url")
	if !ok {
		return "", false
	}
	title, ok := p.String("issue", "title")
	if !ok {
		return "", false
	}
	number, ok := p.Int("issue", "number")
	if !ok {
		return "", false
	}
	return fmt.Sprintf("→ <a href=\"%s\">%s · Issue #%d</a>",
		url, html.EscapeString(title), number), true
}

func detailRepoLink(p Payload) (string, bool) {
	url, ok := p.String("repository", "html_url")
	if !ok {
		return "", false
	}
	name, ok := p.String("repository", "full_name")
	if !ok {
		return "", false
	}
	return fmt.Sprintf("→ <a href=\"%s\">%s</a>", url, name), true
}

func detailPullRequest(p Payload) (string, bool) {
	url, ok := p.String("pull_request", "html_url")
	if !ok {
		return "", false
	}
	title, ok := p.String("pull_request", "title")
	if !ok {
		return "", false
	}
	user, ok := p.String("pull_request", "user", "login")
	if !ok {
		return "", false
	}
	number, ok := p.Int("number")
	if !ok {
		return "", false
	}
	return fmt.Sprintf("→ <a href=\"%s\">%s by %s · Pull Request #%d</a>",
		url, html.EscapeString(title), user, number), true
}

func detailPush(p Payload) (string, bool) {
	ref, ok := p.String("ref")
	if !ok {
		return "", false
	}
	commits, ok := p.Slice("commits")
	if !ok {
		return "", false
	}

	lines := []string{"→ " + ref}
	for _, c := range commits {
		commit, ok := c.(map[string]any)
		if !ok {
			return "", false
		}
		cp := Payload(commit)
		name, ok := cp.String("author", "username")
		if !ok {
			return "", false
		}
		message, ok := cp.String("message")
		if !ok {
			return "", false
		}
		url, ok := cp.String("url")
		if !ok {
			return "", false
		}
		id, ok := cp.String("id")
		if !ok {
			return "", false
		}
		lines = append(lines, fmt.Sprintf("→ <code>%s</code> %s [<a href=\"%s\">%s</a>]",
			name, html.EscapeString(message), url, shortHash(id)))
	}
	return strings.Join(lines, "\n"), true
}

func detailStar(p Payload) (string, bool) {
	counts, ok := repoWatchStarFork(p)
	if !ok {
		return "", false
	}
	if at, ok := p.String("starred_at"); ok && at != "" {
		return fmt.Sprintf("→ starred at <code>%s</code>\n%s", at, counts), true
	}
	return counts, true
}

func detailWatch(p Payload) (string, bool) {
	return repoWatchStarFork(p)
}

// repoStarFork renders the parent repository's aggregate counts.
func repoStarFork(p Payload) (string, bool) {
	stars, ok := p.Int("repository", "stargazers_count")
	if !ok {
		return "", false
	}
	forks, ok := p.Int("repository", "forks_count")
	if !ok {
		return "", false
	}
	return fmt.Sprintf("→ <b>%d</b> stargazers, <b>%d</b> forks", stars, forks), true
}

func repoWatchStarFork(p Payload) (string, bool) {
	watchers, ok := p.Int("repository", "watchers_count")
	if !ok {
		return "", false
	}
	stars, ok := p.Int("repository", "stargazers_count")
	if !ok {
		return "", false
	}
	forks, ok := p.Int("repository", "forks_count")
	if !ok {
		return "", false
	}
	return fmt.Sprintf("→ <b>%d</b> watchers, <b>%d</b> stargazers, <b>%d</b> forks",
		watchers, stars, forks), true
}

// shortHash truncates a commit id to the 7-character short form.
func shortHash(id string) string {
	if len(id) > 7 {
		return id[:7]
	}
	return id
}
