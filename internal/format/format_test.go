package format

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, raw string) Payload {
	t.Helper()
	var p Payload
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	return p
}

const pushPayload = `{
	"ref": "refs/heads/main",
	"repository": {"full_name": "octocat/hello-world", "html_url": "https://github.com/octocat/hello-world"},
	"sender": {"login": "octocat"},
	"commits": [
		{"id": "aabbccddeeff00112233445566778899aabbccdd",
		 "message": "fix parser",
		 "url": "https://github.com/octocat/hello-world/commit/aabbccd",
		 "author": {"username": "octocat"}},
		{"id": "0102030405060708091011121314151617181920",
		 "message": "add <b>bold</b> docs",
		 "url": "https://github.com/octocat/hello-world/commit/0102030",
		 "author": {"username": "hubot"}}
	]
}`

func TestFormat_Push(t *testing.T) {
	msg, ok := Format("push", parse(t, pushPayload))
	require.True(t, ok)

	assert.Equal(t, "<b>octocat/hello-world</b> | <i>octocat push</i>", msg.Title)

	lines := strings.Split(msg.Detail, "\n")
	require.Len(t, lines, 3, "ref line plus one line per commit")
	assert.Equal(t, "→ refs/heads/main", lines[0])
	assert.Contains(t, lines[1], "<code>octocat</code> fix parser")
	assert.Contains(t, lines[1], ">aabbccd</a>", "7-character short hash")
	assert.Contains(t, lines[2], "add &lt;b&gt;bold&lt;/b&gt; docs", "commit message is escaped")
}

func TestFormat_IssuesEscapesTitle(t *testing.T) {
	p := parse(t, `{
		"action": "opened",
		"repository": {"full_name": "octocat/hello-world"},
		"sender": {"login": "mallory"},
		"issue": {"html_url": "https://github.com/octocat/hello-world/issues/7",
		          "title": "<script>alert(1)</script>", "number": 7}
	}`)

	msg, ok := Format("issues", p)
	require.True(t, ok)

	assert.Equal(t, "<b>octocat/hello-world</b> | <i>mallory opened issues</i>", msg.Title)
	assert.Contains(t, msg.Detail, "&lt;script&gt;")
	assert.NotContains(t, msg.Detail, "<script>")
	assert.Contains(t, msg.Detail, "· Issue #7")
}

func TestFormat_PullRequest(t *testing.T) {
	p := parse(t, `{
		"action": "opened",
		"number": 42,
		"repository": {"full_name": "octocat/hello-world"},
		"sender": {"login": "octocat"},
		"pull_request": {"html_url": "https://github.com/octocat/hello-world/pull/42",
		                 "title": "Support <code> blocks", "user": {"login": "hubot"}}
	}`)

	msg, ok := Format("pull_request", p)
	require.True(t, ok)
	assert.Contains(t, msg.Detail, "Support &lt;code&gt; blocks by hubot · Pull Request #42")
}

func TestFormat_CreateAndDelete(t *testing.T) {
	p := parse(t, `{
		"ref": "v1.2.0",
		"ref_type": "tag",
		"repository": {"full_name": "octocat/hello-world", "html_url": "https://github.com/octocat/hello-world"},
		"sender": {"login": "octocat"}
	}`)

	created, ok := Format("create", p)
	require.True(t, ok)
	assert.Equal(t, "→ <a href=\"https://github.com/octocat/hello-world/tree/v1.2.0\">tag: v1.2.0</a>", created.Detail)

	deleted, ok := Format("delete", p)
	require.True(t, ok)
	assert.Equal(t, "→ tag: <code>v1.2.0</code>", deleted.Detail)
}

func TestFormat_Discussion(t *testing.T) {
	p := parse(t, `{
		"action": "created",
		"repository": {"full_name": "octocat/hello-world"},
		"sender": {"login": "octocat"},
		"discussion": {"html_url": "https://github.com/octocat/hello-world/discussions/3",
		               "title": "Roadmap & plans", "number": 3}
	}`)

	msg, ok := Format("discussion", p)
	require.True(t, ok)
	assert.Contains(t, msg.Detail, "Roadmap &amp; plans · Discussion #3")
}

func TestFormat_Fork(t *testing.T) {
	p := parse(t, `{
		"repository": {"full_name": "octocat/hello-world", "stargazers_count": 120, "forks_count": 13},
		"sender": {"login": "hubot"},
		"forkee": {"html_url": "https://github.com/hubot/hello-world", "full_name": "hubot/hello-world"}
	}`)

	msg, ok := Format("fork", p)
	require.True(t, ok)
	lines := strings.Split(msg.Detail, "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "hubot/hello-world")
	assert.Equal(t, "→ <b>120</b> stargazers, <b>13</b> forks", lines[1])
}

func TestFormat_PingAndPublic(t *testing.T) {
	p := parse(t, `{
		"repository": {"full_name": "octocat/hello-world", "html_url": "https://github.com/octocat/hello-world"},
		"sender": {"login": "octocat"}
	}`)

	for _, event := range []string{"ping", "public"} {
		msg, ok := Format(event, p)
		require.True(t, ok, event)
		assert.Equal(t, "→ <a href=\"https://github.com/octocat/hello-world\">octocat/hello-world</a>", msg.Detail)
	}
}

func TestFormat_Star(t *testing.T) {
	p := parse(t, `{
		"action": "created",
		"starred_at": "2024-05-01T10:00:00Z",
		"repository": {"full_name": "octocat/hello-world",
		               "watchers_count": 120, "stargazers_count": 120, "forks_count": 13},
		"sender": {"login": "hubot"}
	}`)

	msg, ok := Format("star", p)
	require.True(t, ok)
	lines := strings.Split(msg.Detail, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "→ starred at <code>2024-05-01T10:00:00Z</code>", lines[0])
	assert.Contains(t, lines[1], "<b>120</b> watchers")

	// Without starred_at only the counts line remains.
	delete(p, "starred_at")
	msg, ok = Format("star", p)
	require.True(t, ok)
	assert.NotContains(t, msg.Detail, "starred at")
}

func TestFormat_Watch(t *testing.T) {
	p := parse(t, `{
		"action": "started",
		"repository": {"full_name": "octocat/hello-world",
		               "watchers_count": 7, "stargazers_count": 7, "forks_count": 2},
		"sender": {"login": "hubot"}
	}`)

	msg, ok := Format("watch", p)
	require.True(t, ok)
	assert.Equal(t, "→ <b>7</b> watchers, <b>7</b> stargazers, <b>2</b> forks", msg.Detail)
}

func TestFormat_UnknownEvent(t *testing.T) {
	_, ok := Format("deployment", parse(t, pushPayload))
	assert.False(t, ok, "unrecognized event types produce no message")
}

func TestFormat_MissingRequiredField(t *testing.T) {
	// Push payload without commits: no partial rendering.
	p := parse(t, `{
		"ref": "refs/heads/main",
		"repository": {"full_name": "octocat/hello-world"},
		"sender": {"login": "octocat"}
	}`)
	_, ok := Format("push", p)
	assert.False(t, ok)

	// Missing sender breaks the shared title for every event.
	p = parse(t, `{"repository": {"full_name": "octocat/hello-world", "html_url": "u"}}`)
	_, ok = Format("ping", p)
	assert.False(t, ok)
}

func TestFormat_Idempotent(t *testing.T) {
	p := parse(t, pushPayload)
	first, ok1 := Format("push", p)
	second, ok2 := Format("push", p)
	require.True(t, ok1)
	require.True(t, ok2)
	assert.Equal(t, first, second)
}

func TestMessage_Render(t *testing.T) {
	assert.Equal(t, "title", Message{Title: "title"}.Render())
	assert.Equal(t, "title\ndetail", Message{Title: "title", Detail: "detail"}.Render())
}
