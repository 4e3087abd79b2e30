package telegram

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/mattjoyce/ghrelay/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestSendMessage_Success(t *testing.T) {
	var gotPath string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok": true, "result": {"message_id": 77, "chat": {"id": -1001234567890}}}`))
	}))
	defer srv.Close()

	c := New(Config{Token: "123:abc", APIBase: srv.URL}, srv.Client(), testLogger())

	res, err := c.SendMessage(context.Background(), config.ChatID("-1001234567890"), "hello")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	if gotPath != "/bot123:abc/sendMessage" {
		t.Errorf("path = %q", gotPath)
	}
	if gotBody["parse_mode"] != "HTML" {
		t.Errorf("parse_mode = %v, want HTML", gotBody["parse_mode"])
	}
	if gotBody["disable_web_page_preview"] != true {
		t.Errorf("disable_web_page_preview = %v, want true", gotBody["disable_web_page_preview"])
	}
	// Numeric chat ids stay numeric on the wire.
	if _, isNumber := gotBody["chat_id"].(float64); !isNumber {
		t.Errorf("chat_id = %T, want JSON number", gotBody["chat_id"])
	}

	if res.MessageID != 77 {
		t.Errorf("MessageID = %d, want 77", res.MessageID)
	}
	if got, want := res.MessageLink(), "https://t.me/1234567890/77"; got != want {
		t.Errorf("MessageLink = %q, want %q", got, want)
	}
}

func TestSendMessage_ChannelUsername(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["chat_id"] != "@mychannel" {
			t.Errorf("chat_id = %v, want @mychannel", body["chat_id"])
		}
		_, _ = w.Write([]byte(`{"ok": true, "result": {"message_id": 5, "chat": {"id": 42}}}`))
	}))
	defer srv.Close()

	c := New(Config{Token: "t", APIBase: srv.URL}, srv.Client(), testLogger())
	if _, err := c.SendMessage(context.Background(), config.ChatID("@mychannel"), "hi"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
}

func TestSendMessage_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok": false, "description": "Bad Request: chat not found"}`))
	}))
	defer srv.Close()

	c := New(Config{Token: "t", APIBase: srv.URL}, srv.Client(), testLogger())
	if _, err := c.SendMessage(context.Background(), config.ChatID("1"), "hi"); err == nil {
		t.Fatal("expected error for API rejection")
	}
}

func TestSendMessage_MissingResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok": true}`))
	}))
	defer srv.Close()

	c := New(Config{Token: "t", APIBase: srv.URL}, srv.Client(), testLogger())
	if _, err := c.SendMessage(context.Background(), config.ChatID("1"), "hi"); err == nil {
		t.Fatal("expected error when response has no message id")
	}
}

func TestMessageLink_PlainChat(t *testing.T) {
	r := Result{MessageID: 9, ChatID: 4321}
	if got, want := r.MessageLink(), "https://t.me/4321/9"; got != want {
		t.Errorf("MessageLink = %q, want %q", got, want)
	}
}
