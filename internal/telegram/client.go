// Package telegram is a minimal Telegram Bot API client covering the single
// call this service makes: sendMessage with HTML parse mode.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/mattjoyce/ghrelay/internal/config"
)

// Config holds client settings.
type Config struct {
	// Token is the bot credential embedded in the API URL.
	Token string

	// APIBase is the API root, default https://api.telegram.org.
	APIBase string
}

// Client is a Telegram Bot API client. Safe for concurrent use; all requests
// share one http.Client connection pool.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

// New creates a Client. The http.Client's timeout bounds each sendMessage call.
func New(cfg Config, httpClient *http.Client, logger *slog.Logger) *Client {
	if cfg.APIBase == "" {
		cfg.APIBase = config.DefaultTelegramAPIBase
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.DefaultTelegramTimeout}
	}
	return &Client{cfg: cfg, http: httpClient, logger: logger}
}

// sendMessageRequest is the sendMessage call body. Link previews are disabled
// because most rendered messages are link-heavy.
type sendMessageRequest struct {
	ChatID                any    `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type sendMessageResponse struct {
	OK     bool   `json:"ok"`
	Result *struct {
		MessageID int64 `json:"message_id"`
		Chat      struct {
			ID int64 `json:"id"`
		} `json:"chat"`
	} `json:"result"`
	Description string `json:"description"`
}

// Result identifies a delivered message.
type Result struct {
	MessageID int64
	ChatID    int64
}

// MessageLink builds the t.me link for a delivered message. Supergroup chat
// ids carry a -100 prefix that is not part of the public link.
func (r Result) MessageLink() string {
	chat := strings.TrimPrefix(strconv.FormatInt(r.ChatID, 10), "-100")
	return fmt.Sprintf("https://t.me/%s/%d", chat, r.MessageID)
}

// SendMessage posts text to a chat and returns the delivered message
// identity. An error means the message cannot be confirmed delivered: network
// failure, an API-level error, or a response without a message id.
func (c *Client) SendMessage(ctx context.Context, chatID config.ChatID, text string) (*Result, error) {
	reqBody := sendMessageRequest{
		ChatID:                chatIDValue(chatID),
		Text:                  text,
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to encode sendMessage request: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.cfg.APIBase, c.cfg.Token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to build sendMessage request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sendMessage request failed: %w", err)
	}
	defer resp.Body.Close()

	var parsed sendMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode sendMessage response: %w", err)
	}

	if !parsed.OK || parsed.Result == nil || parsed.Result.MessageID == 0 {
		c.logger.Error("telegram rejected message",
			"chat_id", chatID.String(),
			"status", resp.StatusCode,
			"description", parsed.Description,
		)
		return nil, fmt.Errorf("telegram API error: %s", errDescription(parsed, resp.StatusCode))
	}

	result := &Result{
		MessageID: parsed.Result.MessageID,
		ChatID:    parsed.Result.Chat.ID,
	}
	c.logger.Info("message sent",
		"chat_id", chatID.String(),
		"message_id", result.MessageID,
		"link", result.MessageLink(),
	)
	return result, nil
}

// chatIDValue keeps numeric ids numeric on the wire.
func chatIDValue(chatID config.ChatID) any {
	if chatID.IsNumeric() {
		if n, err := strconv.ParseInt(chatID.String(), 10, 64); err == nil {
			return n
		}
	}
	return chatID.String()
}

func errDescription(resp sendMessageResponse, status int) string {
	if resp.Description != "" {
		return resp.Description
	}
	return fmt.Sprintf("status %d", status)
}
