package relay

import (
	"context"

	"github.com/mattjoyce/ghrelay/internal/config"
	"github.com/mattjoyce/ghrelay/internal/telegram"
)

//go:generate mockgen -destination=mocks/mock_sender.go -package=mocks github.com/mattjoyce/ghrelay/internal/relay Sender

// Sender defines the outbound messaging call used by the orchestrator.
type Sender interface {
	SendMessage(ctx context.Context, chatID config.ChatID, text string) (*telegram.Result, error)
}
