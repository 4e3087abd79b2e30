// Package relay sequences the pipeline for one inbound webhook delivery:
// verification, formatting, and the outbound Telegram send, reduced to a
// terminal outcome for the HTTP response.
package relay

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/mattjoyce/ghrelay/internal/events"
	"github.com/mattjoyce/ghrelay/internal/format"
	"github.com/mattjoyce/ghrelay/internal/history"
	"github.com/mattjoyce/ghrelay/internal/webhook"
)

// Terminal outcomes reported to the HTTP caller.
const (
	OutcomeSucceed       = "succeed"
	OutcomeFailed        = "failed"
	OutcomeNothingToSend = "nothing to send"

	outcomeRejected = "rejected" // history only; the caller sees a 403
)

const eventTypeHeader = "X-GitHub-Event"

// Orchestrator runs the verify → format → send pipeline. It holds no mutable
// per-request state and is safe for concurrent use.
type Orchestrator struct {
	verifier *webhook.Verifier
	sender   Sender
	history  *history.Ring
	hub      *events.Hub
	logger   *slog.Logger
}

// New creates an Orchestrator. history and hub are optional observability
// sinks; pass nil to disable them.
func New(verifier *webhook.Verifier, sender Sender, hist *history.Ring, hub *events.Hub, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		verifier: verifier,
		sender:   sender,
		history:  hist,
		hub:      hub,
		logger:   logger,
	}
}

// Handle processes one inbound delivery. A non-nil error means verification
// failed and the boundary must respond 403; otherwise the returned outcome
// string is reported with a 200.
func (o *Orchestrator) Handle(ctx context.Context, header http.Header, body []byte) (string, error) {
	deliveryID := uuid.NewString()
	eventType := header.Get(eventTypeHeader)

	target, err := o.verifier.Verify(header, body)
	if err != nil {
		o.record(history.Record{
			ID:      deliveryID,
			Event:   eventType,
			Outcome: outcomeRejected,
			At:      time.Now().UTC(),
		}, events.TypeDeliveryRejected)
		return "", err
	}

	logger := o.logger.With("delivery_id", deliveryID, "source", target.Source, "event", eventType)

	msg, ok := format.Format(eventType, target.Payload)
	if !ok {
		logger.Warn("no renderer or incomplete payload, nothing to send")
		o.record(history.Record{
			ID:      deliveryID,
			Source:  target.Source,
			Event:   eventType,
			Outcome: OutcomeNothingToSend,
			At:      time.Now().UTC(),
		}, events.TypeDeliverySkipped)
		return OutcomeNothingToSend, nil
	}

	result, err := o.sender.SendMessage(ctx, target.ChatID, msg.Render())
	if err != nil {
		logger.Error("telegram send failed", "error", err)
		o.record(history.Record{
			ID:      deliveryID,
			Source:  target.Source,
			Event:   eventType,
			Outcome: OutcomeFailed,
			At:      time.Now().UTC(),
		}, events.TypeDeliveryFailed)
		return OutcomeFailed, nil
	}

	logger.Info("delivery forwarded", "message_id", result.MessageID)
	o.record(history.Record{
		ID:          deliveryID,
		Source:      target.Source,
		Event:       eventType,
		Outcome:     OutcomeSucceed,
		MessageLink: result.MessageLink(),
		At:          time.Now().UTC(),
	}, events.TypeDeliverySent)
	return OutcomeSucceed, nil
}

func (o *Orchestrator) record(rec history.Record, eventType string) {
	if o.history != nil {
		o.history.Add(rec)
	}
	if o.hub != nil {
		o.hub.Publish(eventType, rec)
	}
}
