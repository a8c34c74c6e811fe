package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jwalitptl/hospital-api/pkg/messaging"
)

// Received is a published event as read back from the broker; the payload
// is left undecoded.
type Received struct {
	Type       EventType       `json:"type"`
	OccurredAt time.Time       `json:"occurredAt"`
	Payload    json.RawMessage `json:"payload"`
}

type HandlerFunc func(ctx context.Context, ev Received) error

// Listen subscribes to channel and hands every event to handle until ctx
// is done. Undecodable messages and handler errors are logged and skipped.
func Listen(ctx context.Context, broker messaging.Broker, channel string, handle HandlerFunc, logger *zerolog.Logger) error {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	messages, err := broker.Subscribe(ctx, channel)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", channel, err)
	}
	logger.Info().Str("channel", channel).Msg("listening for events")

	for raw := range messages {
		var ev Received
		if err := json.Unmarshal(raw, &ev); err != nil {
			logger.Warn().Err(err).Str("channel", channel).Msg("skipping malformed event")
			continue
		}
		if err := handle(ctx, ev); err != nil {
			logger.Error().Err(err).Str("event_type", string(ev.Type)).Msg("event handler failed")
		}
	}
	return nil
}
