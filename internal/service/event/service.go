package event

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jwalitptl/hospital-api/pkg/messaging"
	"github.com/jwalitptl/hospital-api/pkg/metrics"
)

const publishTimeout = 2 * time.Second

type Service struct {
	broker  messaging.Broker
	channel string
	metrics *metrics.Metrics
	logger  *zerolog.Logger
	now     func() time.Time
}

func NewEventService(broker messaging.Broker, channel string, m *metrics.Metrics, logger *zerolog.Logger) *Service {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Service{
		broker:  broker,
		channel: channel,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *Service) Emit(ctx context.Context, eventType EventType, payload interface{}) {
	msg := messaging.Message{
		Type:       string(eventType),
		OccurredAt: s.now().UTC(),
		Payload:    payload,
	}

	// the request may already be finishing; keep its values but not its deadline
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := s.broker.Publish(pubCtx, s.channel, msg); err != nil {
		s.logger.Warn().Err(err).Str("event_type", string(eventType)).Msg("failed to publish event")
		if s.metrics != nil {
			s.metrics.EventsFailed.WithLabelValues(string(eventType)).Inc()
		}
		return
	}
	if s.metrics != nil {
		s.metrics.EventsPublished.WithLabelValues(string(eventType)).Inc()
	}
}
