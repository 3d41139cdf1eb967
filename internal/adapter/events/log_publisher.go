package events

import (
	"context"

	"go.uber.org/zap"

	"github.com/Habinalszl/raktarkezelo-discord-bot/internal/core/domain"
)

// LogPublisher records changes in the structured log when no broker is
// configured.
type LogPublisher struct {
	logger *zap.Logger
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, event domain.Event) error {
	p.logger.Info("inventory changed",
		zap.String("event_id", event.ID),
		zap.String("kind", string(event.Kind)),
		zap.String("name", event.Name),
		zap.Int("quantity", event.Quantity),
		zap.String("actor", event.Actor),
		zap.String("channel", event.Channel),
		zap.Time("occurred_at", event.OccurredAt),
	)
	return nil
}

func (p *LogPublisher) Close() error {
	return nil
}
