package events

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Habinalszl/raktarkezelo-discord-bot/internal/core/domain"
	"github.com/Habinalszl/raktarkezelo-discord-bot/internal/port"
)

const publishTimeout = 5 * time.Second

// WorkerLoop publishes events until queue is closed. Failed events are logged
// and dropped.
func WorkerLoop(id int, queue <-chan domain.Event, publisher port.EventPublisher, logger *zap.Logger) {
	for event := range queue {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)

		if err := publisher.Publish(ctx, event); err != nil {
			logger.Error("failed to publish event",
				zap.Int("worker", id),
				zap.String("event_id", event.ID),
				zap.String("kind", string(event.Kind)),
				zap.Error(err),
			)
		} else {
			logger.Debug("published event", zap.Int("worker", id), zap.String("event_id", event.ID))
		}

		cancel()
	}
}
