package port

import (
	"context"

	"github.com/Habinalszl/raktarkezelo-discord-bot/internal/core/domain"
)

type EventPublisher interface {
	// Publish delivers a committed ledger change downstream
	Publish(ctx context.Context, event domain.Event) error

	Close() error
}
