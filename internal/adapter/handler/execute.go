package handler

import (
	"context"
	"strings"
	"time"

	"github.com/Habinalszl/raktarkezelo-discord-bot/internal/core/domain"
	"github.com/Habinalszl/raktarkezelo-discord-bot/internal/core/service"
)

const (
	outcomeDuplicate = "duplicate"
	outcomeInvalid   = "invalid"
	outcomeInternal  = "internal"
)

// execute runs one command for a transport that has no channel of its own:
// a reset cannot purge anything, so it answers with what would be re-posted.
func execute(ctx context.Context, svc *service.InventoryService, timeout time.Duration, msg domain.Message) (domain.Outcome, []string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	reply, err := svc.Handle(ctx, msg)
	if err != nil {
		return "", nil, err
	}

	if reply.Outcome == domain.OutcomeReset {
		replies, err := svc.ResetReplies(ctx)
		if err != nil {
			return "", nil, err
		}
		return reply.Outcome, replies, nil
	}

	return reply.Outcome, []string{reply.Text}, nil
}

func validContent(content string) bool {
	return strings.TrimSpace(content) != ""
}
