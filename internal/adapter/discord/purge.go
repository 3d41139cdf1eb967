package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const (
	purgePageSize = 100

	// Discord refuses to bulk delete messages older than two weeks. The hour
	// of slack covers clock skew against the API.
	bulkDeleteMaxAge = 14*24*time.Hour - time.Hour
)

// purge deletes every message in the channel, newest first.
func (b *Bot) purge(ctx context.Context, channelID string) error {
	before := ""
	deleted := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		page, err := b.api.ChannelMessages(channelID, purgePageSize, before, "", "")
		if err != nil {
			return fmt.Errorf("fetch messages: %w", err)
		}
		if len(page) == 0 {
			break
		}

		recent, old := b.splitByAge(page)
		if err := b.deleteRecent(channelID, recent); err != nil {
			return err
		}
		for _, id := range old {
			if err := b.api.ChannelMessageDelete(channelID, id); err != nil {
				return fmt.Errorf("delete message %s: %w", id, err)
			}
		}
		deleted += len(page)

		if len(page) < purgePageSize {
			break
		}
		before = page[len(page)-1].ID
	}

	b.logger.Info("channel purged", zap.String("channel", channelID), zap.Int("deleted", deleted))
	return nil
}

func (b *Bot) splitByAge(page []*discordgo.Message) (recent, old []string) {
	cutoff := b.now().Add(-bulkDeleteMaxAge)
	for _, m := range page {
		if m.Timestamp.After(cutoff) {
			recent = append(recent, m.ID)
		} else {
			old = append(old, m.ID)
		}
	}
	return recent, old
}

// deleteRecent bulk deletes ids. The bulk endpoint needs at least two.
func (b *Bot) deleteRecent(channelID string, ids []string) error {
	switch len(ids) {
	case 0:
		return nil
	case 1:
		if err := b.api.ChannelMessageDelete(channelID, ids[0]); err != nil {
			return fmt.Errorf("delete message %s: %w", ids[0], err)
		}
		return nil
	default:
		if err := b.api.ChannelMessagesBulkDelete(channelID, ids); err != nil {
			return fmt.Errorf("bulk delete messages: %w", err)
		}
		return nil
	}
}
