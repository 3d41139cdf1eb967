package discord

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/Habinalszl/raktarkezelo-discord-bot/internal/core/command"
	"github.com/Habinalszl/raktarkezelo-discord-bot/internal/core/domain"
	"github.com/Habinalszl/raktarkezelo-discord-bot/internal/core/service"
)

const (
	reactionOK    = "✅"
	reactionError = "❌"

	msgResetFailed = "Hiba történt a csatorna visszaállítása közben."

	defaultTimeout = 5 * time.Second
)

// Session is the part of *discordgo.Session the bot talks to.
type Session interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	MessageReactionAdd(channelID, messageID, emojiID string, options ...discordgo.RequestOption) error
	ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error)
	ChannelMessagesBulkDelete(channelID string, messages []string, options ...discordgo.RequestOption) error
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
}

type Options struct {
	// Timeout bounds each dispatch and each post-reset listing.
	Timeout time.Duration
	// IgnoreNonCommands drops lines that do not start with the command prefix.
	IgnoreNonCommands bool
}

type Bot struct {
	session *discordgo.Session
	api     Session
	svc     *service.InventoryService
	logger  *zap.Logger
	opts    Options
	now     func() time.Time
	selfID  atomic.Value
}

func NewBot(token string, svc *service.InventoryService, logger *zap.Logger, opts Options) (*Bot, error) {
	if token == "" {
		return nil, errors.New("discord token is empty")
	}
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentGuildMessages | discordgo.IntentDirectMessages | discordgo.IntentMessageContent

	b := newBot(s, svc, logger, opts)
	b.session = s
	return b, nil
}

func newBot(api Session, svc *service.InventoryService, logger *zap.Logger, opts Options) *Bot {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	b := &Bot{
		api:    api,
		svc:    svc,
		logger: logger,
		opts:   opts,
		now:    time.Now,
	}
	b.selfID.Store("")
	return b
}

// Run connects to the gateway and blocks until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	b.session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		b.onReady(r)
	})
	b.session.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) {
		b.handle(ctx, m.Message)
	})

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}

	<-ctx.Done()
	b.logger.Info("closing discord session")
	if err := b.session.Close(); err != nil {
		return fmt.Errorf("close discord session: %w", err)
	}
	return nil
}

func (b *Bot) onReady(r *discordgo.Ready) {
	if r.User == nil {
		return
	}
	b.selfID.Store(r.User.ID)
	b.logger.Info("discord bot is now running", zap.String("user", r.User.String()))
}

func (b *Bot) handle(ctx context.Context, m *discordgo.Message) {
	if m == nil || m.Author == nil {
		return
	}
	if m.Author.ID == b.selfID.Load().(string) {
		return
	}
	if b.opts.IgnoreNonCommands && !command.IsCommand(m.Content) {
		return
	}

	author := m.Author.String()
	b.logger.Info(fmt.Sprintf("[%s] %s: %q", m.ChannelID, author, m.Content),
		zap.String("channel", m.ChannelID),
		zap.String("author", author),
		zap.String("message_id", m.ID),
	)

	reply, err := b.dispatch(ctx, domain.Message{
		ID:      m.ID,
		Author:  author,
		Channel: m.ChannelID,
		Content: m.Content,
	})
	if err != nil {
		if errors.Is(err, service.ErrDuplicateMessage) {
			b.logger.Debug("duplicate delivery ignored", zap.String("message_id", m.ID))
			return
		}
		b.logger.Error("command failed", zap.String("message_id", m.ID), zap.Error(err))
		b.react(m, reactionError)
		return
	}

	switch {
	case reply.Outcome == domain.OutcomeReset:
		b.reset(ctx, m.ChannelID)
	case reply.Text != "":
		if err := b.send(m.ChannelID, reply.Text); err != nil {
			b.logger.Error("failed to send reply", zap.String("channel", m.ChannelID), zap.Error(err))
			b.react(m, reactionError)
			return
		}
		b.react(m, reactionOK)
	}
}

func (b *Bot) dispatch(ctx context.Context, msg domain.Message) (domain.Reply, error) {
	ctx, cancel := context.WithTimeout(ctx, b.opts.Timeout)
	defer cancel()
	return b.svc.Handle(ctx, msg)
}

func (b *Bot) react(m *discordgo.Message, emoji string) {
	if err := b.api.MessageReactionAdd(m.ChannelID, m.ID, emoji); err != nil {
		b.logger.Warn("failed to add reaction", zap.String("message_id", m.ID), zap.String("emoji", emoji), zap.Error(err))
	}
}

// reset empties the channel, then posts the help text and the full listing.
func (b *Bot) reset(ctx context.Context, channelID string) {
	if err := b.resetChannel(ctx, channelID); err != nil {
		b.logger.Error("channel reset failed", zap.String("channel", channelID), zap.Error(err))
		if _, err := b.api.ChannelMessageSend(channelID, msgResetFailed); err != nil {
			b.logger.Error("failed to send reply", zap.String("channel", channelID), zap.Error(err))
		}
	}
}

func (b *Bot) resetChannel(ctx context.Context, channelID string) error {
	if err := b.purge(ctx, channelID); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, b.opts.Timeout)
	defer cancel()
	replies, err := b.svc.ResetReplies(ctx)
	if err != nil {
		return err
	}
	for _, text := range replies {
		if err := b.send(channelID, text); err != nil {
			return err
		}
	}
	return nil
}

// send posts text, split into as many messages as Discord's length limit
// requires.
func (b *Bot) send(channelID, text string) error {
	for _, chunk := range splitMessage(text, maxMessageRunes) {
		if _, err := b.api.ChannelMessageSend(channelID, chunk); err != nil {
			return fmt.Errorf("send message: %w", err)
		}
	}
	return nil
}
