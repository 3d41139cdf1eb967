package discord

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Habinalszl/raktarkezelo-discord-bot/internal/adapter/storage"
	"github.com/Habinalszl/raktarkezelo-discord-bot/internal/core/service"
)

const testChannel = "chan-1"

// fakeSession keeps one channel's history, newest first. IDs sort the same
// way Discord snowflakes do.
type fakeSession struct {
	mu          sync.Mutex
	history     []*discordgo.Message
	sent        []string
	reactions   map[string][]string
	bulkDeleted [][]string
	deleted     []string
	sendErr     error
	fetchErr    error
}

func newFakeSession() *fakeSession {
	return &fakeSession{reactions: make(map[string][]string)}
}

func (f *fakeSession) ChannelMessageSend(channelID string, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	if n := utf8.RuneCountInString(content); n > maxMessageRunes {
		return nil, fmt.Errorf("message content is %d runes, limit is %d", n, maxMessageRunes)
	}
	f.sent = append(f.sent, content)
	return &discordgo.Message{ChannelID: channelID, Content: content}, nil
}

func (f *fakeSession) MessageReactionAdd(_, messageID, emojiID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reactions[messageID] = append(f.reactions[messageID], emojiID)
	return nil
}

func (f *fakeSession) ChannelMessages(_ string, limit int, beforeID, _, _ string, _ ...discordgo.RequestOption) ([]*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	var page []*discordgo.Message
	for _, m := range f.history {
		if beforeID != "" && m.ID >= beforeID {
			continue
		}
		page = append(page, m)
		if len(page) == limit {
			break
		}
	}
	return page, nil
}

func (f *fakeSession) ChannelMessagesBulkDelete(_ string, ids []string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(ids) < 2 || len(ids) > 100 {
		return fmt.Errorf("bulk delete of %d messages", len(ids))
	}
	f.bulkDeleted = append(f.bulkDeleted, ids)
	f.remove(ids...)
	return nil
}

func (f *fakeSession) ChannelMessageDelete(_, messageID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, messageID)
	f.remove(messageID)
	return nil
}

func (f *fakeSession) remove(ids ...string) {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := f.history[:0]
	for _, m := range f.history {
		if !drop[m.ID] {
			kept = append(kept, m)
		}
	}
	f.history = kept
}

func newTestBot(t *testing.T, opts Options) (*Bot, *fakeSession) {
	t.Helper()

	store, err := storage.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "raktar.db"))
	require.NoError(t, err)
	svc := service.NewInventoryService(store, storage.NewMemoryGuard(0), zap.NewNop(), 0)
	t.Cleanup(func() {
		svc.Close()
		store.Close()
	})

	session := newFakeSession()
	return newBot(session, svc, zap.NewNop(), opts), session
}

func userMessage(id, content string) *discordgo.Message {
	return &discordgo.Message{
		ID:        id,
		ChannelID: testChannel,
		Content:   content,
		Author:    &discordgo.User{ID: "user-1", Username: "anna", Discriminator: "0"},
	}
}

func TestBot_RepliesAndReacts(t *testing.T) {
	bot, session := newTestBot(t, Options{IgnoreNonCommands: true})

	bot.handle(context.Background(), userMessage("1", "!hozzaad alma 5"))

	require.Len(t, session.sent, 1)
	assert.Contains(t, session.sent[0], "alma")
	assert.Equal(t, []string{reactionOK}, session.reactions["1"])
}

func TestBot_IgnoresOwnMessages(t *testing.T) {
	bot, session := newTestBot(t, Options{})
	bot.onReady(&discordgo.Ready{User: &discordgo.User{ID: "bot-1", Username: "raktar"}})

	msg := userMessage("1", "!segitseg")
	msg.Author.ID = "bot-1"
	bot.handle(context.Background(), msg)

	assert.Empty(t, session.sent)
	assert.Empty(t, session.reactions)
}

func TestBot_NonCommandLines(t *testing.T) {
	bot, session := newTestBot(t, Options{IgnoreNonCommands: true})
	bot.handle(context.Background(), userMessage("1", "szia mindenki"))
	assert.Empty(t, session.sent)

	bot, session = newTestBot(t, Options{IgnoreNonCommands: false})
	bot.handle(context.Background(), userMessage("2", "szia mindenki"))
	require.Len(t, session.sent, 1)
	assert.Contains(t, session.sent[0], "Ismeretlen parancs")
}

func TestBot_DuplicateDeliveryIgnored(t *testing.T) {
	bot, session := newTestBot(t, Options{})

	msg := userMessage("42", "!hozzaad alma 5")
	bot.handle(context.Background(), msg)
	bot.handle(context.Background(), msg)

	assert.Len(t, session.sent, 1)
	assert.Equal(t, []string{reactionOK}, session.reactions["42"])
}

func TestBot_SendFailureReactsWithError(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	bot, session := newTestBot(t, Options{})
	bot.logger = zap.New(core)
	session.sendErr = errors.New("missing permissions")

	bot.handle(context.Background(), userMessage("1", "!segitseg"))

	assert.Equal(t, []string{reactionError}, session.reactions["1"])
	assert.Equal(t, 1, logs.FilterMessage("failed to send reply").Len())
}

func TestBot_LogsIncomingLine(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	bot, _ := newTestBot(t, Options{})
	bot.logger = zap.New(core)

	bot.handle(context.Background(), userMessage("1", "!raktar"))

	entries := logs.FilterMessage(`[chan-1] anna: "!raktar"`).All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, testChannel, fields["channel"])
	assert.Equal(t, "anna", fields["author"])
	assert.Equal(t, "1", fields["message_id"])
}

func addItems(t *testing.T, bot *Bot, session *fakeSession, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		bot.handle(context.Background(), userMessage(fmt.Sprintf("add-%d", i), fmt.Sprintf("!hozzaad termek%d %d", i, i+1)))
	}
	require.Len(t, session.sent, n)
	session.sent = nil
}

func assertFencedChunks(t *testing.T, chunks []string, names int) {
	t.Helper()
	require.Greater(t, len(chunks), 1)
	joined := strings.Join(chunks, "\n")
	for _, chunk := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(chunk), maxMessageRunes)
		assert.True(t, strings.HasPrefix(chunk, codeFence))
		assert.True(t, strings.HasSuffix(chunk, codeFence))
	}
	for i := 0; i < names; i++ {
		assert.Contains(t, joined, fmt.Sprintf("termek%d ", i))
	}
}

func TestBot_LongListingIsSplit(t *testing.T) {
	bot, session := newTestBot(t, Options{})
	addItems(t, bot, session, 70)

	bot.handle(context.Background(), userMessage("list", "!raktar"))

	assertFencedChunks(t, session.sent, 70)
	assert.Equal(t, []string{reactionOK}, session.reactions["list"])
}

func TestBot_ResetRepostsLongListing(t *testing.T) {
	bot, session := newTestBot(t, Options{})
	addItems(t, bot, session, 70)

	bot.handle(context.Background(), userMessage("901", "!reset"))

	require.Greater(t, len(session.sent), 2)
	assert.True(t, strings.HasPrefix(session.sent[0], "Elérhető parancsok:"))
	assert.NotContains(t, session.sent, msgResetFailed)
	assertFencedChunks(t, session.sent[1:], 70)
}

func TestBot_ResetPurgesAndReposts(t *testing.T) {
	bot, session := newTestBot(t, Options{})
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	bot.now = func() time.Time { return now }

	bot.handle(context.Background(), userMessage("900", "!hozzaad alma 5"))
	session.sent = nil

	// 120 recent messages followed by 30 older than the bulk delete window.
	for i := 0; i < 150; i++ {
		ts := now.Add(-time.Duration(i) * time.Minute)
		if i >= 120 {
			ts = now.Add(-20 * 24 * time.Hour)
		}
		session.history = append(session.history, &discordgo.Message{
			ID:        fmt.Sprintf("m%03d", 999-i),
			ChannelID: testChannel,
			Timestamp: ts,
		})
	}

	bot.handle(context.Background(), userMessage("901", "!reset"))

	assert.Empty(t, session.history)
	require.Len(t, session.bulkDeleted, 2)
	assert.Len(t, session.bulkDeleted[0], 100)
	assert.Len(t, session.bulkDeleted[1], 20)
	assert.Len(t, session.deleted, 30)

	require.Len(t, session.sent, 2)
	assert.True(t, strings.HasPrefix(session.sent[0], "Elérhető parancsok:"))
	assert.Contains(t, session.sent[1], "alma")
	assert.Empty(t, session.reactions["901"])
}

func TestBot_ResetSingleRecentMessage(t *testing.T) {
	bot, session := newTestBot(t, Options{})
	now := time.Now()
	bot.now = func() time.Time { return now }
	session.history = []*discordgo.Message{{ID: "m1", ChannelID: testChannel, Timestamp: now}}

	bot.handle(context.Background(), userMessage("901", "!reset"))

	assert.Empty(t, session.bulkDeleted)
	assert.Equal(t, []string{"m1"}, session.deleted)
	assert.Len(t, session.sent, 2)
}

func TestBot_ResetFailure(t *testing.T) {
	bot, session := newTestBot(t, Options{})
	session.fetchErr = errors.New("forbidden")

	bot.handle(context.Background(), userMessage("901", "!reset"))

	assert.Equal(t, []string{msgResetFailed}, session.sent)
}
