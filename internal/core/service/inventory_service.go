package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Habinalszl/raktarkezelo-discord-bot/internal/core/command"
	"github.com/Habinalszl/raktarkezelo-discord-bot/internal/core/domain"
	"github.com/Habinalszl/raktarkezelo-discord-bot/internal/port"
)

var ErrDuplicateMessage = errors.New("duplicate message")

const maxNameLength = 100

type InventoryService struct {
	repo       port.InventoryRepository
	guard      port.MessageGuard
	logger     *zap.Logger
	now        func() time.Time
	mu         sync.RWMutex
	closed     bool
	eventQueue chan domain.Event
}

// NewInventoryService wires the dispatcher. guard may be nil, in which case
// redelivered messages are not detected. A queueSize of zero disables change
// events.
func NewInventoryService(repo port.InventoryRepository, guard port.MessageGuard, logger *zap.Logger, queueSize int) *InventoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &InventoryService{
		repo:   repo,
		guard:  guard,
		logger: logger,
		now:    time.Now,
	}
	if queueSize > 0 {
		s.eventQueue = make(chan domain.Event, queueSize)
	}
	return s
}

// Handle runs one chat message through the parser and the store. Every user
// mistake comes back as a Reply; the error is reserved for infrastructure
// failures and ErrDuplicateMessage.
func (s *InventoryService) Handle(ctx context.Context, msg domain.Message) (domain.Reply, error) {
	if msg.ID != "" && s.guard != nil {
		ok, err := s.guard.Claim(ctx, msg.ID)
		if err != nil {
			return domain.Reply{}, fmt.Errorf("duplicate check failed: %w", err)
		}
		if !ok {
			return domain.Reply{}, ErrDuplicateMessage
		}
	}

	requestID := msg.ID
	if requestID == "" {
		requestID = uuid.NewString()
	}

	cmd := command.Parse(msg.Content)
	log := s.logger.With(
		zap.String("request_id", requestID),
		zap.String("channel", msg.Channel),
		zap.String("author", msg.Author),
		zap.Stringer("command", cmd.Kind),
	)
	log.Info("command received", zap.String("content", msg.Content))

	reply, err := s.dispatch(ctx, cmd, msg)
	if err != nil {
		log.Error("command failed", zap.Error(err))
		return domain.Reply{}, err
	}

	log.Debug("command handled", zap.String("outcome", string(reply.Outcome)))
	return reply, nil
}

// ResetReplies returns what is posted after a channel has been purged: the
// help text followed by the full listing.
func (s *InventoryService) ResetReplies(ctx context.Context) ([]string, error) {
	listing, err := s.list(ctx, nil)
	if err != nil {
		return nil, err
	}
	return []string{helpText, listing.Text}, nil
}

// Items lists every row, or only rows matching term when it is not empty.
func (s *InventoryService) Items(ctx context.Context, term string) ([]domain.Item, error) {
	if term == "" {
		return s.repo.List(ctx)
	}
	return s.repo.Search(ctx, command.Normalize(term))
}

func (s *InventoryService) dispatch(ctx context.Context, cmd command.Command, msg domain.Message) (domain.Reply, error) {
	switch cmd.Kind {
	case command.Help:
		return domain.Reply{Outcome: domain.OutcomeOK, Text: helpText}, nil
	case command.Reset:
		return domain.Reply{Outcome: domain.OutcomeReset}, nil
	case command.List:
		return s.list(ctx, cmd.Args)
	case command.Add:
		return s.add(ctx, cmd.Args, msg)
	case command.Update:
		return s.update(ctx, cmd.Args, msg)
	case command.Delete:
		return s.delete(ctx, cmd.Args, msg)
	default:
		return domain.Reply{Outcome: domain.OutcomeUnknown, Text: msgUnknown}, nil
	}
}

func (s *InventoryService) list(ctx context.Context, args []string) (domain.Reply, error) {
	var (
		items []domain.Item
		err   error
	)
	switch len(args) {
	case 0:
		items, err = s.repo.List(ctx)
	case 1:
		items, err = s.repo.Search(ctx, args[0])
	default:
		return usage(usageList), nil
	}
	if err != nil {
		return domain.Reply{}, fmt.Errorf("list failed: %w", err)
	}

	if len(items) == 0 {
		return domain.Reply{Outcome: domain.OutcomeEmpty, Text: msgEmpty}, nil
	}
	return domain.Reply{Outcome: domain.OutcomeOK, Text: formatTable(items)}, nil
}

func (s *InventoryService) add(ctx context.Context, args []string, msg domain.Message) (domain.Reply, error) {
	if len(args) != 2 {
		return usage(usageAdd), nil
	}
	name := args[0]
	if reason := validateName(name); reason != "" {
		return rejected(reason), nil
	}
	quantity, ok := parseQuantity(args[1])
	if !ok {
		return usage(usageAdd), nil
	}
	if quantity <= 0 {
		return rejected(msgQuantityPos), nil
	}

	item, err := s.repo.Insert(ctx, name, quantity)
	if errors.Is(err, domain.ErrDuplicateName) {
		return rejected(fmt.Sprintf(fmtDuplicate, name)), nil
	}
	if err != nil {
		return domain.Reply{}, fmt.Errorf("add failed: %w", err)
	}

	s.emit(ctx, domain.EventItemAdded, item.Name, item.Quantity, msg)
	return domain.Reply{Outcome: domain.OutcomeOK, Text: fmt.Sprintf(fmtAdded, item.Name, item.Quantity)}, nil
}

func (s *InventoryService) update(ctx context.Context, args []string, msg domain.Message) (domain.Reply, error) {
	if len(args) != 2 {
		return usage(usageUpdate), nil
	}
	name := args[0]
	quantity, ok := parseQuantity(args[1])
	if !ok {
		return usage(usageUpdate), nil
	}
	if quantity < 0 {
		return rejected(msgQuantityNonNeg), nil
	}

	found, err := s.repo.UpdateQuantity(ctx, name, quantity)
	if err != nil {
		return domain.Reply{}, fmt.Errorf("update failed: %w", err)
	}
	if !found {
		// Some drivers count changed rows only; an unchanged row still exists.
		item, err := s.repo.FindByName(ctx, name)
		if err != nil {
			return domain.Reply{}, fmt.Errorf("update failed: %w", err)
		}
		if item == nil {
			return domain.Reply{Outcome: domain.OutcomeNotFound, Text: fmt.Sprintf(fmtNotFound, name)}, nil
		}
	}

	s.emit(ctx, domain.EventItemUpdated, name, quantity, msg)
	return domain.Reply{Outcome: domain.OutcomeOK, Text: fmt.Sprintf(fmtUpdated, name, quantity)}, nil
}

func (s *InventoryService) delete(ctx context.Context, args []string, msg domain.Message) (domain.Reply, error) {
	if len(args) != 1 {
		return usage(usageDelete), nil
	}
	name := args[0]

	found, err := s.repo.Delete(ctx, name)
	if err != nil {
		return domain.Reply{}, fmt.Errorf("delete failed: %w", err)
	}
	if !found {
		return domain.Reply{Outcome: domain.OutcomeNotFound, Text: fmt.Sprintf(fmtNotFound, name)}, nil
	}

	s.emit(ctx, domain.EventItemDeleted, name, 0, msg)
	return domain.Reply{Outcome: domain.OutcomeOK, Text: fmt.Sprintf(fmtDeleted, name)}, nil
}

// emit queues a change event. Events are best effort: once the service is
// closed or the caller gives up they are dropped.
func (s *InventoryService) emit(ctx context.Context, kind domain.EventKind, name string, quantity int, msg domain.Message) {
	if s.eventQueue == nil {
		return
	}

	event := domain.Event{
		ID:         uuid.NewString(),
		Kind:       kind,
		Name:       name,
		Quantity:   quantity,
		Actor:      msg.Author,
		Channel:    msg.Channel,
		OccurredAt: s.now().UTC(),
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}

	select {
	case s.eventQueue <- event:
	case <-ctx.Done():
		s.logger.Warn("event dropped", zap.String("event_id", event.ID), zap.Error(ctx.Err()))
	}
}

func (s *InventoryService) GetEventQueue() <-chan domain.Event {
	return s.eventQueue
}

func (s *InventoryService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.eventQueue != nil {
		close(s.eventQueue)
	}
}

func usage(text string) domain.Reply {
	return domain.Reply{Outcome: domain.OutcomeUsage, Text: text}
}

func rejected(text string) domain.Reply {
	return domain.Reply{Outcome: domain.OutcomeRejected, Text: text}
}

// validateName returns the rejection message for an unusable name, or "".
func validateName(name string) string {
	if name == "" {
		return msgNameCharset
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return msgNameTooLong
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return msgNameCharset
		}
	}
	return ""
}

// parseQuantity accepts a base-10 integer that fits the quantity column.
func parseQuantity(raw string) (int, bool) {
	n, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, false
	}
	return int(n), true
}
