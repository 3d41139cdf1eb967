package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jmoiron/sqlx"

	"github.com/Habinalszl/raktarkezelo-discord-bot/internal/core/domain"
)

var (
	insertItemQuery     = "INSERT INTO raktar (nev, mennyiseg) VALUES (?, ?)"
	findItemByNameQuery = "SELECT id, nev, mennyiseg FROM raktar WHERE nev = ?"
	listItemsQuery      = "SELECT id, nev, mennyiseg FROM raktar ORDER BY id"
	searchItemsQuery    = "SELECT id, nev, mennyiseg FROM raktar WHERE nev LIKE ? ESCAPE '!' ORDER BY id"
	updateQuantityQuery = "UPDATE raktar SET mennyiseg = ? WHERE nev = ?"
	deleteItemQuery     = "DELETE FROM raktar WHERE nev = ?"
)

// SQLStore keeps the ledger in a single table. Both supported drivers speak
// the same queries; only schema creation and constraint errors differ.
type SQLStore struct {
	db          *sqlx.DB
	mu          sync.Mutex
	isDuplicate func(error) bool
}

func newSQLStore(db *sqlx.DB, isDuplicate func(error) bool) *SQLStore {
	return &SQLStore{db: db, isDuplicate: isDuplicate}
}

func (s *SQLStore) Insert(ctx context.Context, name string, quantity int) (domain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, insertItemQuery, name, quantity)
	if err != nil {
		if s.isDuplicate(err) {
			return domain.Item{}, domain.ErrDuplicateName
		}
		return domain.Item{}, fmt.Errorf("insert item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return domain.Item{}, fmt.Errorf("insert item id: %w", err)
	}

	return domain.Item{ID: id, Name: name, Quantity: quantity}, nil
}

func (s *SQLStore) FindByName(ctx context.Context, name string) (*domain.Item, error) {
	var items []domain.Item
	if err := s.db.SelectContext(ctx, &items, findItemByNameQuery, name); err != nil {
		return nil, fmt.Errorf("query item: %w", err)
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

func (s *SQLStore) List(ctx context.Context) ([]domain.Item, error) {
	var items []domain.Item
	if err := s.db.SelectContext(ctx, &items, listItemsQuery); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

func (s *SQLStore) Search(ctx context.Context, term string) ([]domain.Item, error) {
	var items []domain.Item
	pattern := "%" + escapeLike(term) + "%"
	if err := s.db.SelectContext(ctx, &items, searchItemsQuery, pattern); err != nil {
		return nil, fmt.Errorf("search items: %w", err)
	}
	return items, nil
}

func (s *SQLStore) UpdateQuantity(ctx context.Context, name string, quantity int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, updateQuantityQuery, quantity, name)
	if err != nil {
		return false, fmt.Errorf("update item: %w", err)
	}
	return affected(result.RowsAffected())
}

func (s *SQLStore) Delete(ctx context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, deleteItemQuery, name)
	if err != nil {
		return false, fmt.Errorf("delete item: %w", err)
	}
	return affected(result.RowsAffected())
}

// Ping reports whether the database answers.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func affected(rows int64, err error) (bool, error) {
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return rows > 0, nil
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// escapeLike makes the search term literal inside a LIKE pattern.
func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}
