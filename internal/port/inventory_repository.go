package port

import (
	"context"

	"github.com/Habinalszl/raktarkezelo-discord-bot/internal/core/domain"
)

type InventoryRepository interface {
	// Insert stores a new row and returns it with its assigned ID
	Insert(ctx context.Context, name string, quantity int) (domain.Item, error)

	// FindByName returns nil when no row has the given name
	FindByName(ctx context.Context, name string) (*domain.Item, error)

	// List returns every row ordered by ID
	List(ctx context.Context) ([]domain.Item, error)

	// Search returns rows whose name contains term
	Search(ctx context.Context, term string) ([]domain.Item, error)

	// UpdateQuantity sets the quantity of the named row, false if nothing matched
	UpdateQuantity(ctx context.Context, name string, quantity int) (bool, error)

	// Delete removes the named row, false if nothing matched
	Delete(ctx context.Context, name string) (bool, error)
}
