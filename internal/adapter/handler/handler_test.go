package handler

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Habinalszl/raktarkezelo-discord-bot/internal/adapter/storage"
	"github.com/Habinalszl/raktarkezelo-discord-bot/internal/core/service"
)

const testTimeout = 5 * time.Second

func newTestService(t *testing.T) *service.InventoryService {
	t.Helper()
	svc, _ := newTestServiceWithStore(t)
	return svc
}

func newTestServiceWithStore(t *testing.T) (*service.InventoryService, *storage.SQLStore) {
	t.Helper()

	store, err := storage.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "raktar.db"))
	require.NoError(t, err)

	svc := service.NewInventoryService(store, storage.NewMemoryGuard(0), zap.NewNop(), 0)
	t.Cleanup(func() {
		svc.Close()
		store.Close()
	})
	return svc, store
}
