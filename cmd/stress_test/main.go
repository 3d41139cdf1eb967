package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/Habinalszl/raktarkezelo-discord-bot/internal/adapter/storage"
	"github.com/Habinalszl/raktarkezelo-discord-bot/internal/core/domain"
	"github.com/Habinalszl/raktarkezelo-discord-bot/internal/core/service"
)

const (
	distinctItems = 50
	sameNameAdds  = 30
	queueSize     = 1000
)

func main() {
	ctx := context.Background()

	dir, err := os.MkdirTemp("", "raktar-stress-*")
	if err != nil {
		log.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	store, err := storage.OpenSQLite(ctx, filepath.Join(dir, "raktar.db"))
	if err != nil {
		log.Fatalf("failed to open sqlite: %v", err)
	}
	defer store.Close()

	inventoryService := service.NewInventoryService(store, storage.NewMemoryGuard(0), zap.NewNop(), queueSize)

	// Drain the event queue in background
	var events atomic.Int32
	drained := make(chan struct{})
	go func() {
		for range inventoryService.GetEventQueue() {
			events.Add(1)
		}
		close(drained)
	}()

	// Counters
	var addedCount atomic.Int32
	var rejectedCount atomic.Int32
	var errorCount atomic.Int32

	send := func(id int, content string) {
		reply, err := inventoryService.Handle(ctx, domain.Message{
			ID:      fmt.Sprintf("stress-%d", id),
			Author:  "stress",
			Content: content,
		})
		switch {
		case err != nil:
			errorCount.Add(1)
		case reply.Outcome == domain.OutcomeOK:
			addedCount.Add(1)
		default:
			rejectedCount.Add(1)
		}
	}

	// Spawn concurrent adds: distinct names plus one contested name
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < distinctItems; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			send(n, fmt.Sprintf("!hozzaad termek%d %d", n, n+1))
		}(i)
	}
	for i := 0; i < sameNameAdds; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			send(distinctItems+n, "!hozzaad kozos 1")
		}(i)
	}

	wg.Wait()
	elapsed := time.Since(start)

	inventoryService.Close()
	<-drained

	// Results
	added := addedCount.Load()
	rejected := rejectedCount.Load()
	failed := errorCount.Load()

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Distinct Adds:    %d\n", distinctItems)
	fmt.Printf("Contested Adds:   %d\n", sameNameAdds)
	fmt.Printf("Added:            %d\n", added)
	fmt.Printf("Rejected:         %d\n", rejected)
	fmt.Printf("Errors:           %d\n", failed)
	fmt.Printf("Events:           %d\n", events.Load())
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	// Assertions
	wantAdded := int32(distinctItems + 1)
	wantRejected := int32(sameNameAdds - 1)
	if added == wantAdded && rejected == wantRejected && failed == 0 {
		fmt.Printf("PASS: %d rows added, %d duplicates rejected\n", wantAdded, wantRejected)
	} else {
		fmt.Printf("FAIL: Expected %d added/%d rejected/0 errors, got %d/%d/%d\n",
			wantAdded, wantRejected, added, rejected, failed)
	}

	// Verify final row count in SQLite
	items, err := store.List(ctx)
	if err != nil {
		log.Fatalf("failed to list items: %v", err)
	}
	fmt.Printf("Final Row Count: %d\n", len(items))

	if len(items) == int(wantAdded) {
		fmt.Println("PASS: Every distinct name landed exactly once")
	} else {
		fmt.Printf("FAIL: Expected %d rows, got %d\n", wantAdded, len(items))
	}
}
