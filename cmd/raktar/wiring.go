package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Habinalszl/raktarkezelo-discord-bot/internal/adapter/events"
	"github.com/Habinalszl/raktarkezelo-discord-bot/internal/adapter/storage"
	"github.com/Habinalszl/raktarkezelo-discord-bot/internal/config"
	"github.com/Habinalszl/raktarkezelo-discord-bot/internal/core/service"
	"github.com/Habinalszl/raktarkezelo-discord-bot/internal/port"
)

func openStore(ctx context.Context, cfg *config.Config) (*storage.SQLStore, error) {
	switch cfg.Database.Driver {
	case config.DriverMySQL:
		return storage.OpenMySQL(ctx, cfg.Database.DSN)
	case config.DriverSQLite:
		return storage.OpenSQLite(ctx, cfg.Database.Path)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

// openGuard returns the Redis guard when an address is configured and the
// in-process one otherwise. The returned func releases the client.
func openGuard(ctx context.Context, cfg *config.Config) (port.MessageGuard, func(), error) {
	if cfg.Redis.Addr == "" {
		return storage.NewMemoryGuard(cfg.GetClaimTTL()), func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, nil, fmt.Errorf("failed to connect redis: %w", err)
	}
	logger.Info("connected to redis", zap.String("addr", cfg.Redis.Addr))
	return storage.NewRedisGuard(rdb, cfg.GetClaimTTL()), func() { rdb.Close() }, nil
}

func newPublisher(cfg *config.Config) (port.EventPublisher, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return events.NewLogPublisher(logger.Named("events")), nil
	}
	p, err := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	if err != nil {
		return nil, err
	}
	logger.Info("publishing events to kafka",
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.String("topic", cfg.Kafka.Topic),
	)
	return p, nil
}

// startEventWorkers drains the service's event queue. The returned func
// blocks until the queue is closed and drained, then closes the publisher.
func startEventWorkers(svc *service.InventoryService, cfg *config.Config) (func(), error) {
	queue := svc.GetEventQueue()
	if queue == nil {
		return func() {}, nil
	}

	publisher, err := newPublisher(cfg)
	if err != nil {
		return nil, err
	}

	workers := cfg.Service.EventWorkers
	if workers < 1 {
		workers = 1
	}
	workerLogger := logger.Named("worker")

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			events.WorkerLoop(id, queue, publisher, workerLogger)
		}(i)
	}
	logger.Debug("started event workers", zap.Int("count", workers))

	return func() {
		wg.Wait()
		if err := publisher.Close(); err != nil {
			logger.Warn("failed to close event publisher", zap.Error(err))
		}
	}, nil
}
