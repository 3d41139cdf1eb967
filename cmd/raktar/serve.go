package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/Habinalszl/raktarkezelo-discord-bot/internal/adapter/discord"
	"github.com/Habinalszl/raktarkezelo-discord-bot/internal/adapter/handler"
	"github.com/Habinalszl/raktarkezelo-discord-bot/internal/core/service"
)

const shutdownTimeout = 5 * time.Second

func runServe(cmd *cobra.Command, args []string) error {
	if cfg.Discord.Token == "" && cfg.HTTP.Addr == "" && cfg.GRPC.Addr == "" {
		return errors.New("no transport enabled: set discord.token, http.addr or grpc.addr")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	logger.Info("ledger opened", zap.String("driver", cfg.Database.Driver))

	guard, closeGuard, err := openGuard(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeGuard()

	svc := service.NewInventoryService(store, guard, logger.Named("service"), cfg.Service.EventQueueSize)
	waitWorkers, err := startEventWorkers(svc, cfg)
	if err != nil {
		svc.Close()
		return err
	}

	timeout := cfg.GetCommandTimeout()

	var bot *discord.Bot
	if cfg.Discord.Token != "" {
		bot, err = discord.NewBot(cfg.Discord.Token, svc, logger.Named("discord"), discord.Options{
			Timeout:           timeout,
			IgnoreNonCommands: cfg.Discord.IgnoreNonCommands,
		})
		if err != nil {
			svc.Close()
			waitWorkers()
			return err
		}
	} else {
		logger.Warn("discord token not set, chat transport disabled")
	}

	var grpcListener net.Listener
	if cfg.GRPC.Addr != "" {
		grpcListener, err = net.Listen("tcp", cfg.GRPC.Addr)
		if err != nil {
			svc.Close()
			waitWorkers()
			return fmt.Errorf("failed to listen: %w", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	if grpcListener != nil {
		grpcServer := grpc.NewServer()
		handler.RegisterCommandServiceServer(grpcServer, handler.NewGRPCHandler(svc, logger.Named("grpc"), timeout))

		g.Go(func() error {
			logger.Info("gRPC server listening", zap.String("addr", grpcListener.Addr().String()))
			if err := grpcServer.Serve(grpcListener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return fmt.Errorf("grpc server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			grpcServer.GracefulStop()
			logger.Info("gRPC server stopped")
			return nil
		})
	}

	if cfg.HTTP.Addr != "" {
		httpServer := &http.Server{
			Addr:    cfg.HTTP.Addr,
			Handler: handler.NewHTTPHandler(svc, store, logger.Named("http"), timeout).Routes(),
		}

		g.Go(func() error {
			logger.Info("HTTP server listening", zap.String("addr", cfg.HTTP.Addr))
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("http shutdown: %w", err)
			}
			logger.Info("HTTP server stopped")
			return nil
		})
	}

	if bot != nil {
		g.Go(func() error {
			return bot.Run(gctx)
		})
	}

	err = g.Wait()
	logger.Info("shutting down...")

	svc.Close()
	waitWorkers()
	logger.Info("workers stopped")

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
