package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/Habinalszl/raktarkezelo-discord-bot/internal/adapter/handler"
	"github.com/Habinalszl/raktarkezelo-discord-bot/internal/core/domain"
	"github.com/Habinalszl/raktarkezelo-discord-bot/internal/core/service"
)

func runExec(cmd *cobra.Command, args []string) error {
	line := strings.Join(args, " ")
	out := cmd.OutOrStdout()

	if remoteAddr != "" {
		return execRemote(cmd.Context(), out, line)
	}

	return withService(cmd.Context(), func(ctx context.Context, svc *service.InventoryService) error {
		ctx, cancel := context.WithTimeout(ctx, cfg.GetCommandTimeout())
		defer cancel()

		reply, err := svc.Handle(ctx, domain.Message{Author: "cli", Content: line})
		if err != nil {
			return err
		}

		if reply.Outcome != domain.OutcomeReset {
			fmt.Fprintln(out, reply.Text)
			return nil
		}
		// No channel to purge here; show what a reset would post.
		replies, err := svc.ResetReplies(ctx)
		if err != nil {
			return err
		}
		for _, text := range replies {
			fmt.Fprintln(out, text)
		}
		return nil
	})
}

func execRemote(ctx context.Context, out io.Writer, line string) error {
	conn, err := grpc.NewClient(remoteAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("failed to connect %s: %w", remoteAddr, err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(contextOrBackground(ctx), cfg.GetCommandTimeout())
	defer cancel()

	resp, err := handler.NewCommandServiceClient(conn).Execute(ctx, &handler.CommandRequest{
		Author:  "cli",
		Content: line,
	})
	if err != nil {
		return fmt.Errorf("remote execute: %w", err)
	}
	if !resp.Success {
		return fmt.Errorf("remote execute: %s (%s)", resp.Message, resp.Outcome)
	}
	for _, text := range resp.Replies {
		fmt.Fprintln(out, text)
	}
	return nil
}

func runItems(cmd *cobra.Command, args []string) error {
	var term string
	if len(args) > 0 {
		term = args[0]
	}

	return withService(cmd.Context(), func(ctx context.Context, svc *service.InventoryService) error {
		ctx, cancel := context.WithTimeout(ctx, cfg.GetCommandTimeout())
		defer cancel()

		items, err := svc.Items(ctx, term)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tQUANTITY")
		for _, item := range items {
			fmt.Fprintf(tw, "%d\t%s\t%d\n", item.ID, item.Name, item.Quantity)
		}
		return tw.Flush()
	})
}

// withService opens the configured store for one-shot commands. Change
// events raised by fn are published before it returns.
func withService(ctx context.Context, fn func(context.Context, *service.InventoryService) error) error {
	ctx = contextOrBackground(ctx)

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	svc := service.NewInventoryService(store, nil, logger.Named("service"), cfg.Service.EventQueueSize)
	waitWorkers, err := startEventWorkers(svc, cfg)
	if err != nil {
		svc.Close()
		return err
	}

	err = fn(ctx, svc)
	svc.Close()
	waitWorkers()
	return err
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
