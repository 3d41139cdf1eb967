package handler

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Habinalszl/raktarkezelo-discord-bot/internal/core/domain"
	"github.com/Habinalszl/raktarkezelo-discord-bot/internal/core/service"
)

type GRPCHandler struct {
	inventoryService *service.InventoryService
	logger           *zap.Logger
	timeout          time.Duration
}

func NewGRPCHandler(inventoryService *service.InventoryService, logger *zap.Logger, timeout time.Duration) *GRPCHandler {
	return &GRPCHandler{inventoryService: inventoryService, logger: logger, timeout: timeout}
}

func (h *GRPCHandler) Execute(ctx context.Context, req *CommandRequest) (*CommandResponse, error) {
	if !validContent(req.Content) {
		return &CommandResponse{
			Success: false,
			Outcome: outcomeInvalid,
			Message: "missing content",
		}, nil
	}

	author := req.Author
	if author == "" {
		author = "grpc"
	}
	outcome, replies, err := execute(ctx, h.inventoryService, h.timeout, domain.Message{
		ID:      req.RequestID,
		Author:  author,
		Channel: req.Channel,
		Content: req.Content,
	})
	if err != nil {
		if errors.Is(err, service.ErrDuplicateMessage) {
			return &CommandResponse{
				Success: false,
				Outcome: outcomeDuplicate,
				Message: "duplicate request",
			}, nil
		}
		h.logger.Error("command failed", zap.String("request_id", req.RequestID), zap.Error(err))
		return &CommandResponse{
			Success: false,
			Outcome: outcomeInternal,
			Message: "internal error",
		}, nil
	}

	return &CommandResponse{
		Success: true,
		Outcome: string(outcome),
		Replies: replies,
	}, nil
}
