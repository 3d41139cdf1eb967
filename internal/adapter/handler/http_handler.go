package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Habinalszl/raktarkezelo-discord-bot/internal/core/domain"
	"github.com/Habinalszl/raktarkezelo-discord-bot/internal/core/service"
)

// Pinger reports whether a backing store answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HTTPHandler struct {
	inventoryService *service.InventoryService
	store            Pinger
	logger           *zap.Logger
	timeout          time.Duration
}

// NewHTTPHandler serves the command API. store backs the health check and
// may be nil.
func NewHTTPHandler(inventoryService *service.InventoryService, store Pinger, logger *zap.Logger, timeout time.Duration) *HTTPHandler {
	return &HTTPHandler{inventoryService: inventoryService, store: store, logger: logger, timeout: timeout}
}

// Routes returns the mux serving every endpoint.
func (h *HTTPHandler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.HealthCheck)
	mux.HandleFunc("POST /api/command", h.Command)
	mux.HandleFunc("GET /api/items", h.Items)
	return mux
}

func (h *HTTPHandler) Command(w http.ResponseWriter, r *http.Request) {
	var req CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, CommandResponse{
			Success: false,
			Outcome: outcomeInvalid,
			Message: "invalid request body",
		})
		return
	}

	if !validContent(req.Content) {
		writeJSON(w, http.StatusBadRequest, CommandResponse{
			Success: false,
			Outcome: outcomeInvalid,
			Message: "missing content",
		})
		return
	}

	author := req.Author
	if author == "" {
		author = "http"
	}
	outcome, replies, err := execute(r.Context(), h.inventoryService, h.timeout, domain.Message{
		ID:      req.RequestID,
		Author:  author,
		Channel: req.Channel,
		Content: req.Content,
	})
	if err != nil {
		if errors.Is(err, service.ErrDuplicateMessage) {
			writeJSON(w, http.StatusConflict, CommandResponse{
				Success: false,
				Outcome: outcomeDuplicate,
				Message: "duplicate request",
			})
			return
		}

		h.logger.Error("command failed", zap.String("request_id", req.RequestID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, CommandResponse{
			Success: false,
			Outcome: outcomeInternal,
			Message: "internal error",
		})
		return
	}

	writeJSON(w, http.StatusOK, CommandResponse{
		Success: true,
		Outcome: string(outcome),
		Replies: replies,
	})
}

func (h *HTTPHandler) Items(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	items, err := h.inventoryService.Items(ctx, r.URL.Query().Get("name"))
	if err != nil {
		h.logger.Error("listing failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []domain.Item{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if h.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
		defer cancel()

		if err := h.store.Ping(ctx); err != nil {
			h.logger.Warn("health check failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
