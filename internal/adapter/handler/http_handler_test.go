package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Habinalszl/raktarkezelo-discord-bot/internal/core/domain"
	"github.com/Habinalszl/raktarkezelo-discord-bot/internal/core/service"
	"github.com/Habinalszl/raktarkezelo-discord-bot/internal/port"
)

func newTestHTTPServer(t *testing.T) *httptest.Server {
	t.Helper()
	svc, store := newTestServiceWithStore(t)
	h := NewHTTPHandler(svc, store, zap.NewNop(), testTimeout)
	srv := httptest.NewServer(h.Routes())
	t.Cleanup(srv.Close)
	return srv
}

func postCommand(t *testing.T, srv *httptest.Server, req CommandRequest) (int, CommandResponse) {
	t.Helper()

	body, err := json.Marshal(req)
	require.NoError(t, err)

	resp, err := http.Post(srv.URL+"/api/command", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out CommandResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestHTTPHandler_HealthCheck(t *testing.T) {
	srv := newTestHTTPServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}

func TestHTTPHandler_HealthCheckStoreDown(t *testing.T) {
	svc, store := newTestServiceWithStore(t)
	require.NoError(t, store.Close())

	rec := httptest.NewRecorder()
	NewHTTPHandler(svc, store, zap.NewNop(), testTimeout).HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "unavailable")
}

// deadlineRepo records whether listing calls carry a deadline.
type deadlineRepo struct {
	port.InventoryRepository
	hadDeadline atomic.Bool
}

func (r *deadlineRepo) List(ctx context.Context) ([]domain.Item, error) {
	_, ok := ctx.Deadline()
	r.hadDeadline.Store(ok)
	return nil, nil
}

func (r *deadlineRepo) Search(ctx context.Context, term string) ([]domain.Item, error) {
	return r.List(ctx)
}

func TestHTTPHandler_ItemsBoundedByTimeout(t *testing.T) {
	repo := &deadlineRepo{}
	svc := service.NewInventoryService(repo, nil, zap.NewNop(), 0)
	t.Cleanup(svc.Close)

	rec := httptest.NewRecorder()
	NewHTTPHandler(svc, nil, zap.NewNop(), testTimeout).Items(rec, httptest.NewRequest(http.MethodGet, "/api/items", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
	assert.True(t, repo.hadDeadline.Load())
}

func TestHTTPHandler_Command(t *testing.T) {
	srv := newTestHTTPServer(t)

	status, out := postCommand(t, srv, CommandRequest{Author: "anna", Content: "!hozzaad alma 5"})
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, out.Success)
	assert.Equal(t, string(domain.OutcomeOK), out.Outcome)
	require.Len(t, out.Replies, 1)
	assert.Contains(t, out.Replies[0], "alma")

	status, out = postCommand(t, srv, CommandRequest{Content: "!torol"})
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, out.Success)
	assert.Equal(t, string(domain.OutcomeUsage), out.Outcome)
}

func TestHTTPHandler_CommandReset(t *testing.T) {
	srv := newTestHTTPServer(t)

	postCommand(t, srv, CommandRequest{Content: "!hozzaad korte 3"})

	status, out := postCommand(t, srv, CommandRequest{Content: "!reset"})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, string(domain.OutcomeReset), out.Outcome)
	require.Len(t, out.Replies, 2)
	assert.True(t, strings.HasPrefix(out.Replies[0], "Elérhető parancsok:"))
	assert.Contains(t, out.Replies[1], "korte")
}

func TestHTTPHandler_DuplicateRequest(t *testing.T) {
	srv := newTestHTTPServer(t)

	req := CommandRequest{RequestID: "req-1", Content: "!hozzaad alma 1"}
	status, _ := postCommand(t, srv, req)
	assert.Equal(t, http.StatusOK, status)

	status, out := postCommand(t, srv, req)
	assert.Equal(t, http.StatusConflict, status)
	assert.False(t, out.Success)
	assert.Equal(t, outcomeDuplicate, out.Outcome)
}

func TestHTTPHandler_InvalidBody(t *testing.T) {
	srv := newTestHTTPServer(t)

	resp, err := http.Post(srv.URL+"/api/command", "application/json", strings.NewReader("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	status, out := postCommand(t, srv, CommandRequest{Content: "   "})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, outcomeInvalid, out.Outcome)
}

func TestHTTPHandler_MethodNotAllowed(t *testing.T) {
	srv := newTestHTTPServer(t)

	resp, err := http.Get(srv.URL + "/api/command")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestHTTPHandler_Items(t *testing.T) {
	srv := newTestHTTPServer(t)

	resp, err := http.Get(srv.URL + "/api/items")
	require.NoError(t, err)
	var items []domain.Item
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&items))
	resp.Body.Close()
	assert.NotNil(t, items)
	assert.Empty(t, items)

	postCommand(t, srv, CommandRequest{Content: "!hozzaad alma 5"})
	postCommand(t, srv, CommandRequest{Content: "!hozzaad barack 2"})

	resp, err = http.Get(srv.URL + "/api/items?name=ALM")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&items))
	require.Len(t, items, 1)
	assert.Equal(t, "alma", items[0].Name)
	assert.Equal(t, 5, items[0].Quantity)
}
