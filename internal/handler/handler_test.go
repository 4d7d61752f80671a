package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iurnickita/repairdesk/internal/handler/config"
	"github.com/iurnickita/repairdesk/internal/model"
)

type routerFunc func(ctx context.Context, event model.Event) (model.Reply, error)

func (f routerFunc) Handle(ctx context.Context, event model.Event) (model.Reply, error) {
	return f(ctx, event)
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

func okPinger(context.Context) error { return nil }

func TestPostEvent(t *testing.T) {
	var got model.Event
	router := routerFunc(func(_ context.Context, event model.Event) (model.Reply, error) {
		got = event
		return model.Reply{Text: "Введите адрес:"}, nil
	})
	srv := httptest.NewServer(newHandler(router, pingerFunc(okPinger), zap.NewNop()).newRouter())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/events", "application/json",
		strings.NewReader(`{"sender_id": 42, "text": "/new_order@RepairBot"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.Equal(t, model.Event{SenderID: 42, Text: "/new_order@RepairBot", IsCommand: true, CommandName: "new_order"}, got)

	var reply model.Reply
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&reply))
	require.Equal(t, "Введите адрес:", reply.Text)
	require.Nil(t, reply.SuggestedReplies)
}

func TestPostEventErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		reply  model.Reply
		err    error
		status int
	}{
		{name: "bad json", body: `{"sender_id":`, status: http.StatusBadRequest},
		{name: "no sender", body: `{"text": "hi"}`, status: http.StatusBadRequest},
		{name: "no reply", body: `{"sender_id": 1, "text": "hi"}`, status: http.StatusNoContent},
		{name: "busy", body: `{"sender_id": 1, "text": "hi"}`, err: context.DeadlineExceeded, status: http.StatusServiceUnavailable},
		{name: "internal", body: `{"sender_id": 1, "text": "hi"}`, err: errors.New("boom"), status: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := routerFunc(func(context.Context, model.Event) (model.Reply, error) {
				return tt.reply, tt.err
			})
			h := newHandler(router, pingerFunc(okPinger), zap.NewNop())

			w := httptest.NewRecorder()
			h.newRouter().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/events", strings.NewReader(tt.body)))
			require.Equal(t, tt.status, w.Code)
		})
	}
}

func TestGetPing(t *testing.T) {
	h := newHandler(routerFunc(nil), pingerFunc(okPinger), zap.NewNop())
	w := httptest.NewRecorder()
	h.newRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	require.Equal(t, http.StatusOK, w.Code)

	h = newHandler(routerFunc(nil), pingerFunc(func(context.Context) error { return errors.New("down") }), zap.NewNop())
	w = httptest.NewRecorder()
	h.newRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestServeShutdown(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	listener.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, config.Config{ServerAddr: addr, ShutdownTimeout: time.Second},
			routerFunc(nil), pingerFunc(okPinger), zap.NewNop())
	}()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/api/ping")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}
