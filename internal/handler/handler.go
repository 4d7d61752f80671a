// Package handler - HTTP-вход для событий диалога. Используется для отладки
// и интеграций без Telegram: каждое событие - один POST, ответ - JSON.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/iurnickita/repairdesk/internal/handler/config"
	"github.com/iurnickita/repairdesk/internal/logger"
	"github.com/iurnickita/repairdesk/internal/model"
)

type Router interface {
	Handle(ctx context.Context, event model.Event) (model.Reply, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// Serve блокируется до отмены ctx, затем дожидается текущих запросов.
func Serve(ctx context.Context, cfg config.Config, router Router, pinger Pinger, zaplog *zap.Logger) error {
	h := newHandler(router, pinger, zaplog)

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: h.newRouter(),
	}

	errCh := make(chan error, 1)
	go func() {
		zaplog.Info("http server started", zap.String("addr", cfg.ServerAddr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type handler struct {
	router Router
	pinger Pinger
	zaplog *zap.Logger
}

func newHandler(router Router, pinger Pinger, zaplog *zap.Logger) *handler {
	return &handler{
		router: router,
		pinger: pinger,
		zaplog: zaplog,
	}
}

func (h *handler) newRouter() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/events", logger.RequestLogMdlw(h.PostEvent, h.zaplog))
	mux.HandleFunc("GET /api/ping", h.GetPing)

	return mux
}

type PostEventJSONRequest struct {
	SenderID int64  `json:"sender_id"`
	Text     string `json:"text"`
}

func (h *handler) PostEvent(w http.ResponseWriter, r *http.Request) {
	var request PostEventJSONRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if request.SenderID <= 0 {
		http.Error(w, "sender_id is required", http.StatusBadRequest)
		return
	}

	reply, err := h.router.Handle(r.Context(), model.NewEvent(request.SenderID, request.Text))
	if err != nil {
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	if reply.Text == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	responseJSON, err := json.Marshal(reply)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(responseJSON)
}

func (h *handler) GetPing(w http.ResponseWriter, r *http.Request) {
	if err := h.pinger.Ping(r.Context()); err != nil {
		h.zaplog.Warn("store ping failed", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}
