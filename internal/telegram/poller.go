package telegram

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iurnickita/repairdesk/internal/model"
)

const (
	minBackoff = time.Second
	maxBackoff = 30 * time.Second
	// Ограничение на обработку одного сообщения, в том числе при остановке
	handleTimeout = 30 * time.Second
	// Ограничение на подтверждение смещения при остановке
	confirmTimeout = 5 * time.Second
)

type Router interface {
	Handle(ctx context.Context, event model.Event) (model.Reply, error)
}

type API interface {
	GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error)
	SendMessage(ctx context.Context, chatID int64, reply model.Reply) error
}

type Poller struct {
	api         API
	router      Router
	pollTimeout time.Duration
	zaplog      *zap.Logger
}

func NewPoller(api API, router Router, pollTimeout time.Duration, zaplog *zap.Logger) *Poller {
	return &Poller{
		api:         api,
		router:      router,
		pollTimeout: pollTimeout,
		zaplog:      zaplog,
	}
}

// Run получает обновления до отмены ctx. Ошибки сети не останавливают цикл.
// Полученная пачка обрабатывается целиком даже после отмены ctx, а перед
// выходом смещение подтверждается, чтобы Telegram не прислал пачку повторно.
func (p *Poller) Run(ctx context.Context) error {
	// offset - следующее ожидаемое обновление, acked - смещение,
	// уже переданное Telegram в успешном getUpdates
	var offset, acked int64
	backoff := minBackoff

	for {
		updates, err := p.api.GetUpdates(ctx, offset, p.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				p.confirm(ctx, offset, acked)
				return nil
			}
			p.zaplog.Warn("get updates failed",
				zap.Duration("retry_in", backoff),
				zap.Error(err))
			select {
			case <-ctx.Done():
				p.confirm(ctx, offset, acked)
				return nil
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, maxBackoff)
			continue
		}
		backoff = minBackoff
		acked = offset

		if len(updates) > 0 {
			offset = updates[len(updates)-1].UpdateID + 1
		}
		p.dispatch(ctx, updates)
		if ctx.Err() != nil {
			p.confirm(ctx, offset, acked)
			return nil
		}
	}
}

// confirm сообщает Telegram смещение обработанных обновлений без ожидания новых.
func (p *Poller) confirm(ctx context.Context, offset, acked int64) {
	if offset <= acked {
		return
	}
	confirmCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), confirmTimeout)
	defer cancel()
	if _, err := p.api.GetUpdates(confirmCtx, offset, 0); err != nil {
		p.zaplog.Warn("confirm updates failed",
			zap.Int64("offset", offset),
			zap.Error(err))
	}
}

// dispatch обрабатывает пользователей параллельно, сообщения одного
// пользователя - строго по порядку.
func (p *Poller) dispatch(ctx context.Context, updates []Update) {
	var order []int64
	byUser := make(map[int64][]*Message)
	for _, update := range updates {
		msg := update.Message
		if msg == nil || msg.From == nil || msg.From.IsBot || msg.Text == "" {
			continue
		}
		if _, ok := byUser[msg.From.ID]; !ok {
			order = append(order, msg.From.ID)
		}
		byUser[msg.From.ID] = append(byUser[msg.From.ID], msg)
	}

	var g errgroup.Group
	for _, userID := range order {
		messages := byUser[userID]
		g.Go(func() error {
			for _, msg := range messages {
				p.handle(ctx, msg)
			}
			return nil
		})
	}
	g.Wait()
}

func (p *Poller) handle(ctx context.Context, msg *Message) {
	// полученное сообщение доводится до ответа и при остановке
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), handleTimeout)
	defer cancel()

	reply, err := p.router.Handle(ctx, model.NewEvent(msg.From.ID, msg.Text))
	if err != nil {
		p.zaplog.Warn("event dropped",
			zap.Int64("user_id", msg.From.ID),
			zap.Int64("message_id", msg.MessageID),
			zap.Error(err))
		return
	}
	if err := p.api.SendMessage(ctx, msg.Chat.ID, reply); err != nil {
		p.zaplog.Error("send message failed",
			zap.Int64("chat_id", msg.Chat.ID),
			zap.Error(err))
	}
}
