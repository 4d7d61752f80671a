// Package router принимает события транспорта, определяет команду или
// ответ на шаг сценария и возвращает текст ответа с подсказками кнопок.
package router

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iurnickita/repairdesk/internal/conversation"
	"github.com/iurnickita/repairdesk/internal/model"
	"github.com/iurnickita/repairdesk/internal/service"
	"github.com/iurnickita/repairdesk/internal/session"
	"github.com/iurnickita/repairdesk/internal/texts"
)

type Service interface {
	ListActiveOrders(ctx context.Context, userID int64) ([]service.OrderView, error)
	ListCompletedOrders(ctx context.Context, userID int64) ([]service.OrderView, error)
}

type Command int

const (
	CommandNone Command = iota
	CommandStart
	CommandBeginOrder
	CommandListActive
	CommandListCompleted
	CommandBeginReport
	CommandUnknown
)

var commandNames = map[string]Command{
	"start":            CommandStart,
	"new_order":        CommandBeginOrder,
	"my_orders":        CommandListActive,
	"completed_orders": CommandListCompleted,
	"report":           CommandBeginReport,
}

type Router struct {
	sessions *session.Store
	machine  *conversation.Machine
	service  Service
	texts    *texts.Catalog
	zaplog   *zap.Logger
}

func NewRouter(sessions *session.Store, machine *conversation.Machine, service Service, catalog *texts.Catalog, zaplog *zap.Logger) *Router {
	return &Router{
		sessions: sessions,
		machine:  machine,
		service:  service,
		texts:    catalog,
		zaplog:   zaplog,
	}
}

// Handle обрабатывает событие целиком, включая запись в хранилище,
// прежде чем следующее событие того же пользователя будет принято.
func (r *Router) Handle(ctx context.Context, event model.Event) (model.Reply, error) {
	zaplog := r.zaplog.With(
		zap.String("event_id", uuid.NewString()),
		zap.Int64("user_id", event.SenderID))

	sess, err := r.sessions.Acquire(ctx, event.SenderID)
	if err != nil {
		zaplog.Warn("session is busy", zap.Error(err))
		return model.Reply{}, err
	}
	defer sess.Release()

	step := sess.State.Step
	reply := r.dispatch(ctx, sess, event)

	if sess.Expired {
		zaplog.Info("conversation expired")
		if reply.Text == "" {
			reply = model.Reply{Text: r.texts.Errors.Expired, SuggestedReplies: r.texts.MainMenu()}
		} else {
			reply.Text = r.texts.Errors.Expired + "\n\n" + reply.Text
		}
	}

	zaplog.Debug("event handled",
		zap.Bool("command", event.IsCommand),
		zap.String("step", step.String()),
		zap.String("next_step", sess.State.Step.String()))
	return reply, nil
}

func (r *Router) dispatch(ctx context.Context, sess *session.Session, event model.Event) model.Reply {
	command := r.Resolve(event)

	if command != CommandNone {
		// Сценарий покидается только завершением или отменой на выборе статуса
		if r.machine.Active(sess) {
			reply := r.machine.Prompt(sess.State.Step)
			reply.Text = r.texts.Errors.FlowActive + "\n\n" + reply.Text
			return reply
		}
		return r.command(ctx, sess, command)
	}

	if r.machine.Active(sess) {
		return r.machine.Handle(ctx, sess, event.Text)
	}
	// Текст вне сценария не требует ответа
	return model.Reply{}
}

// Resolve определяет команду по имени или по подписи кнопки меню.
func (r *Router) Resolve(event model.Event) Command {
	if event.IsCommand {
		if command, ok := commandNames[strings.ToLower(event.CommandName)]; ok {
			return command
		}
		return CommandUnknown
	}

	switch strings.TrimSpace(event.Text) {
	case r.texts.Menu.NewOrder:
		return CommandBeginOrder
	case r.texts.Menu.MyOrders:
		return CommandListActive
	case r.texts.Menu.CompletedOrders:
		return CommandListCompleted
	case r.texts.Menu.Report:
		return CommandBeginReport
	}
	return CommandNone
}

func (r *Router) command(ctx context.Context, sess *session.Session, command Command) model.Reply {
	switch command {
	case CommandStart:
		sess.State.Reset()
		return model.Reply{Text: r.texts.Prompts.Welcome, SuggestedReplies: r.texts.MainMenu()}
	case CommandBeginOrder:
		return r.machine.StartOrder(sess)
	case CommandBeginReport:
		return r.machine.StartReport(sess)
	case CommandListActive:
		views, err := r.service.ListActiveOrders(ctx, sess.UserID)
		if err != nil {
			return r.listFailed(sess, err)
		}
		return r.renderOrders(r.texts.Templates.OrdersHeader, r.texts.Templates.OrdersEmpty, views)
	case CommandListCompleted:
		views, err := r.service.ListCompletedOrders(ctx, sess.UserID)
		if err != nil {
			return r.listFailed(sess, err)
		}
		return r.renderOrders(r.texts.Templates.CompletedHeader, r.texts.Templates.CompletedEmpty, views)
	default:
		return model.Reply{Text: r.texts.Errors.UseMenu, SuggestedReplies: r.texts.MainMenu()}
	}
}

func (r *Router) listFailed(sess *session.Session, err error) model.Reply {
	r.zaplog.Error("list orders failed",
		zap.Int64("user_id", sess.UserID),
		zap.Error(err))
	return model.Reply{Text: r.texts.Errors.ListFailed, SuggestedReplies: r.texts.MainMenu()}
}

func (r *Router) renderOrders(header, empty string, views []service.OrderView) model.Reply {
	if len(views) == 0 {
		return model.Reply{Text: empty, SuggestedReplies: r.texts.MainMenu()}
	}

	var b strings.Builder
	b.WriteString(header)
	for _, view := range views {
		b.WriteString("\n\n")
		b.WriteString(r.renderOrder(view))
	}
	return model.Reply{Text: b.String(), SuggestedReplies: r.texts.MainMenu()}
}

func (r *Router) renderOrder(view service.OrderView) string {
	order := view.Order.Data
	item := fmt.Sprintf(r.texts.Templates.OrderItem,
		r.texts.StatusEmojiFor(order.Status),
		view.Order.ID,
		order.Address,
		order.Time,
		order.EquipmentType,
		order.Problem,
		r.texts.StatusName(order.Status))

	if view.Latest == nil {
		return item
	}
	report := view.Latest.Data
	switch report.Status {
	case model.OrderStatusLongRepair:
		item += "\n" + fmt.Sprintf(r.texts.Templates.OrderItemLongRepair,
			report.AgreedAmount.Decimal.String(),
			report.CompletionDate.String,
			report.CompletionTime.String,
			report.WhatToDo.String)
	case model.OrderStatusCompleted:
		item += "\n" + fmt.Sprintf(r.texts.Templates.OrderItemCompleted,
			report.TotalAmount.Decimal.String(),
			report.CostPrice.Decimal.String())
	}
	return item
}
