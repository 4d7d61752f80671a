// Package conversation ведет пользователя по пошаговым сценариям
// создания заявки и отчета. Состояние берется из захваченной session.Session,
// данные сохраняются через Service только на последнем шаге сценария.
package conversation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/iurnickita/repairdesk/internal/model"
	"github.com/iurnickita/repairdesk/internal/service"
	"github.com/iurnickita/repairdesk/internal/session"
	"github.com/iurnickita/repairdesk/internal/texts"
)

type Service interface {
	CreateOrder(ctx context.Context, order model.Order) (int64, error)
	GetOrder(ctx context.Context, orderID int64, userID int64) (model.Order, error)
	CreateReport(ctx context.Context, report model.Report) (int64, error)
}

// Поля буфера ответов
const (
	fieldAddress        = "address"
	fieldTime           = "time"
	fieldEquipmentType  = "equipment_type"
	fieldProblem        = "problem"
	fieldOrderID        = "order_id"
	fieldStatus         = "status"
	fieldTotalAmount    = "total_amount"
	fieldCostPrice      = "cost_price"
	fieldAgreedAmount   = "agreed_amount"
	fieldCompletionDate = "completion_date"
	fieldCompletionTime = "completion_time"
	fieldWhatToDo       = "what_to_do"
)

type Machine struct {
	service Service
	texts   *texts.Catalog
	zaplog  *zap.Logger
}

func NewMachine(service Service, catalog *texts.Catalog, zaplog *zap.Logger) *Machine {
	return &Machine{
		service: service,
		texts:   catalog,
		zaplog:  zaplog,
	}
}

func (m *Machine) Active(sess *session.Session) bool {
	return sess.State.Step != session.StepIdle
}

func (m *Machine) StartOrder(sess *session.Session) model.Reply {
	sess.State.Begin(session.StepOrderAddress)
	return m.Prompt(sess.State.Step)
}

func (m *Machine) StartReport(sess *session.Session) model.Reply {
	sess.State.Begin(session.StepReportOrderID)
	return m.Prompt(sess.State.Step)
}

// Prompt - вопрос текущего шага вместе с подходящими кнопками.
func (m *Machine) Prompt(step session.Step) model.Reply {
	p := m.texts.Prompts
	switch step {
	case session.StepOrderAddress:
		return model.Reply{Text: p.OrderAddress}
	case session.StepOrderTime:
		return model.Reply{Text: p.OrderTime}
	case session.StepOrderEquipment:
		return model.Reply{Text: p.OrderEquipment}
	case session.StepOrderProblem:
		return model.Reply{Text: p.OrderProblem}
	case session.StepReportOrderID:
		return model.Reply{Text: p.ReportOrderID}
	case session.StepReportStatus:
		return model.Reply{Text: p.ReportStatus, SuggestedReplies: m.texts.StatusMenu()}
	case session.StepReportTotalAmount:
		return model.Reply{Text: p.ReportTotalAmount}
	case session.StepReportCostPrice:
		return model.Reply{Text: p.ReportCostPrice}
	case session.StepReportAgreedAmount:
		return model.Reply{Text: p.ReportAgreedAmount}
	case session.StepReportCompletionDate:
		return model.Reply{Text: p.ReportCompletionDate}
	case session.StepReportCompletionTime:
		return model.Reply{Text: p.ReportCompletionTime}
	case session.StepReportWhatToDo:
		return model.Reply{Text: p.ReportWhatToDo}
	default:
		return model.Reply{Text: m.texts.Errors.UseMenu, SuggestedReplies: m.texts.MainMenu()}
	}
}

// Handle применяет ответ пользователя к текущему шагу.
// Неверный ответ оставляет шаг и буфер без изменений.
func (m *Machine) Handle(ctx context.Context, sess *session.Session, text string) model.Reply {
	switch sess.State.Step {
	// Заявка
	case session.StepOrderAddress:
		return m.freeText(sess, text, fieldAddress, session.StepOrderTime)
	case session.StepOrderTime:
		return m.freeText(sess, text, fieldTime, session.StepOrderEquipment)
	case session.StepOrderEquipment:
		return m.freeText(sess, text, fieldEquipmentType, session.StepOrderProblem)
	case session.StepOrderProblem:
		return m.finishOrder(ctx, sess, text)

	// Отчет
	case session.StepReportOrderID:
		return m.reportOrderID(ctx, sess, text)
	case session.StepReportStatus:
		return m.reportStatus(ctx, sess, text)
	case session.StepReportTotalAmount:
		return m.amount(sess, text, fieldTotalAmount, session.StepReportCostPrice)
	case session.StepReportCostPrice:
		return m.finishCompleted(ctx, sess, text)
	case session.StepReportAgreedAmount:
		return m.amount(sess, text, fieldAgreedAmount, session.StepReportCompletionDate)
	case session.StepReportCompletionDate:
		return m.freeText(sess, text, fieldCompletionDate, session.StepReportCompletionTime)
	case session.StepReportCompletionTime:
		return m.freeText(sess, text, fieldCompletionTime, session.StepReportWhatToDo)
	case session.StepReportWhatToDo:
		return m.finishLongRepair(ctx, sess, text)

	default:
		return model.Reply{}
	}
}

func (m *Machine) retry(step session.Step, diagnostic string) model.Reply {
	reply := m.Prompt(step)
	reply.Text = diagnostic
	return reply
}

func (m *Machine) advance(sess *session.Session, next session.Step) model.Reply {
	sess.State.Step = next
	return m.Prompt(next)
}

func (m *Machine) freeText(sess *session.Session, text string, field string, next session.Step) model.Reply {
	if strings.TrimSpace(text) == "" {
		return m.retry(sess.State.Step, m.texts.Errors.Empty)
	}
	sess.State.Set(field, text)
	return m.advance(sess, next)
}

func (m *Machine) amount(sess *session.Session, text string, field string, next session.Step) model.Reply {
	value, ok := parseAmount(text)
	if !ok {
		return m.retry(sess.State.Step, m.texts.Errors.NotNumber)
	}
	sess.State.Set(field, value)
	return m.advance(sess, next)
}

// Сумма в рублях: до 12 цифр целой части и до 2 знаков после запятой.
// Экспоненты и знаки не принимаются.
var amountPattern = regexp.MustCompile(`^\d{1,12}(?:[.,]\d{1,2})?$`)

// parseAmount возвращает сумму в каноническом виде: "007,50" -> "7.50".
func parseAmount(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	if !amountPattern.MatchString(trimmed) {
		return "", false
	}
	d, err := decimal.NewFromString(strings.Replace(trimmed, ",", ".", 1))
	if err != nil {
		return "", false
	}
	return d.StringFixed(-d.Exponent()), true
}

func (m *Machine) finishOrder(ctx context.Context, sess *session.Session, problem string) model.Reply {
	if strings.TrimSpace(problem) == "" {
		return m.retry(sess.State.Step, m.texts.Errors.Empty)
	}

	order := model.Order{Data: model.OrderData{
		UserID:        sess.UserID,
		Address:       sess.State.Get(fieldAddress),
		Time:          sess.State.Get(fieldTime),
		EquipmentType: sess.State.Get(fieldEquipmentType),
		Problem:       problem,
	}}
	id, err := m.service.CreateOrder(ctx, order)
	if err != nil {
		return m.persistFailed(sess, err)
	}

	m.zaplog.Info("order created",
		zap.Int64("user_id", sess.UserID),
		zap.Int64("order_id", id))

	sess.State.Reset()
	return model.Reply{
		Text: fmt.Sprintf(m.texts.Templates.OrderCreated,
			id, order.Data.Address, order.Data.Time, order.Data.EquipmentType, order.Data.Problem),
		SuggestedReplies: m.texts.MainMenu(),
	}
}

func (m *Machine) reportOrderID(ctx context.Context, sess *session.Session, text string) model.Reply {
	orderID, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil || orderID <= 0 {
		return m.retry(sess.State.Step, m.texts.Errors.NotOrderID)
	}

	_, err = m.service.GetOrder(ctx, orderID, sess.UserID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return m.retry(sess.State.Step, m.texts.Errors.OrderNotFound)
		}
		return m.persistFailed(sess, err)
	}

	sess.State.Set(fieldOrderID, strconv.FormatInt(orderID, 10))
	return m.advance(sess, session.StepReportStatus)
}

func (m *Machine) reportStatus(ctx context.Context, sess *session.Session, text string) model.Reply {
	if m.texts.IsCancel(text) {
		sess.State.Reset()
		return model.Reply{Text: m.texts.Templates.Cancelled, SuggestedReplies: m.texts.MainMenu()}
	}

	status, ok := m.texts.ParseReportStatus(text)
	if !ok {
		return m.retry(sess.State.Step, m.texts.Errors.UnknownStatus)
	}

	switch status {
	case model.OrderStatusCompleted:
		sess.State.Set(fieldStatus, string(status))
		return m.advance(sess, session.StepReportTotalAmount)
	case model.OrderStatusLongRepair:
		sess.State.Set(fieldStatus, string(status))
		return m.advance(sess, session.StepReportAgreedAmount)
	}

	// Отмена и отказ закрываются сразу, без дополнительных полей
	orderID := m.orderID(sess)
	report := model.Report{Data: model.ReportData{
		OrderID: orderID,
		Status:  status,
	}}
	confirmation := fmt.Sprintf(m.texts.Templates.ReportClosed, orderID, m.texts.ReportStatusLabel(status))
	return m.finishReport(ctx, sess, report, confirmation)
}

func (m *Machine) finishCompleted(ctx context.Context, sess *session.Session, text string) model.Reply {
	costPrice, ok := parseAmount(text)
	if !ok {
		return m.retry(sess.State.Step, m.texts.Errors.NotNumber)
	}
	totalAmount := sess.State.Get(fieldTotalAmount)

	orderID := m.orderID(sess)
	report := model.Report{Data: model.ReportData{
		OrderID:     orderID,
		Status:      model.OrderStatusCompleted,
		TotalAmount: nullDecimal(totalAmount),
		CostPrice:   nullDecimal(costPrice),
	}}
	confirmation := fmt.Sprintf(m.texts.Templates.ReportCompleted, orderID, totalAmount, costPrice)
	return m.finishReport(ctx, sess, report, confirmation)
}

func (m *Machine) finishLongRepair(ctx context.Context, sess *session.Session, whatToDo string) model.Reply {
	if strings.TrimSpace(whatToDo) == "" {
		return m.retry(sess.State.Step, m.texts.Errors.Empty)
	}
	agreedAmount := sess.State.Get(fieldAgreedAmount)
	completionDate := sess.State.Get(fieldCompletionDate)
	completionTime := sess.State.Get(fieldCompletionTime)

	orderID := m.orderID(sess)
	report := model.Report{Data: model.ReportData{
		OrderID:        orderID,
		Status:         model.OrderStatusLongRepair,
		AgreedAmount:   nullDecimal(agreedAmount),
		CompletionDate: sql.NullString{String: completionDate, Valid: true},
		CompletionTime: sql.NullString{String: completionTime, Valid: true},
		WhatToDo:       sql.NullString{String: whatToDo, Valid: true},
	}}
	confirmation := fmt.Sprintf(m.texts.Templates.ReportLongRepair,
		orderID, agreedAmount, completionDate, completionTime, whatToDo)
	return m.finishReport(ctx, sess, report, confirmation)
}

func (m *Machine) finishReport(ctx context.Context, sess *session.Session, report model.Report, confirmation string) model.Reply {
	id, err := m.service.CreateReport(ctx, report)
	if err != nil {
		return m.persistFailed(sess, err)
	}

	m.zaplog.Info("report created",
		zap.Int64("user_id", sess.UserID),
		zap.Int64("order_id", report.Data.OrderID),
		zap.Int64("report_id", id),
		zap.String("status", report.Data.Status.String()))

	sess.State.Reset()
	return model.Reply{Text: confirmation, SuggestedReplies: m.texts.MainMenu()}
}

// persistFailed оставляет пользователя на том же шаге: повторный ответ повторит сохранение.
func (m *Machine) persistFailed(sess *session.Session, err error) model.Reply {
	m.zaplog.Error("storage call failed",
		zap.Int64("user_id", sess.UserID),
		zap.String("step", sess.State.Step.String()),
		zap.Error(err))
	return m.retry(sess.State.Step, m.texts.Errors.StoreFailed)
}

func (m *Machine) orderID(sess *session.Session) int64 {
	id, _ := strconv.ParseInt(sess.State.Get(fieldOrderID), 10, 64)
	return id
}

func nullDecimal(value string) decimal.NullDecimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}
