package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iurnickita/repairdesk/internal/model"
	"github.com/iurnickita/repairdesk/internal/service/config"
	"github.com/iurnickita/repairdesk/internal/store"
)

type Service interface {
	CreateOrder(ctx context.Context, order model.Order) (int64, error)
	GetOrder(ctx context.Context, orderID int64, userID int64) (model.Order, error)
	ListActiveOrders(ctx context.Context, userID int64) ([]OrderView, error)
	ListCompletedOrders(ctx context.Context, userID int64) ([]OrderView, error)
	CreateReport(ctx context.Context, report model.Report) (int64, error)
}

// OrderView - заявка вместе с последним отчетом (только для long_repair и completed).
type OrderView struct {
	Order  model.Order
	Latest *model.Report
}

var (
	ErrInsufficientData   = errors.New("insufficient data")
	ErrNotFound           = errors.New("not found")
	ErrInconsistentReport = model.ErrInconsistentReport
)

type service struct {
	cfg   config.Config
	store store.Store
}

func NewService(cfg config.Config, store store.Store) Service {
	return &service{
		cfg:   cfg,
		store: store,
	}
}

func (service *service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if service.cfg.StoreTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, service.cfg.StoreTimeout)
}

func (service *service) CreateOrder(ctx context.Context, order model.Order) (int64, error) {
	if order.Data.UserID == 0 {
		return 0, ErrInsufficientData
	}
	for _, field := range []string{order.Data.Address, order.Data.Time, order.Data.EquipmentType, order.Data.Problem} {
		if strings.TrimSpace(field) == "" {
			return 0, ErrInsufficientData
		}
	}

	ctx, cancel := service.withTimeout(ctx)
	defer cancel()

	id, err := service.store.OrderCreate(ctx, order)
	if err != nil {
		return 0, fmt.Errorf("create order: %w", err)
	}
	return id, nil
}

func (service *service) GetOrder(ctx context.Context, orderID int64, userID int64) (model.Order, error) {
	if orderID <= 0 || userID == 0 {
		return model.Order{}, ErrInsufficientData
	}

	ctx, cancel := service.withTimeout(ctx)
	defer cancel()

	order, err := service.store.OrderGet(ctx, orderID, userID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNoRows):
			return model.Order{}, ErrNotFound
		default:
			return model.Order{}, fmt.Errorf("get order %d: %w", orderID, err)
		}
	}
	return order, nil
}

func (service *service) ListActiveOrders(ctx context.Context, userID int64) ([]OrderView, error) {
	if userID == 0 {
		return nil, ErrInsufficientData
	}

	ctx, cancel := service.withTimeout(ctx)
	defer cancel()

	orders, err := service.store.OrderListForUser(ctx, userID, true)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return service.withLatestReports(ctx, orders)
}

func (service *service) ListCompletedOrders(ctx context.Context, userID int64) ([]OrderView, error) {
	if userID == 0 {
		return nil, ErrInsufficientData
	}

	ctx, cancel := service.withTimeout(ctx)
	defer cancel()

	orders, err := service.store.OrderListCompleted(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list completed orders: %w", err)
	}
	return service.withLatestReports(ctx, orders)
}

func (service *service) withLatestReports(ctx context.Context, orders []model.Order) ([]OrderView, error) {
	views := make([]OrderView, 0, len(orders))
	for _, order := range orders {
		view := OrderView{Order: order}
		switch order.Data.Status {
		case model.OrderStatusLongRepair, model.OrderStatusCompleted:
			reports, err := service.store.ReportListForOrder(ctx, order.ID)
			if err != nil {
				return nil, fmt.Errorf("reports for order %d: %w", order.ID, err)
			}
			if len(reports) > 0 {
				view.Latest = &reports[0]
			}
		}
		views = append(views, view)
	}
	return views, nil
}

// CreateReport пишет отчет и меняет статус заявки одной транзакцией хранилища.
func (service *service) CreateReport(ctx context.Context, report model.Report) (int64, error) {
	if report.Data.OrderID <= 0 {
		return 0, ErrInsufficientData
	}
	if err := report.Data.Validate(); err != nil {
		return 0, err
	}

	ctx, cancel := service.withTimeout(ctx)
	defer cancel()

	id, err := service.store.ReportCreate(ctx, report)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNoRows):
			return 0, ErrNotFound
		default:
			return 0, fmt.Errorf("create report for order %d: %w", report.Data.OrderID, err)
		}
	}
	return id, nil
}
