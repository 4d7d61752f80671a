package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iurnickita/repairdesk/internal/model"
	"github.com/iurnickita/repairdesk/internal/store/config"
)

//go:generate mockgen -destination=mock/store.go -package=mock github.com/iurnickita/repairdesk/internal/store Store

type Store interface {
	OrderCreate(ctx context.Context, order model.Order) (int64, error)
	OrderGet(ctx context.Context, orderID int64, userID int64) (model.Order, error)
	OrderListForUser(ctx context.Context, userID int64, excludeCompleted bool) ([]model.Order, error)
	OrderListCompleted(ctx context.Context, userID int64) ([]model.Order, error)
	OrderSetStatus(ctx context.Context, orderID int64, status model.OrderStatus) error
	ReportCreate(ctx context.Context, report model.Report) (int64, error)
	ReportListForOrder(ctx context.Context, orderID int64) ([]model.Report, error)
	Ping(ctx context.Context) error
	Close() error
}

var (
	ErrNoRows        = errors.New("no rows")
	ErrUnknownStatus = errors.New("unknown status in storage")
)

type store struct {
	database *sql.DB
	dialect  dialect
	now      func() time.Time
}

func NewStore(cfg config.Config) (Store, error) {
	d, err := dialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(d.sqlDriver, d.dsn(cfg.DBDsn))
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	d.setup(db)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if err := migrate(ctx, db, d); err != nil {
		db.Close()
		return nil, err
	}

	return &store{
		database: db,
		dialect:  d,
		now:      func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}, nil
}

func (store *store) Ping(ctx context.Context) error {
	return store.database.PingContext(ctx)
}

func (store *store) Close() error {
	return store.database.Close()
}

const orderColumns = "id, user_id, address, time, equipment_type, problem, status, created_at"

func (store *store) OrderCreate(ctx context.Context, order model.Order) (int64, error) {
	//Запись новой заявки
	row := store.database.QueryRowContext(ctx, store.dialect.rebind(
		"INSERT INTO orders (user_id, address, time, equipment_type, problem, status, created_at)"+
			" VALUES (?, ?, ?, ?, ?, ?, ?)"+
			" RETURNING id"),
		order.Data.UserID,
		order.Data.Address,
		order.Data.Time,
		order.Data.EquipmentType,
		order.Data.Problem,
		model.OrderStatusPending,
		store.now())

	var id int64
	if err := row.Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (store *store) OrderGet(ctx context.Context, orderID int64, userID int64) (model.Order, error) {
	// Чужая заявка неотличима от несуществующей
	row := store.database.QueryRowContext(ctx, store.dialect.rebind(
		"SELECT "+orderColumns+
			" FROM orders"+
			" WHERE id = ?"+
			"   AND user_id = ?"),
		orderID,
		userID)
	order, err := scanOrder(row)
	if err != nil {
		return model.Order{}, err
	}
	return order, nil
}

func (store *store) OrderListForUser(ctx context.Context, userID int64, excludeCompleted bool) ([]model.Order, error) {
	query := "SELECT " + orderColumns +
		" FROM orders" +
		" WHERE user_id = ?"
	args := []any{userID}
	if excludeCompleted {
		query += " AND status <> ?"
		args = append(args, model.OrderStatusCompleted)
	}
	query += " ORDER BY created_at DESC, id DESC"

	return store.queryOrders(ctx, query, args...)
}

func (store *store) OrderListCompleted(ctx context.Context, userID int64) ([]model.Order, error) {
	return store.queryOrders(ctx,
		"SELECT "+orderColumns+
			" FROM orders"+
			" WHERE user_id = ?"+
			"   AND status = ?"+
			" ORDER BY created_at DESC, id DESC",
		userID,
		model.OrderStatusCompleted)
}

func (store *store) OrderSetStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	return setStatus(ctx, store.database, store.dialect, orderID, status)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func setStatus(ctx context.Context, db execer, d dialect, orderID int64, status model.OrderStatus) error {
	//Обновление статуса заявки
	res, err := db.ExecContext(ctx, d.rebind(
		"UPDATE orders"+
			" SET status = ?"+
			" WHERE id = ?"),
		status,
		orderID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNoRows
	}
	return nil
}

// ReportCreate выставляет статус заявке и пишет отчет в одной транзакции.
func (store *store) ReportCreate(ctx context.Context, report model.Report) (int64, error) {
	tx, err := store.database.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	err = setStatus(ctx, tx, store.dialect, report.Data.OrderID, report.Data.Status)
	if err != nil {
		return 0, err
	}

	row := tx.QueryRowContext(ctx, store.dialect.rebind(
		"INSERT INTO reports (order_id, status, total_amount, cost_price,"+
			" agreed_amount, completion_date, completion_time, what_to_do, created_at)"+
			" VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)"+
			" RETURNING id"),
		report.Data.OrderID,
		report.Data.Status,
		report.Data.TotalAmount,
		report.Data.CostPrice,
		report.Data.AgreedAmount,
		report.Data.CompletionDate,
		report.Data.CompletionTime,
		report.Data.WhatToDo,
		store.now())
	var id int64
	if err := row.Scan(&id); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

const reportColumns = "id, order_id, status, total_amount, cost_price," +
	" agreed_amount, completion_date, completion_time, what_to_do, created_at"

func (store *store) ReportListForOrder(ctx context.Context, orderID int64) ([]model.Report, error) {
	rows, err := store.database.QueryContext(ctx, store.dialect.rebind(
		"SELECT "+reportColumns+
			" FROM reports"+
			" WHERE order_id = ?"+
			" ORDER BY created_at DESC, id DESC"),
		orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []model.Report
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return reports, nil
}

func (store *store) queryOrders(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := store.database.QueryContext(ctx, store.dialect.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(row scanner) (model.Order, error) {
	var order model.Order
	err := row.Scan(&order.ID,
		&order.Data.UserID,
		&order.Data.Address,
		&order.Data.Time,
		&order.Data.EquipmentType,
		&order.Data.Problem,
		&order.Data.Status,
		&order.Data.CreatedAt)
	if err != nil {
		return model.Order{}, mapScanErr(err)
	}
	order.Data.CreatedAt = order.Data.CreatedAt.UTC()
	return order, nil
}

func scanReport(row scanner) (model.Report, error) {
	var report model.Report
	err := row.Scan(&report.ID,
		&report.Data.OrderID,
		&report.Data.Status,
		&report.Data.TotalAmount,
		&report.Data.CostPrice,
		&report.Data.AgreedAmount,
		&report.Data.CompletionDate,
		&report.Data.CompletionTime,
		&report.Data.WhatToDo,
		&report.Data.CreatedAt)
	if err != nil {
		return model.Report{}, mapScanErr(err)
	}
	report.Data.CreatedAt = report.Data.CreatedAt.UTC()
	return report, nil
}

func mapScanErr(err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return ErrNoRows
	case errors.Is(err, model.ErrUnknownStatus):
		return fmt.Errorf("%w: %w", ErrUnknownStatus, err)
	default:
		return err
	}
}
