package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iurnickita/repairdesk/internal/model"
	"github.com/iurnickita/repairdesk/internal/store/config"
)

func newTestStore(t *testing.T) *store {
	t.Helper()

	cfg := config.Config{
		Driver: DriverSQLite,
		DBDsn:  filepath.Join(t.TempDir(), "orders.db"),
	}
	s, err := NewStore(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	// детерминированные метки времени
	clock := time.Date(2024, 12, 1, 10, 0, 0, 0, time.UTC)
	st := s.(*store)
	st.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return st
}

func newOrder(userID int64, address string) model.Order {
	return model.Order{Data: model.OrderData{
		UserID:        userID,
		Address:       address,
		Time:          "14:00",
		EquipmentType: "washer",
		Problem:       "leaking",
	}}
}

func TestStoreOrder(t *testing.T) {
	const (
		customer = 100001
		stranger = 100002
	)
	ctx := context.Background()
	store := newTestStore(t)

	// Создание заявки
	id, err := store.OrderCreate(ctx, newOrder(customer, "Main St 5"))
	require.NoError(t, err)
	require.Positive(t, id)

	// Чтение заявки
	order, err := store.OrderGet(ctx, id, customer)
	require.NoError(t, err)
	require.Equal(t, id, order.ID)
	require.Equal(t, int64(customer), order.Data.UserID)
	require.Equal(t, "Main St 5", order.Data.Address)
	require.Equal(t, "14:00", order.Data.Time)
	require.Equal(t, "washer", order.Data.EquipmentType)
	require.Equal(t, "leaking", order.Data.Problem)
	require.Equal(t, model.OrderStatusPending, order.Data.Status)
	require.False(t, order.Data.CreatedAt.IsZero())

	// Чужая заявка не находится
	_, err = store.OrderGet(ctx, id, stranger)
	require.ErrorIs(t, err, ErrNoRows)
	_, err = store.OrderGet(ctx, id+100, customer)
	require.ErrorIs(t, err, ErrNoRows)

	// Обновление статуса
	require.NoError(t, store.OrderSetStatus(ctx, id, model.OrderStatusInProgress))
	require.NoError(t, store.OrderSetStatus(ctx, id, model.OrderStatusInProgress))
	order, err = store.OrderGet(ctx, id, customer)
	require.NoError(t, err)
	require.Equal(t, model.OrderStatusInProgress, order.Data.Status)

	require.ErrorIs(t, store.OrderSetStatus(ctx, id+100, model.OrderStatusCompleted), ErrNoRows)
}

func TestStoreOrderLists(t *testing.T) {
	const customer = 100001
	ctx := context.Background()
	store := newTestStore(t)

	first, err := store.OrderCreate(ctx, newOrder(customer, "first"))
	require.NoError(t, err)
	second, err := store.OrderCreate(ctx, newOrder(customer, "second"))
	require.NoError(t, err)
	third, err := store.OrderCreate(ctx, newOrder(customer, "third"))
	require.NoError(t, err)
	_, err = store.OrderCreate(ctx, newOrder(customer+1, "other"))
	require.NoError(t, err)

	require.NoError(t, store.OrderSetStatus(ctx, second, model.OrderStatusCompleted))

	all, err := store.OrderListForUser(ctx, customer, false)
	require.NoError(t, err)
	require.Equal(t, []int64{third, second, first}, orderIDs(all))

	active, err := store.OrderListForUser(ctx, customer, true)
	require.NoError(t, err)
	require.Equal(t, []int64{third, first}, orderIDs(active))
	for _, order := range active {
		require.NotEqual(t, model.OrderStatusCompleted, order.Data.Status)
	}

	completed, err := store.OrderListCompleted(ctx, customer)
	require.NoError(t, err)
	require.Equal(t, []int64{second}, orderIDs(completed))

	none, err := store.OrderListCompleted(ctx, customer+5)
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestStoreReport(t *testing.T) {
	const customer = 100001
	ctx := context.Background()
	store := newTestStore(t)

	orderID, err := store.OrderCreate(ctx, newOrder(customer, "Main St 5"))
	require.NoError(t, err)

	// Длительный ремонт
	longRepair := model.Report{Data: model.ReportData{
		OrderID:        orderID,
		Status:         model.OrderStatusLongRepair,
		AgreedAmount:   decimal.NewNullDecimal(decimal.RequireFromString("500")),
		CompletionDate: sql.NullString{String: "2024-12-31", Valid: true},
		CompletionTime: sql.NullString{String: "18:00", Valid: true},
		WhatToDo:       sql.NullString{String: "replace pump", Valid: true},
	}}
	firstID, err := store.ReportCreate(ctx, longRepair)
	require.NoError(t, err)

	order, err := store.OrderGet(ctx, orderID, customer)
	require.NoError(t, err)
	require.Equal(t, model.OrderStatusLongRepair, order.Data.Status)

	// Завершение
	completed := model.Report{Data: model.ReportData{
		OrderID:     orderID,
		Status:      model.OrderStatusCompleted,
		TotalAmount: decimal.NewNullDecimal(decimal.RequireFromString("1234.56")),
		CostPrice:   decimal.NewNullDecimal(decimal.RequireFromString("0.1")),
	}}
	secondID, err := store.ReportCreate(ctx, completed)
	require.NoError(t, err)
	require.Greater(t, secondID, firstID)

	reports, err := store.ReportListForOrder(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	require.Equal(t, secondID, reports[0].ID)
	require.Equal(t, firstID, reports[1].ID)

	latest := reports[0].Data
	require.Equal(t, model.OrderStatusCompleted, latest.Status)
	require.True(t, latest.TotalAmount.Valid)
	require.True(t, latest.TotalAmount.Decimal.Equal(decimal.RequireFromString("1234.56")))
	require.True(t, latest.CostPrice.Decimal.Equal(decimal.RequireFromString("0.1")))
	require.False(t, latest.AgreedAmount.Valid)
	require.False(t, latest.WhatToDo.Valid)

	earlier := reports[1].Data
	require.True(t, earlier.AgreedAmount.Decimal.Equal(decimal.RequireFromString("500")))
	require.Equal(t, "2024-12-31", earlier.CompletionDate.String)
	require.Equal(t, "18:00", earlier.CompletionTime.String)
	require.Equal(t, "replace pump", earlier.WhatToDo.String)
	require.False(t, earlier.TotalAmount.Valid)

	order, err = store.OrderGet(ctx, orderID, customer)
	require.NoError(t, err)
	require.Equal(t, model.OrderStatusCompleted, order.Data.Status)
}

func TestStoreReportMissingOrder(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.ReportCreate(ctx, model.Report{Data: model.ReportData{
		OrderID: 42,
		Status:  model.OrderStatusRefused,
	}})
	require.ErrorIs(t, err, ErrNoRows)

	reports, err := store.ReportListForOrder(ctx, 42)
	require.NoError(t, err)
	require.Empty(t, reports)
}

func TestStoreUnknownStatus(t *testing.T) {
	const customer = 100001
	ctx := context.Background()
	store := newTestStore(t)

	id, err := store.OrderCreate(ctx, newOrder(customer, "Main St 5"))
	require.NoError(t, err)

	// Значение, записанное в обход модели
	_, err = store.database.ExecContext(ctx, "UPDATE orders SET status = 'archived' WHERE id = ?", id)
	require.NoError(t, err)

	_, err = store.OrderGet(ctx, id, customer)
	require.ErrorIs(t, err, ErrUnknownStatus)

	// И наоборот - неизвестный статус не пишется
	err = store.OrderSetStatus(ctx, id, model.OrderStatus("archived"))
	require.Error(t, err)
}

func TestStoreMigrations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.db")
	cfg := config.Config{Driver: DriverSQLite, DBDsn: path}

	s, err := NewStore(cfg)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// Повторный запуск не применяет миграции второй раз
	s, err = NewStore(cfg)
	require.NoError(t, err)
	defer s.Close()

	var version, count int
	db := s.(*store).database
	require.NoError(t, db.QueryRow("SELECT MAX(version), COUNT(*) FROM schema_version").Scan(&version, &count))
	require.Equal(t, len(sqliteDialect.migrations), version)
	require.Equal(t, len(sqliteDialect.migrations), count)
}

func TestStoreUnsupportedDriver(t *testing.T) {
	_, err := NewStore(config.Config{Driver: "mysql"})
	require.Error(t, err)
}

func TestRebind(t *testing.T) {
	query := "SELECT id FROM orders WHERE id = ? AND user_id = ?"
	require.Equal(t, query, sqliteDialect.rebind(query))
	require.Equal(t, "SELECT id FROM orders WHERE id = $1 AND user_id = $2", postgresDialect.rebind(query))
}

func orderIDs(orders []model.Order) []int64 {
	ids := make([]int64, 0, len(orders))
	for _, order := range orders {
		ids = append(ids, order.ID)
	}
	return ids
}
