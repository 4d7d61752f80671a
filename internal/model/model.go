package model

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Заявки

type Order struct {
	ID   int64
	Data OrderData
}
type OrderData struct {
	UserID        int64
	Address       string
	Time          string
	EquipmentType string
	Problem       string
	Status        OrderStatus
	CreatedAt     time.Time
}

// Статус заявки. Хранится в БД строкой.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusInProgress OrderStatus = "in_progress"
	OrderStatusLongRepair OrderStatus = "long_repair"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefused    OrderStatus = "refused"
)

var ErrUnknownStatus = errors.New("unknown order status")

var orderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusInProgress,
	OrderStatusLongRepair,
	OrderStatusCompleted,
	OrderStatusCancelled,
	OrderStatusRefused,
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	for _, status := range orderStatuses {
		if string(status) == s {
			return status, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

func (s OrderStatus) String() string {
	return string(s)
}

// Reportable - статусы, которые можно выставить отчетом.
func (s OrderStatus) Reportable() bool {
	switch s {
	case OrderStatusLongRepair, OrderStatusCompleted, OrderStatusCancelled, OrderStatusRefused:
		return true
	}
	return false
}

func (s OrderStatus) Value() (driver.Value, error) {
	if _, err := ParseOrderStatus(string(s)); err != nil {
		return nil, err
	}
	return string(s), nil
}

func (s *OrderStatus) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("%w: unsupported type %T", ErrUnknownStatus, src)
	}
	status, err := ParseOrderStatus(raw)
	if err != nil {
		return err
	}
	*s = status
	return nil
}

// Отчеты

type Report struct {
	ID   int64
	Data ReportData
}
type ReportData struct {
	OrderID   int64
	Status    OrderStatus
	CreatedAt time.Time

	// completed
	TotalAmount decimal.NullDecimal
	CostPrice   decimal.NullDecimal

	// long_repair
	AgreedAmount   decimal.NullDecimal
	CompletionDate sql.NullString
	CompletionTime sql.NullString
	WhatToDo       sql.NullString
}

var ErrInconsistentReport = errors.New("report fields do not match its status")

// Validate проверяет, что заполнены ровно те поля, которые соответствуют статусу.
func (r ReportData) Validate() error {
	if !r.Status.Reportable() {
		return fmt.Errorf("%w: status %q", ErrInconsistentReport, r.Status)
	}
	completed := r.TotalAmount.Valid || r.CostPrice.Valid
	longRepair := r.AgreedAmount.Valid || r.CompletionDate.Valid || r.CompletionTime.Valid || r.WhatToDo.Valid

	switch r.Status {
	case OrderStatusCompleted:
		if !r.TotalAmount.Valid || !r.CostPrice.Valid || longRepair {
			return fmt.Errorf("%w: status %q", ErrInconsistentReport, r.Status)
		}
	case OrderStatusLongRepair:
		if !r.AgreedAmount.Valid || !r.CompletionDate.Valid || !r.CompletionTime.Valid || !r.WhatToDo.Valid || completed {
			return fmt.Errorf("%w: status %q", ErrInconsistentReport, r.Status)
		}
	default:
		if completed || longRepair {
			return fmt.Errorf("%w: status %q", ErrInconsistentReport, r.Status)
		}
	}
	return nil
}
