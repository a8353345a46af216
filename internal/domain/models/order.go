package models

import (
	"strings"
	"time"
)

// OrderStatus is the fulfilment status of an order as reported by the POS backend.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
	OrderUnknown   OrderStatus = "unknown"
)

// PaymentStatus tells whether the customer has paid.
type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "paid"
	PaymentUnpaid  PaymentStatus = "unpaid"
	PaymentUnknown PaymentStatus = "unknown"
)

// Order is the canonical, read-only view of a POS order. Membership in a
// shift is computed from OperatorID and OrderedAt, never stored.
type Order struct {
	ID            string        `json:"id"`
	OperatorID    string        `json:"operator_id"`
	OrderedAt     time.Time     `json:"ordered_at"`
	Status        OrderStatus   `json:"status"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	PaymentMethod string        `json:"payment_method"`
	Total         Money         `json:"total"`
	Change        Money         `json:"change"`
}

// IsSettled reports whether the order counts toward revenue.
func (o Order) IsSettled() bool {
	return o.PaymentStatus == PaymentPaid && o.Status == OrderCompleted
}

// IsCash reports whether the order was paid in cash. Anything else,
// including an empty method, is non-cash.
func (o Order) IsCash() bool {
	return IsCashMethod(o.PaymentMethod)
}

// IsCashMethod classifies a raw payment method label.
func IsCashMethod(method string) bool {
	method = strings.TrimSpace(method)
	return strings.EqualFold(method, "cash") || strings.EqualFold(method, "tiền mặt")
}

// OrderQuery is the filter sent to the order source.
type OrderQuery struct {
	OperatorID string
	From       time.Time
	To         time.Time
}
