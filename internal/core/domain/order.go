package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethodKekspay identifies orders checked out through this gateway.
const PaymentMethodKekspay = "erste-kekspay-woocommerce"

// ErrOrderConflict is returned by the order store when a save loses an
// optimistic concurrency race; callers reload and reapply.
var ErrOrderConflict = errors.New("order was modified concurrently")

// OrderStatus is the shop-side lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusOnHold     OrderStatus = "on-hold"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusFailed     OrderStatus = "failed"
	OrderStatusRefunded   OrderStatus = "refunded"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// ParseOrderStatus returns the status for s and whether it is known.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch st := OrderStatus(s); st {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusOnHold, OrderStatusCompleted,
		OrderStatusFailed, OrderStatusRefunded, OrderStatusCancelled:
		return st, true
	}
	return "", false
}

// PaymentStatus is the value stored under MetaPaymentStatus.
type PaymentStatus string

const (
	PaymentStatusPending           PaymentStatus = "pending"
	PaymentStatusSuccess           PaymentStatus = "success"
	PaymentStatusFailed            PaymentStatus = "failed"
	PaymentStatusRefunded          PaymentStatus = "refunded"
	PaymentStatusRefundedPartially PaymentStatus = "refunded_partially"
)

// Order metadata keys written by the gateway.
const (
	MetaPaymentStatus = "kekspay_status"
	MetaProviderID    = "kekspay_id"
	MetaTestMode      = "kekspay_test_mode"
)

// OrderNote is one entry of an order's append-only note log.
type OrderNote struct {
	ID        int64     `json:"id"`
	OrderID   int64     `json:"order_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Order is the shop's order record. The gateway only reads it, mutates
// metadata, appends notes and transitions status; it never deletes orders.
type Order struct {
	ID            int64             `json:"id"`
	OrderKey      string            `json:"-"`
	Total         decimal.Decimal   `json:"total"`
	Refunded      decimal.Decimal   `json:"refunded"`
	Currency      string            `json:"currency"`
	PaymentMethod string            `json:"payment_method"`
	Status        OrderStatus       `json:"status"`
	Meta          map[string]string `json:"meta"`
	Notes         []OrderNote       `json:"notes,omitempty"`
	ReturnURL     string            `json:"return_url"`
	CancelURL     string            `json:"cancel_url"`
	Version       int               `json:"-"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`

	pendingNotes []string
}

// GetMeta returns the metadata value for key, or "" when unset.
func (o *Order) GetMeta(key string) string {
	if o.Meta == nil {
		return ""
	}
	return o.Meta[key]
}

// SetMeta sets a metadata key, replacing any previous value.
func (o *Order) SetMeta(key, value string) {
	if o.Meta == nil {
		o.Meta = make(map[string]string)
	}
	o.Meta[key] = value
}

// PaymentStatus returns the gateway payment status recorded on the order.
func (o *Order) PaymentStatus() PaymentStatus {
	return PaymentStatus(o.GetMeta(MetaPaymentStatus))
}

// AddNote queues a note; it is persisted by the next save.
func (o *Order) AddNote(content string) {
	o.pendingNotes = append(o.pendingNotes, content)
}

// PendingNotes returns notes queued since the order was loaded.
func (o *Order) PendingNotes() []string {
	return o.pendingNotes
}

// ClearPendingNotes is called by the store after notes were written.
func (o *Order) ClearPendingNotes() {
	o.pendingNotes = nil
}

// SetStatus transitions the order and records note alongside, as the shop
// does for status changes with a reason.
func (o *Order) SetStatus(status OrderStatus, note string) {
	o.Status = status
	if note != "" {
		o.AddNote(note)
	}
}

// RemainingRefundAmount is the part of the total not yet refunded.
func (o *Order) RemainingRefundAmount() decimal.Decimal {
	rem := o.Total.Sub(o.Refunded)
	if rem.IsNegative() {
		return decimal.Zero
	}
	return rem
}

// IsTerminal reports whether the order reached a state a payment callback
// must not move it out of.
func (o *Order) IsTerminal() bool {
	switch o.Status {
	case OrderStatusCompleted, OrderStatusRefunded, OrderStatusCancelled:
		return true
	}
	return false
}

// PaidWithKekspay reports whether the order was placed with this gateway.
func (o *Order) PaidWithKekspay() bool {
	return o.PaymentMethod == PaymentMethodKekspay
}
