package models

import (
	"time"

	"gorm.io/gorm"
)

// PayableType discriminates what a ledger entry points at. It is not a
// database-level foreign key: the id may reference the appointments table
// or the orders table depending on the tag.
type PayableType string

const (
	PayableTypeAppointment  PayableType = "APPOINTMENT"
	PayableTypeProductOrder PayableType = "PRODUCT_ORDER"
	PayableTypePlanOrder    PayableType = "PLAN_ORDER"
)

type PaymentMethod string

const (
	PaymentMethodGateway PaymentMethod = "GATEWAY"
	PaymentMethodCash    PaymentMethod = "CASH"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusFailed   PaymentStatus = "FAILED"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

// CanTransitionTo encodes the monotonic ledger state machine:
// PENDING -> {PAID, FAILED}, PAID -> {REFUNDED}. FAILED and REFUNDED
// are terminal.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	switch s {
	case PaymentStatusPending:
		return next == PaymentStatusPaid || next == PaymentStatusFailed
	case PaymentStatusPaid:
		return next == PaymentStatusRefunded
	default:
		return false
	}
}

// Terminal reports whether no further transition is possible except refund.
func (s PaymentStatus) Terminal() bool {
	return s != PaymentStatusPending
}

// Payment is the ledger entry: the authoritative record of one payment
// attempt against a payable. Amount and currency are fixed at creation
// and never mutated afterwards.
type Payment struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	UserID        uint          `gorm:"index" json:"user_id"`
	PayableID     uint          `gorm:"index:idx_payments_payable,priority:1" json:"payable_id"`
	PayableType   PayableType   `gorm:"type:varchar(20);index:idx_payments_payable,priority:2" json:"payable_type"`
	PaymentMethod PaymentMethod `gorm:"type:varchar(20);default:'GATEWAY'" json:"payment_method"`

	GatewayOrderID   *string `gorm:"type:varchar(100);index" json:"gateway_order_id"`
	GatewayPaymentID *string `gorm:"type:varchar(100)" json:"gateway_payment_id"`
	GatewaySignature *string `gorm:"type:varchar(255)" json:"gateway_signature"`

	Amount   float64       `gorm:"type:decimal(15,2)" json:"amount"`
	Currency string        `gorm:"type:varchar(10);default:'INR'" json:"currency"`
	Status   PaymentStatus `gorm:"type:varchar(20);default:'PENDING'" json:"status"`
}
