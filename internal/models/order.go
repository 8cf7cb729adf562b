package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderableType tells what an order buys: shop products, or a
// subscription plan for a doctor or clinic account.
type OrderableType string

const (
	OrderableTypeProduct OrderableType = "PRODUCT"
	OrderableTypeDoctor  OrderableType = "DOCTOR"
	OrderableTypeClinic  OrderableType = "CLINIC"
)

type OrderStatus string

const (
	OrderStatusPending OrderStatus = "PENDING"
	OrderStatusPaid    OrderStatus = "PAID"
	OrderStatusFailed  OrderStatus = "FAILED"
)

// Order is a purchase of products or of a subscription plan.
type Order struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	UserID        uint          `gorm:"index" json:"user_id"`
	OrderableType OrderableType `gorm:"type:varchar(20)" json:"orderable_type"`
	// OrderableID points at the purchased plan for DOCTOR/CLINIC orders
	// and is null for PRODUCT orders (the items carry the references).
	OrderableID *uint `json:"orderable_id"`

	Amount   float64     `gorm:"type:decimal(15,2)" json:"amount"`
	Currency string      `gorm:"type:varchar(10);default:'INR'" json:"currency"`
	Status   OrderStatus `gorm:"type:varchar(20);default:'PENDING'" json:"status"`

	// Relationships
	User  User        `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

// OrderItem is one product line of a PRODUCT order. PriceAtPurchase
// snapshots the unit price so later catalog edits cannot change what
// was charged.
type OrderItem struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	OrderID         uint    `gorm:"index" json:"order_id"`
	ProductID       uint    `gorm:"index" json:"product_id"`
	Quantity        int     `json:"quantity"`
	PriceAtPurchase float64 `gorm:"type:decimal(15,2)" json:"price_at_purchase"`

	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}
