package models

import (
	"time"

	"gorm.io/gorm"
)

// ShippingAddress is written once per product order, only on successful
// payment verification.
type ShippingAddress struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	UserID  uint `gorm:"index" json:"user_id"`
	OrderID uint `gorm:"uniqueIndex" json:"order_id"`

	AddressLine1 string `gorm:"type:varchar(255)" json:"address_line1"`
	AddressLine2 string `gorm:"type:varchar(255)" json:"address_line2"`
	City         string `gorm:"type:varchar(100)" json:"city"`
	State        string `gorm:"type:varchar(100)" json:"state"`
	PostalCode   string `gorm:"type:varchar(20)" json:"postal_code"`
	Country      string `gorm:"type:varchar(100)" json:"country"`
	PhoneNumber  string `gorm:"type:varchar(50)" json:"phone_number"`
}
