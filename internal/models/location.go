package models

import (
	"time"

	"gorm.io/gorm"
)

// Location is a saved address of a user
type Location struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	UserID    uint     `gorm:"index" json:"user_id"`
	Name      string   `gorm:"type:varchar(255)" json:"name"`
	Latitude  *float64 `gorm:"type:decimal(9,6)" json:"latitude"`
	Longitude *float64 `gorm:"type:decimal(9,6)" json:"longitude"`
}
