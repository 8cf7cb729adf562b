package models

import (
	"time"

	"gorm.io/gorm"
)

// Clinic is the profile attached to a clinic account
type Clinic struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	UserID   uint   `gorm:"uniqueIndex" json:"user_id"`
	Overview string `gorm:"type:text" json:"overview"`
	City     string `gorm:"type:varchar(100)" json:"city"`
	State    string `gorm:"type:varchar(100)" json:"state"`

	// Relationships
	User    User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Doctors []Doctor `gorm:"foreignKey:ClinicID;references:UserID" json:"doctors,omitempty"`
}
