package models

import (
	"time"

	"gorm.io/gorm"
)

// Role names seeded at startup
const (
	RoleAdmin   = "admin"
	RolePatient = "patient"
	RoleDoctor  = "doctor"
	RoleClinic  = "clinic"
)

// Role represents an account role (patient, doctor, clinic, admin)
type Role struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Name string `gorm:"type:varchar(50);uniqueIndex" json:"name"`
}

// User represents an account in the system
type User struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Name     string `gorm:"type:varchar(255)" json:"name"`
	Email    string `gorm:"type:varchar(255);uniqueIndex" json:"email"`
	MobileNo string `gorm:"type:varchar(50);uniqueIndex" json:"mobile_no"`
	Password string `gorm:"type:varchar(255)" json:"-"`
	RoleID   uint   `gorm:"index" json:"role_id"`

	// 6-digit OTP for the forgot-password flow, cleared on use
	ResetToken string `gorm:"type:varchar(10)" json:"-"`

	// Relationships
	Role Role `gorm:"foreignKey:RoleID" json:"role,omitempty"`
}

// IsAdmin reports whether the user carries the admin role.
// Callers must have preloaded Role.
func (u User) IsAdmin() bool {
	return u.Role.Name == RoleAdmin
}
