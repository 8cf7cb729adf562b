package models

import (
	"time"

	"gorm.io/gorm"
)

// Doctor is the professional profile attached to a doctor account
type Doctor struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	UserID         uint    `gorm:"uniqueIndex" json:"user_id"`
	Specialization string  `gorm:"type:varchar(255)" json:"specialization"`
	Age            int     `json:"age"`
	Gender         string  `gorm:"type:varchar(20)" json:"gender"`
	About          string  `gorm:"type:text" json:"about"`
	AppointmentFee float64 `gorm:"type:decimal(15,2)" json:"appointment_fee"`
	ClinicID       *uint   `gorm:"index" json:"clinic_id"`

	// Relationships
	User        User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Timings     []Timing     `gorm:"foreignKey:UserID;references:UserID" json:"timings,omitempty"`
	WorkingDays []WorkingDay `gorm:"foreignKey:UserID;references:UserID" json:"working_days,omitempty"`
}

// Timing is one bookable time slot of a doctor's day
type Timing struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	UserID uint   `gorm:"index" json:"user_id"`
	Time   string `gorm:"type:varchar(20)" json:"time"`
	Slot   bool   `json:"slot"`
}

// WorkingDay marks whether a doctor takes appointments on a weekday
type WorkingDay struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	UserID uint   `gorm:"index" json:"user_id"`
	Day    string `gorm:"type:varchar(20)" json:"day"`
	Slot   bool   `json:"slot"`
}
