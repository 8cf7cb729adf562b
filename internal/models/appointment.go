package models

import (
	"time"

	"gorm.io/gorm"
)

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
)

// Appointment is a booking between a patient and a doctor at a clinic.
// It moves from "pending" to "scheduled" only through payment
// verification; cancellation and completion are ordinary business
// updates and never touch the ledger.
type Appointment struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	PatientID uint `gorm:"index" json:"patient_id"`
	DoctorID  uint `gorm:"index" json:"doctor_id"`
	ClinicID  uint `gorm:"index" json:"clinic_id"`

	Date string `gorm:"type:varchar(20)" json:"date"` // YYYY-MM-DD
	Time string `gorm:"type:varchar(20)" json:"time"` // HH:MM

	Status AppointmentStatus `gorm:"type:varchar(20);default:'pending'" json:"status"`

	Name             string `gorm:"type:varchar(255)" json:"name"`
	Location         string `gorm:"type:varchar(255)" json:"location"`
	ConsultationType string `gorm:"type:varchar(100)" json:"consultation_type"`
	HealthConcern    string `gorm:"type:varchar(255)" json:"health_concern"`

	// Fee is fixed at booking time by business rule and is immutable
	// once the ledger entry exists.
	Fee float64 `gorm:"type:decimal(15,2)" json:"fee"`

	// Relationships
	Patient User `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Doctor  User `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
	Clinic  User `gorm:"foreignKey:ClinicID" json:"clinic,omitempty"`
}
