package models

import (
	"time"

	"github.com/teambition/rrule-go"
	"gorm.io/gorm"
)

// Plan tier names
const (
	PlanNameBasic = "BASIC"
	PlanNamePro   = "PRO"
)

// Plan is a subscription tier purchasable by doctor or clinic accounts.
// BASIC is the free tier; buying it never touches the payment gateway.
type Plan struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	// UserType is the subscriber kind the plan applies to (DOCTOR or CLINIC)
	UserType OrderableType `gorm:"type:varchar(20);uniqueIndex:idx_plans_type_name,priority:1" json:"user_type"`
	Name     string        `gorm:"type:varchar(50);uniqueIndex:idx_plans_type_name,priority:2" json:"name"`

	Price    float64 `gorm:"type:decimal(15,2)" json:"price"`
	Currency string  `gorm:"type:varchar(10);default:'INR'" json:"currency"`

	StartDate time.Time `json:"start_date"`
	// RenewalInterval is an RFC 5545 RRULE string (e.g. FREQ=MONTHLY)
	RenewalInterval *string `gorm:"type:text" json:"renewal_interval"`
}

// NextRenewal calculates the next billing date for the plan
func (p Plan) NextRenewal() time.Time {
	if p.RenewalInterval == nil || *p.RenewalInterval == "" {
		return p.StartDate
	}

	rule, err := rrule.StrToRRule(*p.RenewalInterval)
	if err != nil {
		return p.StartDate
	}
	rule.DTStart(p.StartDate)
	next := rule.After(time.Now(), true)
	if next.IsZero() {
		return p.StartDate
	}
	return next
}
