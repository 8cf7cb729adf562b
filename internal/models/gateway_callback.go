package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// GatewayCallback is an append-only audit row recorded for every
// payment confirmation the service receives, successful or not.
type GatewayCallback struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	PayableID      uint        `gorm:"index" json:"payable_id"`
	PayableType    PayableType `gorm:"type:varchar(20)" json:"payable_type"`
	GatewayOrderID string      `gorm:"type:varchar(100);index" json:"gateway_order_id"`
	Outcome        string      `gorm:"type:varchar(50)" json:"outcome"`

	Metadata json.RawMessage `gorm:"type:jsonb" json:"metadata"`
}
