package models

import (
	"time"

	"gorm.io/gorm"
)

// PermissionCategory groups related permissions for display
type PermissionCategory struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Name string `gorm:"type:varchar(255);uniqueIndex" json:"name"`

	Permissions []Permission `gorm:"foreignKey:PermissionCategoryID" json:"permissions,omitempty"`
}

type Permission struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Name                 string `gorm:"type:varchar(255);uniqueIndex" json:"name"`
	PermissionCategoryID uint   `gorm:"index" json:"permission_category_id"`
}

type Group struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Name string `gorm:"type:varchar(255);uniqueIndex" json:"name"`

	Permissions []Permission `gorm:"many2many:group_permissions;" json:"permissions,omitempty"`
	Users       []User       `gorm:"many2many:user_groups;" json:"users,omitempty"`
}

// UserPermission grants a single permission directly to a user,
// outside of any group.
type UserPermission struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	UserID       uint `gorm:"index:idx_user_permissions,unique,priority:1" json:"user_id"`
	PermissionID uint `gorm:"index:idx_user_permissions,unique,priority:2" json:"permission_id"`

	Permission Permission `gorm:"foreignKey:PermissionID" json:"permission,omitempty"`
}
