package models

import (
	"time"

	"gorm.io/gorm"
)

// Category is the top level of the three-level product taxonomy
type Category struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Name string `gorm:"type:varchar(255);uniqueIndex" json:"name"`

	SubCategories []SubCategory `gorm:"foreignKey:CategoryID" json:"sub_categories,omitempty"`
}

type SubCategory struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	CategoryID uint   `gorm:"index" json:"category_id"`
	Name       string `gorm:"type:varchar(255)" json:"name"`

	SubSubCategories []SubSubCategory `gorm:"foreignKey:SubCategoryID" json:"sub_sub_categories,omitempty"`
}

type SubSubCategory struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	SubCategoryID uint   `gorm:"index" json:"sub_category_id"`
	Name          string `gorm:"type:varchar(255)" json:"name"`
}

// Product is a shop item. Price is the unit price snapshotted onto
// order items at purchase time.
type Product struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Name        string `gorm:"type:varchar(255)" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Status      string `gorm:"type:varchar(50)" json:"status"`

	CategoryID       uint  `gorm:"index" json:"category_id"`
	SubCategoryID    *uint `json:"sub_category_id"`
	SubSubCategoryID *uint `json:"sub_sub_category_id"`

	Price              float64 `gorm:"type:decimal(15,2)" json:"price"`
	DiscountType       string  `gorm:"type:varchar(50)" json:"discount_type"`
	DiscountPercentage int     `json:"discount_percentage"`
	FreeDelivery       bool    `gorm:"default:false" json:"free_delivery"`

	Category Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
