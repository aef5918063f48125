package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product statuses
const (
	ProductStatusActive   = "active"
	ProductStatusInactive = "inactive"
)

// ProductCategory ready-made product category
type ProductCategory struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	Name      string    `json:"name" gorm:"size:128;not null;uniqueIndex"`
	SortOrder int       `json:"sort_order" gorm:"default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ProductCategory) TableName() string {
	return "product_categories"
}

// Product ready-made (non-custom) storefront product
type Product struct {
	ID          string          `json:"id" gorm:"primaryKey;size:32"`
	CategoryID  string          `json:"category_id" gorm:"size:32;not null;index"`
	Name        string          `json:"name" gorm:"size:256;not null"`
	Description string          `json:"description,omitempty" gorm:"type:text"`
	Price       decimal.Decimal `json:"price" gorm:"type:numeric(12,2);not null"`
	ImageURL    string          `json:"image_url,omitempty" gorm:"size:512"`
	Status      string          `json:"status" gorm:"size:16;not null;default:active"`
	SortOrder   int             `json:"sort_order" gorm:"default:0"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	Category *ProductCategory `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

func (Product) TableName() string {
	return "products"
}
