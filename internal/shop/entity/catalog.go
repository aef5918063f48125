package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// JSONB postgres jsonb column
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to scan JSONB: %v", value)
	}
	return json.Unmarshal(bytes, j)
}

// JSONBArray postgres jsonb array column
type JSONBArray []interface{}

func (j JSONBArray) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONBArray) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to scan JSONBArray: %v", value)
	}
	return json.Unmarshal(bytes, j)
}

// BaseMaterial chocolate base material catalog row (dark/milk/white)
type BaseMaterial struct {
	ID        string          `json:"id" gorm:"primaryKey;size:32"`
	Key       string          `json:"key" gorm:"size:64;not null;uniqueIndex"`
	Name      string          `json:"name" gorm:"size:128;not null"`
	Price     decimal.Decimal `json:"price" gorm:"type:numeric(12,2);not null"`
	Active    bool            `json:"active" gorm:"not null;default:true"`
	SortOrder int             `json:"sort_order" gorm:"default:0"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (BaseMaterial) TableName() string {
	return "base_materials"
}

// AddOn optional mix-in catalog row (nuts, berries, caramel ...)
type AddOn struct {
	ID        string          `json:"id" gorm:"primaryKey;size:32"`
	Key       string          `json:"key" gorm:"size:64;not null;uniqueIndex"`
	Name      string          `json:"name" gorm:"size:128;not null"`
	Price     decimal.Decimal `json:"price" gorm:"type:numeric(12,2);not null"`
	Active    bool            `json:"active" gorm:"not null;default:true"`
	SortOrder int             `json:"sort_order" gorm:"default:0"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (AddOn) TableName() string {
	return "add_ons"
}

// Shape mold shape catalog row
type Shape struct {
	ID        string          `json:"id" gorm:"primaryKey;size:32"`
	Key       string          `json:"key" gorm:"size:64;not null;uniqueIndex"`
	Name      string          `json:"name" gorm:"size:128;not null"`
	Price     decimal.Decimal `json:"price" gorm:"type:numeric(12,2);not null"`
	Active    bool            `json:"active" gorm:"not null;default:true"`
	SortOrder int             `json:"sort_order" gorm:"default:0"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (Shape) TableName() string {
	return "shapes"
}

// PackagingOption packaging catalog row
type PackagingOption struct {
	ID        string          `json:"id" gorm:"primaryKey;size:32"`
	Key       string          `json:"key" gorm:"size:64;not null;uniqueIndex"`
	Name      string          `json:"name" gorm:"size:128;not null"`
	Price     decimal.Decimal `json:"price" gorm:"type:numeric(12,2);not null"`
	Features  JSONBArray      `json:"features" gorm:"type:jsonb"`
	Active    bool            `json:"active" gorm:"not null;default:true"`
	SortOrder int             `json:"sort_order" gorm:"default:0"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (PackagingOption) TableName() string {
	return "packaging_options"
}

// PricingSettings single-row table with the personalization message prices.
// The row with ID "default" is the server's source of truth; the client-side
// fallback catalog carries the same values.
type PricingSettings struct {
	ID               string          `json:"id" gorm:"primaryKey;size:32"`
	MessageBasePrice decimal.Decimal `json:"message_base_price" gorm:"type:numeric(12,2);not null"`
	MessageCharPrice decimal.Decimal `json:"message_char_price" gorm:"type:numeric(12,2);not null"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func (PricingSettings) TableName() string {
	return "pricing_settings"
}
