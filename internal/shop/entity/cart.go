package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart statuses
const (
	CartStatusOpen       = "open"
	CartStatusCheckedOut = "checked_out"
)

// Cart one open cart per customer
type Cart struct {
	ID         string    `json:"id" gorm:"primaryKey;size:32"`
	CustomerID string    `json:"customer_id" gorm:"size:32;not null;index"`
	Status     string    `json:"status" gorm:"size:16;not null;default:open"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Items []CartItem `json:"items,omitempty" gorm:"foreignKey:CartID"`
}

func (Cart) TableName() string {
	return "carts"
}

// CartItem cart line referencing a ready-made product. UnitPrice is the
// product price captured at add time so the cart total stays stable while
// the customer shops.
type CartItem struct {
	ID        string          `json:"id" gorm:"primaryKey;size:32"`
	CartID    string          `json:"cart_id" gorm:"size:32;not null;index"`
	ProductID string          `json:"product_id" gorm:"size:32;not null"`
	Quantity  int             `json:"quantity" gorm:"not null;default:1"`
	UnitPrice decimal.Decimal `json:"unit_price" gorm:"type:numeric(12,2);not null"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`

	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

// Subtotal line total
func (i *CartItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
