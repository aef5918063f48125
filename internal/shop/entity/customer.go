package entity

import "time"

// Customer roles
const (
	RoleCustomer  = "customer"
	RoleShopAdmin = "shop_admin"
)

// Customer statuses
const (
	CustomerStatusActive   = "active"
	CustomerStatusDisabled = "disabled"
)

// Customer storefront account (customers and admins share this table,
// distinguished by Role)
type Customer struct {
	ID           string     `json:"id" gorm:"primaryKey;size:32"`
	Email        string     `json:"email" gorm:"size:256;not null;uniqueIndex"`
	PasswordHash string     `json:"-" gorm:"size:128;not null"`
	Name         string     `json:"name" gorm:"size:128;not null"`
	Phone        string     `json:"phone,omitempty" gorm:"size:32"`
	Role         string     `json:"role" gorm:"size:32;not null;default:customer"`
	Status       string     `json:"status" gorm:"size:16;not null;default:active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (Customer) TableName() string {
	return "customers"
}
