package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// Order item types
const (
	OrderItemTypeProduct = "product"
	OrderItemTypeCustom  = "custom"
)

// Order a placed order. Total is always computed server-side.
// IdempotencyKey is the optional client-supplied retry key; the unique index
// on (customer_id, idempotency_key) makes a replayed submission return the
// original order instead of creating a duplicate.
type Order struct {
	ID             string          `json:"id" gorm:"primaryKey;size:32"`
	CustomerID     string          `json:"customer_id" gorm:"size:32;not null;index;uniqueIndex:ux_orders_customer_idem"`
	Status         string          `json:"status" gorm:"size:16;not null;default:pending"`
	Total          decimal.Decimal `json:"total" gorm:"type:numeric(12,2);not null"`
	IdempotencyKey *string         `json:"idempotency_key,omitempty" gorm:"size:64;uniqueIndex:ux_orders_customer_idem"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`

	Customer *Customer   `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	Items    []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem order line. ItemType "product" lines reference a ready-made
// product; "custom" lines carry a CustomConfiguration.
type OrderItem struct {
	ID        string          `json:"id" gorm:"primaryKey;size:32"`
	OrderID   string          `json:"order_id" gorm:"size:32;not null;index"`
	ItemType  string          `json:"item_type" gorm:"size:16;not null;default:product"`
	ProductID *string         `json:"product_id,omitempty" gorm:"size:32"`
	Name      string          `json:"name" gorm:"size:256;not null"`
	Quantity  int             `json:"quantity" gorm:"not null;default:1"`
	UnitPrice decimal.Decimal `json:"unit_price" gorm:"type:numeric(12,2);not null"`
	CreatedAt time.Time       `json:"created_at"`

	Product      *Product             `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	CustomConfig *CustomConfiguration `json:"custom_config,omitempty" gorm:"foreignKey:OrderItemID"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

// CustomConfiguration persisted snapshot of a configured custom chocolate.
// Component prices are captured at submit time so later catalog edits do not
// rewrite order history.
type CustomConfiguration struct {
	ID             string          `json:"id" gorm:"primaryKey;size:32"`
	OrderItemID    string          `json:"order_item_id" gorm:"size:32;not null;uniqueIndex"`
	BaseMaterialID string          `json:"base_material_id" gorm:"size:32;not null"`
	ShapeID        string          `json:"shape_id" gorm:"size:32;not null"`
	PackagingID    string          `json:"packaging_id" gorm:"size:32;not null"`
	Message        string          `json:"message,omitempty" gorm:"size:100"`
	MessageStyle   string          `json:"message_style,omitempty" gorm:"size:32"`
	MessageFee     decimal.Decimal `json:"message_fee" gorm:"type:numeric(12,2);not null;default:0"`
	CreatedAt      time.Time       `json:"created_at"`

	BaseMaterial *BaseMaterial       `json:"base_material,omitempty" gorm:"foreignKey:BaseMaterialID"`
	Shape        *Shape              `json:"shape,omitempty" gorm:"foreignKey:ShapeID"`
	Packaging    *PackagingOption    `json:"packaging,omitempty" gorm:"foreignKey:PackagingID"`
	AddOns       []CustomConfigAddOn `json:"add_ons,omitempty" gorm:"foreignKey:ConfigID"`
}

func (CustomConfiguration) TableName() string {
	return "custom_configurations"
}

// CustomConfigAddOn add-on association row for a custom configuration
type CustomConfigAddOn struct {
	ID        string          `json:"id" gorm:"primaryKey;size:32"`
	ConfigID  string          `json:"config_id" gorm:"size:32;not null;index"`
	AddOnID   string          `json:"add_on_id" gorm:"size:32;not null"`
	Price     decimal.Decimal `json:"price" gorm:"type:numeric(12,2);not null"`
	CreatedAt time.Time       `json:"created_at"`

	AddOn *AddOn `json:"add_on,omitempty" gorm:"foreignKey:AddOnID"`
}

func (CustomConfigAddOn) TableName() string {
	return "custom_config_add_ons"
}
