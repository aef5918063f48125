package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bitfantasy/choco/internal/shop/entity"
	"gorm.io/gorm"
)

// OrderRepository orders and their dependent rows
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// CreateCustomOrder persists an order, its order item, the custom
// configuration and the add-on association rows as one atomic unit. Any
// failure rolls the whole set back.
func (r *OrderRepository) CreateCustomOrder(ctx context.Context, order *entity.Order, item *entity.OrderItem, config *entity.CustomConfiguration, addOns []entity.CustomConfigAddOn) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		item.OrderID = order.ID
		if err := tx.Create(item).Error; err != nil {
			return err
		}
		config.OrderItemID = item.ID
		if err := tx.Create(config).Error; err != nil {
			return err
		}
		for i := range addOns {
			addOns[i].ConfigID = config.ID
		}
		if len(addOns) > 0 {
			if err := tx.Create(&addOns).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// CreateFromCart checks a cart out into an order atomically: order + order
// items are created and the cart is marked checked out in one transaction.
func (r *OrderRepository) CreateFromCart(ctx context.Context, order *entity.Order, items []entity.OrderItem, cartID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		return tx.Model(&entity.Cart{}).
			Where("id = ?", cartID).
			Update("status", entity.CartStatusCheckedOut).Error
	})
}

// FindByID finds an order with items and custom configurations
func (r *OrderRepository) FindByID(ctx context.Context, id string) (*entity.Order, error) {
	var order entity.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.CustomConfig").
		Preload("Items.CustomConfig.BaseMaterial").
		Preload("Items.CustomConfig.Shape").
		Preload("Items.CustomConfig.Packaging").
		Preload("Items.CustomConfig.AddOns").
		Preload("Items.CustomConfig.AddOns.AddOn").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByIdempotencyKey returns the order previously created with the key
func (r *OrderRepository) FindByIdempotencyKey(ctx context.Context, customerID, key string) (*entity.Order, error) {
	var order entity.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.CustomConfig").
		Where("customer_id = ? AND idempotency_key = ?", customerID, key).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindAll lists orders with pagination and filters
func (r *OrderRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Order, int64, error) {
	var orders []entity.Order
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Order{})

	if customerID := filters["customer_id"]; customerID != "" {
		query = query.Where("customer_id = ?", customerID)
	}
	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if from := filters["from"]; from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			query = query.Where("created_at >= ?", t)
		}
	}
	if to := filters["to"]; to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			query = query.Where("created_at < ?", t.AddDate(0, 0, 1))
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("Customer").
		Preload("Items").
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&orders).Error

	return orders, total, err
}

// UpdateStatus sets an order status
func (r *OrderRepository) UpdateStatus(ctx context.Context, id, status string) error {
	res := r.db.WithContext(ctx).Model(&entity.Order{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
