package repository

import (
	"context"
	"errors"

	"github.com/bitfantasy/choco/internal/shop/entity"
	"gorm.io/gorm"
)

// CartRepository shopping carts
type CartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) *CartRepository {
	return &CartRepository{db: db}
}

// FindOpenByCustomer returns the customer's open cart with items
func (r *CartRepository) FindOpenByCustomer(ctx context.Context, customerID string) (*entity.Cart, error) {
	var cart entity.Cart
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Items.Product").
		Where("customer_id = ? AND status = ?", customerID, entity.CartStatusOpen).
		First(&cart).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &cart, nil
}

// Create creates a cart
func (r *CartRepository) Create(ctx context.Context, cart *entity.Cart) error {
	return r.db.WithContext(ctx).Create(cart).Error
}

// AddItem adds a cart line
func (r *CartRepository) AddItem(ctx context.Context, item *entity.CartItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// FindItem finds a cart line by id within a cart
func (r *CartRepository) FindItem(ctx context.Context, cartID, itemID string) (*entity.CartItem, error) {
	var item entity.CartItem
	err := r.db.WithContext(ctx).
		Where("id = ? AND cart_id = ?", itemID, cartID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// UpdateItemQuantity sets a cart line quantity
func (r *CartRepository) UpdateItemQuantity(ctx context.Context, itemID string, quantity int) error {
	return r.db.WithContext(ctx).Model(&entity.CartItem{}).
		Where("id = ?", itemID).
		Update("quantity", quantity).Error
}

// RemoveItem deletes a cart line
func (r *CartRepository) RemoveItem(ctx context.Context, itemID string) error {
	return r.db.WithContext(ctx).Delete(&entity.CartItem{}, "id = ?", itemID).Error
}
