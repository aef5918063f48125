package service

import (
	"context"
	"errors"

	"github.com/bitfantasy/choco/internal/shop/entity"
	"github.com/bitfantasy/choco/internal/shop/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartService the customer's open cart. UnitPrice is captured from the
// product at add time so the cart total does not drift while shopping.
type CartService struct {
	cartRepo    *repository.CartRepository
	productRepo *repository.ProductRepository
}

// NewCartService creates the cart service
func NewCartService(cartRepo *repository.CartRepository, productRepo *repository.ProductRepository) *CartService {
	return &CartService{cartRepo: cartRepo, productRepo: productRepo}
}

// CartView cart with its computed total
type CartView struct {
	*entity.Cart
	Total decimal.Decimal `json:"total"`
}

func newCartView(cart *entity.Cart) *CartView {
	total := decimal.Zero
	for i := range cart.Items {
		total = total.Add(cart.Items[i].Subtotal())
	}
	return &CartView{Cart: cart, Total: total}
}

// Get returns the customer's open cart, creating an empty one on first use
func (s *CartService) Get(ctx context.Context, customerID string) (*CartView, error) {
	cart, err := s.getOrCreate(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return newCartView(cart), nil
}

func (s *CartService) getOrCreate(ctx context.Context, customerID string) (*entity.Cart, error) {
	cart, err := s.cartRepo.FindOpenByCustomer(ctx, customerID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	cart = &entity.Cart{
		ID:         uuid.New().String()[:32],
		CustomerID: customerID,
		Status:     entity.CartStatusOpen,
	}
	if err := s.cartRepo.Create(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// AddItemRequest add-to-cart payload
type AddItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity"`
}

// AddItem adds a product line to the open cart. An existing line for the
// same product has its quantity bumped instead of duplicating the line.
func (s *CartService) AddItem(ctx context.Context, customerID string, req AddItemRequest) (*CartView, error) {
	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	product, err := s.productRepo.FindByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newValidationError("product_id", "no such product")
		}
		return nil, err
	}
	if product.Status != entity.ProductStatusActive {
		return nil, newValidationError("product_id", "product is not available")
	}

	cart, err := s.getOrCreate(ctx, customerID)
	if err != nil {
		return nil, err
	}

	for i := range cart.Items {
		if cart.Items[i].ProductID == product.ID {
			newQty := cart.Items[i].Quantity + quantity
			if err := s.cartRepo.UpdateItemQuantity(ctx, cart.Items[i].ID, newQty); err != nil {
				return nil, err
			}
			return s.Get(ctx, customerID)
		}
	}

	item := &entity.CartItem{
		ID:        uuid.New().String()[:32],
		CartID:    cart.ID,
		ProductID: product.ID,
		Quantity:  quantity,
		UnitPrice: product.Price,
	}
	if err := s.cartRepo.AddItem(ctx, item); err != nil {
		return nil, err
	}
	return s.Get(ctx, customerID)
}

// UpdateItem sets a cart line quantity; zero removes the line
func (s *CartService) UpdateItem(ctx context.Context, customerID, itemID string, quantity int) (*CartView, error) {
	if quantity < 0 {
		return nil, newValidationError("quantity", "quantity cannot be negative")
	}
	cart, err := s.cartRepo.FindOpenByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	item, err := s.cartRepo.FindItem(ctx, cart.ID, itemID)
	if err != nil {
		return nil, err
	}

	if quantity == 0 {
		if err := s.cartRepo.RemoveItem(ctx, item.ID); err != nil {
			return nil, err
		}
	} else {
		if err := s.cartRepo.UpdateItemQuantity(ctx, item.ID, quantity); err != nil {
			return nil, err
		}
	}
	return s.Get(ctx, customerID)
}

// RemoveItem deletes a cart line
func (s *CartService) RemoveItem(ctx context.Context, customerID, itemID string) (*CartView, error) {
	cart, err := s.cartRepo.FindOpenByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	item, err := s.cartRepo.FindItem(ctx, cart.ID, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.cartRepo.RemoveItem(ctx, item.ID); err != nil {
		return nil, err
	}
	return s.Get(ctx, customerID)
}
