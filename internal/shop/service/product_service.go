package service

import (
	"context"

	"github.com/bitfantasy/choco/internal/shop/entity"
	"github.com/bitfantasy/choco/internal/shop/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductService ready-made product catalog
type ProductService struct {
	productRepo *repository.ProductRepository
}

// NewProductService creates the product service
func NewProductService(productRepo *repository.ProductRepository) *ProductService {
	return &ProductService{productRepo: productRepo}
}

// List lists products. Non-admin callers only see active products.
func (s *ProductService) List(ctx context.Context, page, pageSize int, filters map[string]string, includeInactive bool) ([]entity.Product, int64, error) {
	if !includeInactive {
		filters["status"] = entity.ProductStatusActive
	}
	return s.productRepo.FindAll(ctx, page, pageSize, filters)
}

// Get returns one product
func (s *ProductService) Get(ctx context.Context, id string) (*entity.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

// ProductRequest create/update payload for a product
type ProductRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	CategoryID  string          `json:"category_id"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	ImageURL    string          `json:"image_url"`
	Status      string          `json:"status"`
	SortOrder   int             `json:"sort_order"`
}

// Create creates a product (admin)
func (s *ProductService) Create(ctx context.Context, req ProductRequest) (*entity.Product, error) {
	if req.Price.IsNegative() {
		return nil, newValidationError("price", "price cannot be negative")
	}
	status := req.Status
	if status == "" {
		status = entity.ProductStatusActive
	}
	p := &entity.Product{
		ID:          uuid.New().String()[:32],
		Name:        req.Name,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		Status:      status,
		SortOrder:   req.SortOrder,
	}
	if err := s.productRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Update updates a product (admin)
func (s *ProductService) Update(ctx context.Context, id string, req ProductRequest) (*entity.Product, error) {
	if req.Price.IsNegative() {
		return nil, newValidationError("price", "price cannot be negative")
	}
	p, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Name = req.Name
	p.Description = req.Description
	p.CategoryID = req.CategoryID
	p.Price = req.Price
	p.ImageURL = req.ImageURL
	if req.Status != "" {
		p.Status = req.Status
	}
	p.SortOrder = req.SortOrder
	if err := s.productRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes a product (admin)
func (s *ProductService) Delete(ctx context.Context, id string) error {
	if _, err := s.productRepo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.productRepo.Delete(ctx, id)
}

// ListCategories lists product categories
func (s *ProductService) ListCategories(ctx context.Context) ([]entity.ProductCategory, error) {
	return s.productRepo.ListCategories(ctx)
}

// CategoryRequest create payload for a category
type CategoryRequest struct {
	Name      string `json:"name" binding:"required"`
	SortOrder int    `json:"sort_order"`
}

// CreateCategory creates a product category (admin)
func (s *ProductService) CreateCategory(ctx context.Context, req CategoryRequest) (*entity.ProductCategory, error) {
	c := &entity.ProductCategory{
		ID:        uuid.New().String()[:32],
		Name:      req.Name,
		SortOrder: req.SortOrder,
	}
	if err := s.productRepo.CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}
