package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repositories data access collection
type Repositories struct {
	Customer *CustomerRepository
	Catalog  *CatalogRepository
	Product  *ProductRepository
	Cart     *CartRepository
	Order    *OrderRepository
}

// NewRepositories creates the repository collection
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Customer: NewCustomerRepository(db),
		Catalog:  NewCatalogRepository(db),
		Product:  NewProductRepository(db),
		Cart:     NewCartRepository(db),
		Order:    NewOrderRepository(db),
	}
}
