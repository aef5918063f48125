package service

import (
	"github.com/bitfantasy/choco/internal/config"
	"github.com/bitfantasy/choco/internal/shop/repository"
	"github.com/bitfantasy/choco/internal/shop/sse"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Services aggregates all shop services
type Services struct {
	Auth    *AuthService
	Catalog *CatalogService
	Product *ProductService
	Cart    *CartService
	Order   *OrderService
}

// NewServices wires the service layer
func NewServices(repos *repository.Repositories, rdb *redis.Client, cfg *config.Config, logger *zap.Logger, hub *sse.Hub) *Services {
	return &Services{
		Auth:    NewAuthService(repos.Customer, rdb, cfg),
		Catalog: NewCatalogService(repos.Catalog, rdb, cfg.Catalog.CacheTTL, logger),
		Product: NewProductService(repos.Product),
		Cart:    NewCartService(repos.Cart, repos.Product),
		Order:   NewOrderService(repos.Order, repos.Catalog, repos.Cart, hub, logger),
	}
}
