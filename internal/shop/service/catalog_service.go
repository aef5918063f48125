package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/bitfantasy/choco/internal/shop/entity"
	"github.com/bitfantasy/choco/internal/shop/pricing"
	"github.com/bitfantasy/choco/internal/shop/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const pricingCacheKey = "catalog:pricing"

// CatalogService catalog component CRUD and the aggregate pricing snapshot
// consumed by the configurator. The snapshot is cached in redis and
// invalidated on every catalog write.
type CatalogService struct {
	catalogRepo *repository.CatalogRepository
	rdb         *redis.Client
	cacheTTL    time.Duration
	logger      *zap.Logger
}

// NewCatalogService creates the catalog service
func NewCatalogService(catalogRepo *repository.CatalogRepository, rdb *redis.Client, cacheTTL time.Duration, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		catalogRepo: catalogRepo,
		rdb:         rdb,
		cacheTTL:    cacheTTL,
		logger:      logger,
	}
}

func (s *CatalogService) ListBaseMaterials(ctx context.Context, all bool) ([]entity.BaseMaterial, error) {
	return s.catalogRepo.ListBaseMaterials(ctx, all)
}

func (s *CatalogService) ListAddOns(ctx context.Context, all bool) ([]entity.AddOn, error) {
	return s.catalogRepo.ListAddOns(ctx, all)
}

func (s *CatalogService) ListShapes(ctx context.Context, all bool) ([]entity.Shape, error) {
	return s.catalogRepo.ListShapes(ctx, all)
}

func (s *CatalogService) ListPackaging(ctx context.Context, all bool) ([]entity.PackagingOption, error) {
	return s.catalogRepo.ListPackaging(ctx, all)
}

// PricingSnapshot builds the aggregate price list from the active catalog
// rows. Served from redis when fresh; the DB is the source of truth.
func (s *CatalogService) PricingSnapshot(ctx context.Context) (*pricing.Catalog, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, pricingCacheKey).Bytes(); err == nil {
			var catalog pricing.Catalog
			if err := json.Unmarshal(cached, &catalog); err == nil {
				return &catalog, nil
			}
		}
	}

	catalog, err := s.buildSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if data, err := json.Marshal(catalog); err == nil {
			if err := s.rdb.Set(ctx, pricingCacheKey, data, s.cacheTTL).Err(); err != nil {
				s.logger.Warn("Failed to cache pricing snapshot", zap.Error(err))
			}
		}
	}
	return catalog, nil
}

func (s *CatalogService) buildSnapshot(ctx context.Context) (*pricing.Catalog, error) {
	materials, err := s.catalogRepo.ListBaseMaterials(ctx, false)
	if err != nil {
		return nil, err
	}
	addOns, err := s.catalogRepo.ListAddOns(ctx, false)
	if err != nil {
		return nil, err
	}
	shapes, err := s.catalogRepo.ListShapes(ctx, false)
	if err != nil {
		return nil, err
	}
	packaging, err := s.catalogRepo.ListPackaging(ctx, false)
	if err != nil {
		return nil, err
	}

	catalog := &pricing.Catalog{
		BaseMaterials: make(map[string]decimal.Decimal, len(materials)),
		Shapes:        make(map[string]decimal.Decimal, len(shapes)),
		AddOns:        make(map[string]decimal.Decimal, len(addOns)),
		Packaging:     make(map[string]decimal.Decimal, len(packaging)),
	}
	for _, m := range materials {
		catalog.BaseMaterials[m.Key] = m.Price
	}
	for _, sh := range shapes {
		catalog.Shapes[sh.Key] = sh.Price
	}
	for _, a := range addOns {
		catalog.AddOns[a.Key] = a.Price
	}
	for _, p := range packaging {
		catalog.Packaging[p.Key] = p.Price
	}

	settings, err := s.catalogRepo.GetPricingSettings(ctx)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		// Settings row missing: fall back to the authoritative defaults.
		fallback := pricing.FallbackCatalog()
		catalog.MessageBasePrice = fallback.MessageBasePrice
		catalog.MessageCharPrice = fallback.MessageCharPrice
	} else {
		catalog.MessageBasePrice = settings.MessageBasePrice
		catalog.MessageCharPrice = settings.MessageCharPrice
	}

	return catalog, nil
}

// InvalidateCache drops the cached pricing snapshot
func (s *CatalogService) InvalidateCache(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, pricingCacheKey).Err(); err != nil {
		s.logger.Warn("Failed to invalidate pricing cache", zap.Error(err))
	}
}

// ComponentRequest admin create/update payload for a catalog component
type ComponentRequest struct {
	Key       string          `json:"key" binding:"required"`
	Name      string          `json:"name" binding:"required"`
	Price     decimal.Decimal `json:"price"`
	Active    *bool           `json:"active"`
	SortOrder int             `json:"sort_order"`
	Features  []interface{}   `json:"features"`
}

func (req ComponentRequest) active() bool {
	if req.Active == nil {
		return true
	}
	return *req.Active
}

func (s *CatalogService) CreateBaseMaterial(ctx context.Context, req ComponentRequest) (*entity.BaseMaterial, error) {
	m := &entity.BaseMaterial{
		ID:        uuid.New().String()[:32],
		Key:       req.Key,
		Name:      req.Name,
		Price:     req.Price,
		Active:    req.active(),
		SortOrder: req.SortOrder,
	}
	if err := s.catalogRepo.CreateBaseMaterial(ctx, m); err != nil {
		return nil, err
	}
	s.InvalidateCache(ctx)
	return m, nil
}

func (s *CatalogService) CreateAddOn(ctx context.Context, req ComponentRequest) (*entity.AddOn, error) {
	a := &entity.AddOn{
		ID:        uuid.New().String()[:32],
		Key:       req.Key,
		Name:      req.Name,
		Price:     req.Price,
		Active:    req.active(),
		SortOrder: req.SortOrder,
	}
	if err := s.catalogRepo.CreateAddOn(ctx, a); err != nil {
		return nil, err
	}
	s.InvalidateCache(ctx)
	return a, nil
}

func (s *CatalogService) CreateShape(ctx context.Context, req ComponentRequest) (*entity.Shape, error) {
	sh := &entity.Shape{
		ID:        uuid.New().String()[:32],
		Key:       req.Key,
		Name:      req.Name,
		Price:     req.Price,
		Active:    req.active(),
		SortOrder: req.SortOrder,
	}
	if err := s.catalogRepo.CreateShape(ctx, sh); err != nil {
		return nil, err
	}
	s.InvalidateCache(ctx)
	return sh, nil
}

func (s *CatalogService) CreatePackaging(ctx context.Context, req ComponentRequest) (*entity.PackagingOption, error) {
	p := &entity.PackagingOption{
		ID:        uuid.New().String()[:32],
		Key:       req.Key,
		Name:      req.Name,
		Price:     req.Price,
		Features:  entity.JSONBArray(req.Features),
		Active:    req.active(),
		SortOrder: req.SortOrder,
	}
	if err := s.catalogRepo.CreatePackaging(ctx, p); err != nil {
		return nil, err
	}
	s.InvalidateCache(ctx)
	return p, nil
}

func (s *CatalogService) UpdateBaseMaterial(ctx context.Context, id string, req ComponentRequest) (*entity.BaseMaterial, error) {
	m, err := s.catalogRepo.FindBaseMaterialByID(ctx, id)
	if err != nil {
		return nil, err
	}
	m.Key = req.Key
	m.Name = req.Name
	m.Price = req.Price
	m.Active = req.active()
	m.SortOrder = req.SortOrder
	if err := s.catalogRepo.UpdateBaseMaterial(ctx, m); err != nil {
		return nil, err
	}
	s.InvalidateCache(ctx)
	return m, nil
}

func (s *CatalogService) UpdateAddOn(ctx context.Context, id string, req ComponentRequest) (*entity.AddOn, error) {
	a, err := s.catalogRepo.FindAddOnByID(ctx, id)
	if err != nil {
		return nil, err
	}
	a.Key = req.Key
	a.Name = req.Name
	a.Price = req.Price
	a.Active = req.active()
	a.SortOrder = req.SortOrder
	if err := s.catalogRepo.UpdateAddOn(ctx, a); err != nil {
		return nil, err
	}
	s.InvalidateCache(ctx)
	return a, nil
}

func (s *CatalogService) UpdateShape(ctx context.Context, id string, req ComponentRequest) (*entity.Shape, error) {
	sh, err := s.catalogRepo.FindShapeByID(ctx, id)
	if err != nil {
		return nil, err
	}
	sh.Key = req.Key
	sh.Name = req.Name
	sh.Price = req.Price
	sh.Active = req.active()
	sh.SortOrder = req.SortOrder
	if err := s.catalogRepo.UpdateShape(ctx, sh); err != nil {
		return nil, err
	}
	s.InvalidateCache(ctx)
	return sh, nil
}

func (s *CatalogService) UpdatePackaging(ctx context.Context, id string, req ComponentRequest) (*entity.PackagingOption, error) {
	p, err := s.catalogRepo.FindPackagingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Key = req.Key
	p.Name = req.Name
	p.Price = req.Price
	p.Features = entity.JSONBArray(req.Features)
	p.Active = req.active()
	p.SortOrder = req.SortOrder
	if err := s.catalogRepo.UpdatePackaging(ctx, p); err != nil {
		return nil, err
	}
	s.InvalidateCache(ctx)
	return p, nil
}

func (s *CatalogService) DeleteBaseMaterial(ctx context.Context, id string) error {
	if err := s.catalogRepo.DeleteBaseMaterial(ctx, id); err != nil {
		return err
	}
	s.InvalidateCache(ctx)
	return nil
}

func (s *CatalogService) DeleteAddOn(ctx context.Context, id string) error {
	if err := s.catalogRepo.DeleteAddOn(ctx, id); err != nil {
		return err
	}
	s.InvalidateCache(ctx)
	return nil
}

func (s *CatalogService) DeleteShape(ctx context.Context, id string) error {
	if err := s.catalogRepo.DeleteShape(ctx, id); err != nil {
		return err
	}
	s.InvalidateCache(ctx)
	return nil
}

func (s *CatalogService) DeletePackaging(ctx context.Context, id string) error {
	if err := s.catalogRepo.DeletePackaging(ctx, id); err != nil {
		return err
	}
	s.InvalidateCache(ctx)
	return nil
}

// UpdateMessagePricing replaces the personalization message prices
func (s *CatalogService) UpdateMessagePricing(ctx context.Context, basePrice, charPrice decimal.Decimal) (*entity.PricingSettings, error) {
	if basePrice.IsNegative() || charPrice.IsNegative() {
		return nil, newValidationError("message_pricing", "prices must be non-negative")
	}
	settings := &entity.PricingSettings{
		MessageBasePrice: basePrice,
		MessageCharPrice: charPrice,
	}
	if err := s.catalogRepo.SavePricingSettings(ctx, settings); err != nil {
		return nil, err
	}
	s.InvalidateCache(ctx)
	return settings, nil
}
