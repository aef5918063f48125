package repository

import (
	"context"
	"errors"

	"github.com/bitfantasy/choco/internal/shop/entity"
	"gorm.io/gorm"
)

// CatalogRepository catalog component rows (base materials, add-ons, shapes,
// packaging) and the pricing settings row. Resolve* lookups are
// case-insensitive on key and only see active rows, matching the
// configurator's lookup semantics.
type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// ListBaseMaterials lists base materials, active rows only unless all is set
func (r *CatalogRepository) ListBaseMaterials(ctx context.Context, all bool) ([]entity.BaseMaterial, error) {
	var items []entity.BaseMaterial
	q := r.db.WithContext(ctx).Order("sort_order ASC, key ASC")
	if !all {
		q = q.Where("active = ?", true)
	}
	return items, q.Find(&items).Error
}

func (r *CatalogRepository) ListAddOns(ctx context.Context, all bool) ([]entity.AddOn, error) {
	var items []entity.AddOn
	q := r.db.WithContext(ctx).Order("sort_order ASC, key ASC")
	if !all {
		q = q.Where("active = ?", true)
	}
	return items, q.Find(&items).Error
}

func (r *CatalogRepository) ListShapes(ctx context.Context, all bool) ([]entity.Shape, error) {
	var items []entity.Shape
	q := r.db.WithContext(ctx).Order("sort_order ASC, key ASC")
	if !all {
		q = q.Where("active = ?", true)
	}
	return items, q.Find(&items).Error
}

func (r *CatalogRepository) ListPackaging(ctx context.Context, all bool) ([]entity.PackagingOption, error) {
	var items []entity.PackagingOption
	q := r.db.WithContext(ctx).Order("sort_order ASC, key ASC")
	if !all {
		q = q.Where("active = ?", true)
	}
	return items, q.Find(&items).Error
}

// ResolveBaseMaterial finds an active base material by key, case-insensitive
func (r *CatalogRepository) ResolveBaseMaterial(ctx context.Context, key string) (*entity.BaseMaterial, error) {
	var m entity.BaseMaterial
	err := r.db.WithContext(ctx).
		Where("LOWER(key) = LOWER(?) AND active = ?", key, true).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *CatalogRepository) ResolveAddOn(ctx context.Context, key string) (*entity.AddOn, error) {
	var a entity.AddOn
	err := r.db.WithContext(ctx).
		Where("LOWER(key) = LOWER(?) AND active = ?", key, true).
		First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *CatalogRepository) ResolveShape(ctx context.Context, key string) (*entity.Shape, error) {
	var s entity.Shape
	err := r.db.WithContext(ctx).
		Where("LOWER(key) = LOWER(?) AND active = ?", key, true).
		First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *CatalogRepository) ResolvePackaging(ctx context.Context, key string) (*entity.PackagingOption, error) {
	var p entity.PackagingOption
	err := r.db.WithContext(ctx).
		Where("LOWER(key) = LOWER(?) AND active = ?", key, true).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindBaseMaterialByID finds a base material row by id
func (r *CatalogRepository) FindBaseMaterialByID(ctx context.Context, id string) (*entity.BaseMaterial, error) {
	var m entity.BaseMaterial
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *CatalogRepository) FindAddOnByID(ctx context.Context, id string) (*entity.AddOn, error) {
	var a entity.AddOn
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *CatalogRepository) FindShapeByID(ctx context.Context, id string) (*entity.Shape, error) {
	var s entity.Shape
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *CatalogRepository) FindPackagingByID(ctx context.Context, id string) (*entity.PackagingOption, error) {
	var p entity.PackagingOption
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// CreateBaseMaterial creates a base material row
func (r *CatalogRepository) CreateBaseMaterial(ctx context.Context, m *entity.BaseMaterial) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *CatalogRepository) UpdateBaseMaterial(ctx context.Context, m *entity.BaseMaterial) error {
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *CatalogRepository) DeleteBaseMaterial(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&entity.BaseMaterial{}, "id = ?", id).Error
}

func (r *CatalogRepository) CreateAddOn(ctx context.Context, a *entity.AddOn) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *CatalogRepository) UpdateAddOn(ctx context.Context, a *entity.AddOn) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *CatalogRepository) DeleteAddOn(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&entity.AddOn{}, "id = ?", id).Error
}

func (r *CatalogRepository) CreateShape(ctx context.Context, s *entity.Shape) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *CatalogRepository) UpdateShape(ctx context.Context, s *entity.Shape) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *CatalogRepository) DeleteShape(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&entity.Shape{}, "id = ?", id).Error
}

func (r *CatalogRepository) CreatePackaging(ctx context.Context, p *entity.PackagingOption) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *CatalogRepository) UpdatePackaging(ctx context.Context, p *entity.PackagingOption) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *CatalogRepository) DeletePackaging(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&entity.PackagingOption{}, "id = ?", id).Error
}

// GetPricingSettings returns the message-pricing row
func (r *CatalogRepository) GetPricingSettings(ctx context.Context) (*entity.PricingSettings, error) {
	var s entity.PricingSettings
	err := r.db.WithContext(ctx).Where("id = ?", "default").First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// SavePricingSettings upserts the message-pricing row
func (r *CatalogRepository) SavePricingSettings(ctx context.Context, s *entity.PricingSettings) error {
	s.ID = "default"
	return r.db.WithContext(ctx).Save(s).Error
}
