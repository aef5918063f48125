package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Catalog categories
const (
	CategoryBaseMaterial = "base_material"
	CategoryShape        = "shape"
	CategoryAddOn        = "add_on"
	CategoryPackaging    = "packaging"
)

// Catalog immutable price list snapshot. A snapshot is built once and then
// only ever replaced wholesale, never mutated, so readers need no locking.
type Catalog struct {
	BaseMaterials    map[string]decimal.Decimal `json:"baseMaterial"`
	Shapes           map[string]decimal.Decimal `json:"shapes"`
	AddOns           map[string]decimal.Decimal `json:"addOns"`
	Packaging        map[string]decimal.Decimal `json:"packaging"`
	MessageBasePrice decimal.Decimal            `json:"messageBasePrice"`
	MessageCharPrice decimal.Decimal            `json:"messageCharPrice"`

	logger *zap.Logger
}

// WithLogger returns a shallow copy of the catalog that logs key misses
// through the given logger.
func (c *Catalog) WithLogger(logger *zap.Logger) *Catalog {
	cp := *c
	cp.logger = logger
	return &cp
}

// Get looks up the unit price for a key within a category. Lookup is total:
// an exact hit wins, a case-insensitive scan covers noisy upstream naming,
// and anything else prices as zero with a warning so that price computation
// never fails.
func (c *Catalog) Get(category, key string) decimal.Decimal {
	group := c.group(category)
	if group == nil {
		c.warn(category, key)
		return decimal.Zero
	}
	if price, ok := group[key]; ok {
		return price
	}
	for k, price := range group {
		if strings.EqualFold(k, key) {
			return price
		}
	}
	c.warn(category, key)
	return decimal.Zero
}

func (c *Catalog) group(category string) map[string]decimal.Decimal {
	switch category {
	case CategoryBaseMaterial:
		return c.BaseMaterials
	case CategoryShape:
		return c.Shapes
	case CategoryAddOn:
		return c.AddOns
	case CategoryPackaging:
		return c.Packaging
	default:
		return nil
	}
}

func (c *Catalog) warn(category, key string) {
	if c.logger == nil {
		return
	}
	c.logger.Warn("Unknown catalog key, pricing as zero",
		zap.String("category", category),
		zap.String("key", key),
	)
}

// FallbackCatalog built-in static price list, used until a live catalog is
// fetched and whenever the remote source is unavailable. The message prices
// here are the authoritative defaults; the seeded pricing_settings row
// carries the same values.
func FallbackCatalog() *Catalog {
	return &Catalog{
		BaseMaterials: map[string]decimal.Decimal{
			"dark":  decimal.NewFromFloat(6.99),
			"milk":  decimal.NewFromFloat(5.99),
			"white": decimal.NewFromFloat(6.49),
		},
		Shapes: map[string]decimal.Decimal{
			"square": decimal.Zero,
			"round":  decimal.NewFromFloat(1.50),
			"heart":  decimal.NewFromFloat(2.50),
		},
		AddOns: map[string]decimal.Decimal{
			"nuts":    decimal.NewFromFloat(1.99),
			"berries": decimal.NewFromFloat(2.49),
			"caramel": decimal.NewFromFloat(1.79),
		},
		Packaging: map[string]decimal.Decimal{
			"standard": decimal.Zero,
			"gift":     decimal.NewFromFloat(3.99),
			"premium":  decimal.NewFromFloat(6.99),
			"eco":      decimal.NewFromFloat(1.99),
		},
		MessageBasePrice: decimal.NewFromFloat(1.99),
		MessageCharPrice: decimal.NewFromFloat(0.15),
	}
}
