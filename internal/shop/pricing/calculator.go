package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/bitfantasy/choco/internal/shop/configurator"
)

// PriceBreakdown derived price decomposition of a configuration. Subtotal is
// always the sum of the other five fields.
type PriceBreakdown struct {
	Base               decimal.Decimal `json:"base"`
	ShapeSurcharge     decimal.Decimal `json:"shapeSurcharge"`
	AddOnsTotal        decimal.Decimal `json:"addOnsTotal"`
	PackagingSurcharge decimal.Decimal `json:"packagingSurcharge"`
	MessageFee         decimal.Decimal `json:"messageFee"`
	Subtotal           decimal.Decimal `json:"subtotal"`
}

// Calculate derives the price breakdown for a configuration against a
// catalog. Pure and total: unresolvable keys contribute zero, so this is safe
// to call on every configuration mutation.
func Calculate(cfg configurator.ProductConfiguration, catalog *Catalog) PriceBreakdown {
	b := PriceBreakdown{
		Base:               catalog.Get(CategoryBaseMaterial, string(cfg.BaseMaterial)),
		ShapeSurcharge:     catalog.Get(CategoryShape, string(cfg.Shape)),
		PackagingSurcharge: catalog.Get(CategoryPackaging, string(cfg.Packaging)),
		AddOnsTotal:        decimal.Zero,
	}

	for _, a := range cfg.AddOns {
		if a == configurator.AddOnNone {
			continue
		}
		b.AddOnsTotal = b.AddOnsTotal.Add(catalog.Get(CategoryAddOn, string(a)))
	}

	b.MessageFee = MessageFee(catalog.MessageBasePrice, catalog.MessageCharPrice, cfg.PersonalMessage)

	b.Subtotal = b.Base.
		Add(b.ShapeSurcharge).
		Add(b.AddOnsTotal).
		Add(b.PackagingSurcharge).
		Add(b.MessageFee)
	return b
}

// MessageFee personalization fee: basePrice + charPrice per character, zero
// for an empty message. Length counts characters, not bytes. Shared with the
// server-side order assembler so both sides price messages identically.
func MessageFee(basePrice, charPrice decimal.Decimal, message string) decimal.Decimal {
	if message == "" {
		return decimal.Zero
	}
	n := int64(len([]rune(message)))
	return basePrice.Add(charPrice.Mul(decimal.NewFromInt(n)))
}
