package pricing

import (
	"testing"

	"github.com/bitfantasy/choco/internal/shop/configurator"
	"github.com/shopspring/decimal"
)

func TestCalculateFullScenario(t *testing.T) {
	// dark 6.99 + heart 2.50 + nuts 1.99 + gift 3.99 + message(1.99 + 3*0.15)
	cfg := configurator.ProductConfiguration{
		BaseMaterial:    configurator.BaseDark,
		AddOns:          []configurator.AddOn{configurator.AddOnNuts},
		Shape:           configurator.ShapeHeart,
		Packaging:       configurator.PackagingGift,
		PersonalMessage: "Mom",
	}

	b := Calculate(cfg, FallbackCatalog())

	if want := decimal.NewFromFloat(17.91); !b.Subtotal.Equal(want) {
		t.Errorf("expected subtotal %s, got %s", want, b.Subtotal)
	}
	if want := decimal.NewFromFloat(6.99); !b.Base.Equal(want) {
		t.Errorf("expected base %s, got %s", want, b.Base)
	}
	if want := decimal.NewFromFloat(2.50); !b.ShapeSurcharge.Equal(want) {
		t.Errorf("expected shape surcharge %s, got %s", want, b.ShapeSurcharge)
	}
	if want := decimal.NewFromFloat(1.99); !b.AddOnsTotal.Equal(want) {
		t.Errorf("expected add-ons total %s, got %s", want, b.AddOnsTotal)
	}
	if want := decimal.NewFromFloat(3.99); !b.PackagingSurcharge.Equal(want) {
		t.Errorf("expected packaging surcharge %s, got %s", want, b.PackagingSurcharge)
	}
	if want := decimal.NewFromFloat(2.44); !b.MessageFee.Equal(want) {
		t.Errorf("expected message fee %s, got %s", want, b.MessageFee)
	}
}

func TestCalculateAdditiveDecomposition(t *testing.T) {
	configs := []configurator.ProductConfiguration{
		configurator.DefaultConfiguration(),
		{
			BaseMaterial:    configurator.BaseWhite,
			AddOns:          []configurator.AddOn{configurator.AddOnNuts, configurator.AddOnBerries, configurator.AddOnCaramel},
			Shape:           configurator.ShapeRound,
			Packaging:       configurator.PackagingPremium,
			PersonalMessage: "Congratulations on the new home",
		},
		{
			BaseMaterial: configurator.BaseMilk,
			Shape:        configurator.ShapeSquare,
			Packaging:    configurator.PackagingEco,
		},
	}

	catalog := FallbackCatalog()
	for i, cfg := range configs {
		b := Calculate(cfg, catalog)
		sum := b.Base.
			Add(b.ShapeSurcharge).
			Add(b.AddOnsTotal).
			Add(b.PackagingSurcharge).
			Add(b.MessageFee)
		if !b.Subtotal.Equal(sum) {
			t.Errorf("config %d: subtotal %s != component sum %s", i, b.Subtotal, sum)
		}
	}
}

func TestCalculateNoneAndEmptyAddOnsPriceEqually(t *testing.T) {
	catalog := FallbackCatalog()

	withNone := configurator.DefaultConfiguration()
	empty := configurator.DefaultConfiguration()
	empty.AddOns = nil

	a := Calculate(withNone, catalog)
	b := Calculate(empty, catalog)

	if !a.Subtotal.Equal(b.Subtotal) {
		t.Errorf("{none} priced %s, empty set priced %s", a.Subtotal, b.Subtotal)
	}
	if !a.AddOnsTotal.IsZero() {
		t.Errorf("expected zero add-ons total for {none}, got %s", a.AddOnsTotal)
	}
}

func TestMessageFeeOnlyForNonEmptyMessage(t *testing.T) {
	catalog := FallbackCatalog()

	cfg := configurator.DefaultConfiguration()
	noMsg := Calculate(cfg, catalog)
	if !noMsg.MessageFee.IsZero() {
		t.Errorf("expected zero fee for empty message, got %s", noMsg.MessageFee)
	}

	cfg.PersonalMessage = "x"
	withMsg := Calculate(cfg, catalog)
	if !withMsg.MessageFee.Equal(decimal.NewFromFloat(2.14)) {
		t.Errorf("expected fee 2.14 for one character, got %s", withMsg.MessageFee)
	}
	if !withMsg.Subtotal.GreaterThan(noMsg.Subtotal) {
		t.Errorf("a message should never lower the price: %s vs %s", withMsg.Subtotal, noMsg.Subtotal)
	}
}

func TestMessageFeeStrictlyIncreasing(t *testing.T) {
	base := decimal.NewFromFloat(1.99)
	char := decimal.NewFromFloat(0.15)

	prev := MessageFee(base, char, "a")
	msg := "a"
	for i := 0; i < 10; i++ {
		msg += "b"
		fee := MessageFee(base, char, msg)
		if !fee.GreaterThan(prev) {
			t.Fatalf("fee for %d chars (%s) not greater than previous (%s)", len(msg), fee, prev)
		}
		prev = fee
	}
}

func TestMessageFeeCountsCharactersNotBytes(t *testing.T) {
	base := decimal.NewFromFloat(1.99)
	char := decimal.NewFromFloat(0.15)

	ascii := MessageFee(base, char, "abc")
	multibyte := MessageFee(base, char, "äöü")
	if !ascii.Equal(multibyte) {
		t.Errorf("3-char messages should price identically: %s vs %s", ascii, multibyte)
	}
}

func TestCatalogGetCaseInsensitive(t *testing.T) {
	catalog := FallbackCatalog()

	exact := catalog.Get(CategoryBaseMaterial, "dark")
	upper := catalog.Get(CategoryBaseMaterial, "DARK")
	mixed := catalog.Get(CategoryBaseMaterial, "Dark")

	if !exact.Equal(upper) || !exact.Equal(mixed) {
		t.Errorf("case variants priced differently: %s / %s / %s", exact, upper, mixed)
	}
}

func TestCatalogGetUnknownKeyIsZero(t *testing.T) {
	catalog := FallbackCatalog()

	if got := catalog.Get(CategoryShape, "triangle"); !got.IsZero() {
		t.Errorf("unknown key should price as zero, got %s", got)
	}
	if got := catalog.Get("no_such_category", "dark"); !got.IsZero() {
		t.Errorf("unknown category should price as zero, got %s", got)
	}
}

func TestCalculateUnknownKeysStillTotal(t *testing.T) {
	cfg := configurator.ProductConfiguration{
		BaseMaterial: "ruby",
		AddOns:       []configurator.AddOn{"gold-leaf"},
		Shape:        configurator.ShapeRound,
		Packaging:    configurator.PackagingStandard,
	}

	b := Calculate(cfg, FallbackCatalog())
	if !b.Subtotal.Equal(decimal.NewFromFloat(1.50)) {
		t.Errorf("unknown keys should contribute zero, got subtotal %s", b.Subtotal)
	}
}
