package configurator

import (
	"strings"
	"testing"
)

func TestDefaultConfiguration(t *testing.T) {
	cfg := DefaultConfiguration()

	if cfg.BaseMaterial != BaseDark {
		t.Errorf("expected default base material dark, got %s", cfg.BaseMaterial)
	}
	if cfg.Shape != ShapeSquare {
		t.Errorf("expected default shape square, got %s", cfg.Shape)
	}
	if cfg.Packaging != PackagingStandard {
		t.Errorf("expected default packaging standard, got %s", cfg.Packaging)
	}
	if len(cfg.AddOns) != 1 || cfg.AddOns[0] != AddOnNone {
		t.Errorf("expected default add-ons {none}, got %v", cfg.AddOns)
	}
	if cfg.PersonalMessage != "" {
		t.Errorf("expected empty default message, got %q", cfg.PersonalMessage)
	}
}

func TestSessionStepClamps(t *testing.T) {
	s := NewSession()

	if s.Step() != StepBaseMaterial {
		t.Fatalf("expected session to start at step 1, got %d", s.Step())
	}

	s.Previous()
	if s.Step() != StepBaseMaterial {
		t.Errorf("Previous at first step should be a no-op, got %d", s.Step())
	}

	for i := 0; i < 10; i++ {
		s.Next()
	}
	if s.Step() != StepMessage {
		t.Errorf("Next past last step should clamp at %d, got %d", StepMessage, s.Step())
	}

	s.Previous()
	if s.Step() != StepPackaging {
		t.Errorf("expected step %d after Previous, got %d", StepPackaging, s.Step())
	}
}

func TestToggleAddOnExclusivity(t *testing.T) {
	s := NewSession()

	// Selecting a real add-on evicts "none"
	s.ToggleAddOn(AddOnNuts)
	cfg := s.Configuration()
	if cfg.HasAddOn(AddOnNone) {
		t.Errorf("selecting nuts should remove none, got %v", cfg.AddOns)
	}
	if !cfg.HasAddOn(AddOnNuts) {
		t.Errorf("expected nuts selected, got %v", cfg.AddOns)
	}

	s.ToggleAddOn(AddOnBerries)
	cfg = s.Configuration()
	if !cfg.HasAddOn(AddOnNuts) || !cfg.HasAddOn(AddOnBerries) {
		t.Errorf("expected nuts and berries selected, got %v", cfg.AddOns)
	}

	// Toggling "none" resets the whole set
	s.ToggleAddOn(AddOnNone)
	cfg = s.Configuration()
	if len(cfg.AddOns) != 1 || cfg.AddOns[0] != AddOnNone {
		t.Errorf("toggling none should reset to {none}, got %v", cfg.AddOns)
	}
}

func TestToggleAddOnInvolution(t *testing.T) {
	s := NewSession()
	s.ToggleAddOn(AddOnCaramel)
	before := s.Configuration()

	s.ToggleAddOn(AddOnNuts)
	s.ToggleAddOn(AddOnNuts)
	after := s.Configuration()

	if len(before.AddOns) != len(after.AddOns) {
		t.Fatalf("double toggle changed the set: %v vs %v", before.AddOns, after.AddOns)
	}
	for i := range before.AddOns {
		if before.AddOns[i] != after.AddOns[i] {
			t.Errorf("double toggle changed the set: %v vs %v", before.AddOns, after.AddOns)
		}
	}
}

func TestToggleAddOnEmptiedSetStaysEmpty(t *testing.T) {
	s := NewSession()
	s.ToggleAddOn(AddOnNuts)
	s.ToggleAddOn(AddOnNuts)

	cfg := s.Configuration()
	if len(cfg.AddOns) != 0 {
		t.Errorf("deselecting the only add-on should leave an empty set, got %v", cfg.AddOns)
	}
}

func TestSetMessageTruncates(t *testing.T) {
	s := NewSession()

	long := strings.Repeat("ä", MaxMessageLength+25)
	s.SetMessage(long)

	got := []rune(s.Configuration().PersonalMessage)
	if len(got) != MaxMessageLength {
		t.Errorf("expected message truncated to %d characters, got %d", MaxMessageLength, len(got))
	}
}

func TestConfigurationIsACopy(t *testing.T) {
	s := NewSession()
	s.ToggleAddOn(AddOnNuts)

	cfg := s.Configuration()
	cfg.AddOns[0] = AddOnCaramel
	cfg.BaseMaterial = BaseWhite

	fresh := s.Configuration()
	if fresh.AddOns[0] != AddOnNuts {
		t.Errorf("mutating a returned configuration leaked into the session: %v", fresh.AddOns)
	}
	if fresh.BaseMaterial != BaseDark {
		t.Errorf("mutating a returned configuration leaked into the session: %s", fresh.BaseMaterial)
	}
}

func TestSettersReplaceSelection(t *testing.T) {
	s := NewSession()

	s.SetBaseMaterial(BaseMilk)
	s.SetShape(ShapeHeart)
	s.SetPackaging(PackagingGift)
	s.SetMessage("Happy Birthday")
	s.SetMessageStyle("cursive")

	cfg := s.Configuration()
	if cfg.BaseMaterial != BaseMilk {
		t.Errorf("expected milk, got %s", cfg.BaseMaterial)
	}
	if cfg.Shape != ShapeHeart {
		t.Errorf("expected heart, got %s", cfg.Shape)
	}
	if cfg.Packaging != PackagingGift {
		t.Errorf("expected gift, got %s", cfg.Packaging)
	}
	if cfg.PersonalMessage != "Happy Birthday" {
		t.Errorf("expected message kept, got %q", cfg.PersonalMessage)
	}
	if cfg.MessageStyle != "cursive" {
		t.Errorf("expected style cursive, got %q", cfg.MessageStyle)
	}
}
