// Package configurator holds the in-progress selection state for the custom
// chocolate builder: a five-step wizard over a ProductConfiguration value.
// Every mutation replaces the configuration wholesale, so a reader never
// observes a half-applied update and the add-on exclusivity invariant holds
// after every operation.
package configurator

// BaseMaterial chocolate base selection
type BaseMaterial string

const (
	BaseDark  BaseMaterial = "dark"
	BaseMilk  BaseMaterial = "milk"
	BaseWhite BaseMaterial = "white"
)

// AddOn mix-in selection. AddOnNone is mutually exclusive with every other
// value.
type AddOn string

const (
	AddOnNone    AddOn = "none"
	AddOnNuts    AddOn = "nuts"
	AddOnBerries AddOn = "berries"
	AddOnCaramel AddOn = "caramel"
)

// Shape mold shape selection
type Shape string

const (
	ShapeSquare Shape = "square"
	ShapeRound  Shape = "round"
	ShapeHeart  Shape = "heart"
)

// Packaging packaging selection
type Packaging string

const (
	PackagingStandard Packaging = "standard"
	PackagingGift     Packaging = "gift"
	PackagingPremium  Packaging = "premium"
	PackagingEco      Packaging = "eco"
)

// MaxMessageLength personalization message limit in characters
const MaxMessageLength = 100

// ProductConfiguration the customer's current selections. Prices are never
// stored here; they are always derived from a configuration and a catalog.
type ProductConfiguration struct {
	BaseMaterial    BaseMaterial `json:"baseMaterial"`
	AddOns          []AddOn      `json:"addOns"`
	Shape           Shape        `json:"shape"`
	Packaging       Packaging    `json:"packaging"`
	PersonalMessage string       `json:"personalMessage"`
	MessageStyle    string       `json:"messageStyle"`
}

// DefaultConfiguration initial wizard state
func DefaultConfiguration() ProductConfiguration {
	return ProductConfiguration{
		BaseMaterial: BaseDark,
		AddOns:       []AddOn{AddOnNone},
		Shape:        ShapeSquare,
		Packaging:    PackagingStandard,
	}
}

// HasAddOn reports whether the add-on is currently selected.
func (c ProductConfiguration) HasAddOn(a AddOn) bool {
	for _, x := range c.AddOns {
		if x == a {
			return true
		}
	}
	return false
}

// Wizard steps
const (
	StepBaseMaterial = 1
	StepShape        = 2
	StepAddOns       = 3
	StepPackaging    = 4
	StepMessage      = 5

	firstStep = StepBaseMaterial
	lastStep  = StepMessage
)

// Session one customer's pass through the wizard. Not safe for concurrent
// use; the builder is single-threaded by design.
type Session struct {
	step   int
	config ProductConfiguration
}

// NewSession starts a session at step 1 with the default configuration.
func NewSession() *Session {
	return &Session{
		step:   firstStep,
		config: DefaultConfiguration(),
	}
}

// Step current step, 1..5
func (s *Session) Step() int {
	return s.step
}

// Next advances one step; a no-op at the last step.
func (s *Session) Next() {
	if s.step < lastStep {
		s.step++
	}
}

// Previous steps back; a no-op at the first step.
func (s *Session) Previous() {
	if s.step > firstStep {
		s.step--
	}
}

// Configuration returns a copy of the current configuration.
func (s *Session) Configuration() ProductConfiguration {
	cfg := s.config
	cfg.AddOns = append([]AddOn(nil), s.config.AddOns...)
	return cfg
}

// SetBaseMaterial replaces the base material selection.
func (s *Session) SetBaseMaterial(m BaseMaterial) {
	cfg := s.Configuration()
	cfg.BaseMaterial = m
	s.config = cfg
}

// SetShape replaces the shape selection.
func (s *Session) SetShape(sh Shape) {
	cfg := s.Configuration()
	cfg.Shape = sh
	s.config = cfg
}

// SetPackaging replaces the packaging selection.
func (s *Session) SetPackaging(p Packaging) {
	cfg := s.Configuration()
	cfg.Packaging = p
	s.config = cfg
}

// SetMessage replaces the personalization message, truncated to
// MaxMessageLength characters.
func (s *Session) SetMessage(msg string) {
	runes := []rune(msg)
	if len(runes) > MaxMessageLength {
		msg = string(runes[:MaxMessageLength])
	}
	cfg := s.Configuration()
	cfg.PersonalMessage = msg
	s.config = cfg
}

// SetMessageStyle replaces the message style (cosmetic only).
func (s *Session) SetMessageStyle(style string) {
	cfg := s.Configuration()
	cfg.MessageStyle = style
	s.config = cfg
}

// ToggleAddOn flips an add-on selection. Toggling AddOnNone clears the set
// back to {none}. Selecting any other add-on removes "none" if present;
// toggling a selected add-on removes it, and an emptied set stays empty
// (pricing treats an empty set and {none} identically).
func (s *Session) ToggleAddOn(a AddOn) {
	cfg := s.Configuration()
	if a == AddOnNone {
		cfg.AddOns = []AddOn{AddOnNone}
		s.config = cfg
		return
	}

	next := make([]AddOn, 0, len(cfg.AddOns)+1)
	removed := false
	for _, x := range cfg.AddOns {
		if x == AddOnNone {
			continue
		}
		if x == a {
			removed = true
			continue
		}
		next = append(next, x)
	}
	if !removed {
		next = append(next, a)
	}
	cfg.AddOns = next
	s.config = cfg
}
