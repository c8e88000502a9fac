package model

// FontSize is the body text size tier.
type FontSize string

const (
	FontSizeSmall  FontSize = "small"
	FontSizeMedium FontSize = "medium"
	FontSizeLarge  FontSize = "large"
)

// Spacing is the vertical rhythm tier.
type Spacing string

const (
	SpacingCompact Spacing = "compact"
	SpacingNormal  Spacing = "normal"
	SpacingRelaxed Spacing = "relaxed"
)

// Layout is the visual intent chosen in the editor. It is a closed set; the PDF
// renderer draws every variant as the same single-column flow.
type Layout string

const (
	LayoutSingleColumn Layout = "single-column"
	LayoutTwoColumn    Layout = "two-column"
	LayoutTimeline     Layout = "timeline"
	LayoutModern       Layout = "modern"
	LayoutClassic      Layout = "classic"
	LayoutMinimal      Layout = "minimal"
	LayoutCreative     Layout = "creative"
)

var layouts = map[Layout]struct{}{
	LayoutSingleColumn: {},
	LayoutTwoColumn:    {},
	LayoutTimeline:     {},
	LayoutModern:       {},
	LayoutClassic:      {},
	LayoutMinimal:      {},
	LayoutCreative:     {},
}

// Valid reports whether l is a known layout. The empty layout is valid and means the default.
func (l Layout) Valid() bool {
	if l == "" {
		return true
	}
	_, ok := layouts[l]
	return ok
}

// Valid reports whether s is a known size tier or empty.
func (s FontSize) Valid() bool {
	switch s {
	case "", FontSizeSmall, FontSizeMedium, FontSizeLarge:
		return true
	}
	return false
}

// Valid reports whether s is a known spacing tier or empty.
func (s Spacing) Valid() bool {
	switch s {
	case "", SpacingCompact, SpacingNormal, SpacingRelaxed:
		return true
	}
	return false
}

// Customization holds rendering preferences.
type Customization struct {
	FontFamily  string   `json:"fontFamily" validate:"max=64"`
	FontSize    FontSize `json:"fontSize" validate:"fontsize"`
	ColorScheme string   `json:"colorScheme" validate:"max=64"`
	Spacing     Spacing  `json:"spacing" validate:"spacing"`
	Layout      Layout   `json:"layout" validate:"layout"`
}

// DefaultCustomization is applied to new resumes.
func DefaultCustomization() Customization {
	return Customization{
		FontFamily:  "sans",
		FontSize:    FontSizeMedium,
		ColorScheme: "blue",
		Spacing:     SpacingNormal,
		Layout:      LayoutSingleColumn,
	}
}
