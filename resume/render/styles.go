package render

import (
	"strings"

	"resume-builder/resume/model"
)

// RGB is an 8-bit color.
type RGB struct {
	R, G, B int
}

// Hex returns the color as RRGGBB.
func (c RGB) Hex() string {
	const digits = "0123456789ABCDEF"
	b := []byte{
		digits[c.R>>4&0xF], digits[c.R&0xF],
		digits[c.G>>4&0xF], digits[c.G&0xF],
		digits[c.B>>4&0xF], digits[c.B&0xF],
	}
	return string(b)
}

var (
	textColor  = RGB{0x1F, 0x29, 0x37}
	mutedColor = RGB{0x9C, 0xA3, 0xAF}
	ruleColor  = RGB{0xD1, 0xD5, 0xDB}
)

var colorSchemes = map[string]RGB{
	"blue":   {0x25, 0x63, 0xEB},
	"green":  {0x05, 0x96, 0x69},
	"red":    {0xDC, 0x26, 0x26},
	"purple": {0x7C, 0x3A, 0xED},
	"orange": {0xEA, 0x58, 0x0C},
	"teal":   {0x0D, 0x94, 0x88},
	"gray":   {0x37, 0x41, 0x51},
	"black":  {0x11, 0x11, 0x11},
}

const defaultColorScheme = "blue"

var bodySizes = map[model.FontSize]float64{
	model.FontSizeSmall:  9,
	model.FontSizeMedium: 10.5,
	model.FontSizeLarge:  12,
}

var spacingFactors = map[model.Spacing]float64{
	model.SpacingCompact: 0.85,
	model.SpacingNormal:  1.0,
	model.SpacingRelaxed: 1.25,
}

// Theme is the resolved visual style for the PDF flow. Sizes are in points.
type Theme struct {
	Family      string
	BodySize    float64
	NameSize    float64
	HeadingSize float64
	SubSize     float64
	MetaSize    float64
	Spacing     float64
	Primary     RGB
	Text        RGB
	Muted       RGB
	Rule        RGB
}

// ThemeFor resolves a customization. Unknown or empty values fall back to defaults;
// the layout variant is not consulted.
func ThemeFor(c model.Customization) Theme {
	body, ok := bodySizes[c.FontSize]
	if !ok {
		body = bodySizes[model.FontSizeMedium]
	}
	spacing, ok := spacingFactors[c.Spacing]
	if !ok {
		spacing = 1.0
	}
	primary, ok := colorSchemes[strings.ToLower(strings.TrimSpace(c.ColorScheme))]
	if !ok {
		primary = colorSchemes[defaultColorScheme]
	}
	return Theme{
		Family:      pdfFamily(c.FontFamily),
		BodySize:    body,
		NameSize:    body * 2,
		HeadingSize: body + 2,
		SubSize:     body + 0.5,
		MetaSize:    body - 0.5,
		Spacing:     spacing,
		Primary:     primary,
		Text:        textColor,
		Muted:       mutedColor,
		Rule:        ruleColor,
	}
}

// pdfFamily maps a font family name to a PDF core font.
func pdfFamily(name string) string {
	n := strings.ToLower(name)
	switch {
	case strings.Contains(n, "mono"), strings.Contains(n, "courier"), strings.Contains(n, "code"):
		return "Courier"
	case strings.Contains(n, "sans"), strings.Contains(n, "helvetica"), strings.Contains(n, "arial"), strings.Contains(n, "inter"):
		return "Helvetica"
	case strings.Contains(n, "serif"), strings.Contains(n, "times"), strings.Contains(n, "georgia"), strings.Contains(n, "garamond"):
		return "Times"
	default:
		return "Helvetica"
	}
}

// RunStyle captures inline run formatting for DOCX output. Size is in half-points.
type RunStyle struct {
	Bold   bool
	Italic bool
	Size   int
	Color  string
}

const (
	HeadingColor = "1F2937"
	NameColor    = "111111"
	MetaColor    = "6B7280"
	HeadingSize  = 24
	NameSize     = 32
)

// StyleMap centralizes DOCX formatting. The DOCX backend ignores customization.
var StyleMap = map[string]RunStyle{
	"name": {
		Bold:  true,
		Size:  NameSize,
		Color: NameColor,
	},
	"title": {
		Size:  22,
		Color: HeadingColor,
	},
	"sectionHeading": {
		Bold:  true,
		Size:  HeadingSize,
		Color: HeadingColor,
	},
	"roleLine": {
		Bold: true,
	},
	"meta": {
		Italic: true,
	},
	"dates": {
		Color: MetaColor,
	},
}
