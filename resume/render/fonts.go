package render

import (
	"embed"
	"encoding/json"

	"github.com/go-pdf/fpdf"

	"resume-builder/resume/model"
)

// UnicodeFamily is the embedded TrueType family used when text leaves cp1252.
// It covers Latin Extended, Greek and Cyrillic; CJK still renders as missing glyphs.
const UnicodeFamily = "DejaVu"

//go:embed fonts/*.ttf
var fontFiles embed.FS

var unicodeStyles = map[string]string{
	"":   "fonts/DejaVuSansCondensed.ttf",
	"B":  "fonts/DejaVuSansCondensed-Bold.ttf",
	"I":  "fonts/DejaVuSansCondensed-Oblique.ttf",
	"BI": "fonts/DejaVuSansCondensed-BoldOblique.ttf",
}

// cp1252Extras are the non-Latin-1 runes the core font encoding still maps.
var cp1252Extras = map[rune]bool{
	'€': true, '‚': true, 'ƒ': true, '„': true, '…': true, '†': true, '‡': true,
	'ˆ': true, '‰': true, 'Š': true, '‹': true, 'Œ': true, 'Ž': true, '‘': true,
	'’': true, '“': true, '”': true, '•': true, '–': true, '—': true, '˜': true,
	'™': true, 'š': true, '›': true, 'œ': true, 'ž': true, 'Ÿ': true,
}

func fitsCP1252(s string) bool {
	for _, r := range s {
		if r < 0x80 || (r >= 0xA0 && r <= 0xFF) || cp1252Extras[r] {
			continue
		}
		return false
	}
	return true
}

// needsUnicodeFont reports whether any text in content would be lost to cp1252.
func needsUnicodeFont(content model.Content) bool {
	raw, err := json.Marshal(content)
	if err != nil {
		return false
	}
	return !fitsCP1252(string(raw))
}

func registerUnicodeFont(pdf *fpdf.Fpdf) error {
	for style, name := range unicodeStyles {
		data, err := fontFiles.ReadFile(name)
		if err != nil {
			return err
		}
		pdf.AddUTF8FontFromBytes(UnicodeFamily, style, data)
	}
	return pdf.Error()
}
