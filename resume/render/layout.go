package render

import (
	"strings"

	"resume-builder/resume/model"
)

const ptToMM = 25.4 / 72

// Measurer reports the width in mm of text set in the given style ("", "B", "I")
// and point size.
type Measurer interface {
	Width(text, style string, size float64) float64
}

// InstrKind identifies a drawing instruction.
type InstrKind string

const (
	InstrText  InstrKind = "text"
	InstrRule  InstrKind = "rule"
	InstrImage InstrKind = "image"
)

// Instruction is a positioned drawing operation. X and Y are the top-left corner in mm.
type Instruction struct {
	Kind    InstrKind
	Section string
	X, Y    float64
	W, H    float64
	Text    string
	Style   string
	Size    float64
	Color   RGB
}

// Page is the instruction list of one page.
type Page struct {
	Instructions []Instruction
}

// Document is a laid-out resume. Sections lists the keys placed, in order.
type Document struct {
	Pages    []Page
	Sections []string
}

// PageSpec is a page geometry in mm.
type PageSpec struct {
	Width  float64
	Height float64
	Margin float64
}

// A4 is the default page.
var A4 = PageSpec{Width: 210, Height: 297, Margin: 15}

// LayoutOptions controls the flow. PhotoSize is the square photo edge in mm; zero
// means no photo.
type LayoutOptions struct {
	Page      PageSpec
	PhotoSize float64
}

const (
	defaultPhotoSize = 30
	photoGap         = 5
	bulletIndent     = 4
	proseIndent      = 2
	lineFactor       = 1.35
)

type flow struct {
	doc     *Document
	page    PageSpec
	theme   Theme
	measure Measurer
	section string
	y       float64
}

// Layout places content on pages with a single vertical cursor. A block that does
// not fit the remaining space starts a new page.
func Layout(c model.Content, theme Theme, opts LayoutOptions, m Measurer) Document {
	page := opts.Page
	if page.Width == 0 {
		page = A4
	}
	f := &flow{doc: &Document{}, page: page, theme: theme, measure: m}
	f.newPage()

	f.header(c.Personal, opts.PhotoSize)
	for _, s := range BuildSections(c) {
		f.sectionBlock(s)
	}
	return *f.doc
}

func (f *flow) contentWidth() float64 { return f.page.Width - 2*f.page.Margin }

func (f *flow) bodyHeight() float64 { return f.page.Height - 2*f.page.Margin }

func (f *flow) bottom() float64 { return f.page.Height - f.page.Margin }

func (f *flow) lineHeight(size float64) float64 {
	return size * ptToMM * lineFactor * f.theme.Spacing
}

func (f *flow) gap(mm float64) float64 { return mm * f.theme.Spacing }

func (f *flow) newPage() {
	f.doc.Pages = append(f.doc.Pages, Page{})
	f.y = f.page.Margin
}

// ensure starts a new page when h does not fit. A fresh page always accepts.
func (f *flow) ensure(h float64) {
	if f.y+h > f.bottom() && f.y > f.page.Margin {
		f.newPage()
	}
}

func (f *flow) emit(in Instruction) {
	in.Section = f.section
	p := &f.doc.Pages[len(f.doc.Pages)-1]
	p.Instructions = append(p.Instructions, in)
}

func (f *flow) header(p model.Personal, photoSize float64) {
	h, ok := BuildHeader(p)
	hasPhoto := photoSize > 0
	if !ok && !hasPhoto {
		return
	}
	f.section = SectionHeader
	if ok {
		f.doc.Sections = append(f.doc.Sections, SectionHeader)
	}

	x := f.page.Margin
	width := f.contentWidth()
	top := f.y
	if hasPhoto {
		width -= photoSize + photoGap
		f.emit(Instruction{
			Kind: InstrImage,
			X:    f.page.Width - f.page.Margin - photoSize,
			Y:    top,
			W:    photoSize,
			H:    photoSize,
		})
	}

	if h.Name != "" {
		f.lines(x, width, h.Name, "B", f.theme.NameSize, f.theme.Primary)
	}
	if h.Title != "" {
		f.lines(x, width, h.Title, "", f.theme.HeadingSize, f.theme.Text)
	}
	if len(h.Contact) > 0 {
		f.y += f.gap(1)
		f.lines(x, width, strings.Join(h.Contact, " | "), "", f.theme.MetaSize, f.theme.Text)
	}
	if hasPhoto && f.y < top+photoSize {
		f.y = top + photoSize
	}
	f.y += f.gap(5)
}

func (f *flow) sectionBlock(s Section) {
	f.section = s.Key
	f.doc.Sections = append(f.doc.Sections, s.Key)

	headingH := f.lineHeight(f.theme.HeadingSize)
	f.ensure(headingH + f.gap(2) + f.lineHeight(f.theme.BodySize))
	f.emit(Instruction{
		Kind:  InstrText,
		X:     f.page.Margin,
		Y:     f.y,
		W:     f.contentWidth(),
		H:     headingH,
		Text:  strings.ToUpper(s.Heading),
		Style: "B",
		Size:  f.theme.HeadingSize,
		Color: f.theme.Primary,
	})
	f.y += headingH
	f.emit(Instruction{Kind: InstrRule, X: f.page.Margin, Y: f.y, W: f.contentWidth(), Color: f.theme.Rule})
	f.y += f.gap(2)

	for i, e := range s.Entries {
		if i > 0 {
			f.y += f.gap(2)
		}
		f.entry(e)
	}
	f.y += f.gap(4)
}

func (f *flow) entry(e Entry) {
	x := f.page.Margin
	w := f.contentWidth()
	if e.Title != "" {
		f.block(x, w, e.Title, "B", f.theme.SubSize, f.theme.Text)
	}
	if e.Meta != "" {
		f.block(x, w, e.Meta, "I", f.theme.MetaSize, f.theme.Text)
	}
	if e.Dates != "" {
		f.block(x, w, e.Dates, "", f.theme.MetaSize, f.theme.Muted)
	}
	x += proseIndent
	w -= proseIndent
	for _, l := range e.Lines {
		if l.Bullet {
			f.bullet(x, w, l.Text)
			continue
		}
		f.block(x, w, l.Text, "", f.theme.BodySize, f.theme.Text)
	}
}

// block places wrapped text as one unit, or line by line when it is taller than a page.
func (f *flow) block(x, w float64, text, style string, size float64, color RGB) {
	lines := f.wrap(text, w, style, size)
	lh := f.lineHeight(size)
	if h := lh * float64(len(lines)); h <= f.bodyHeight() {
		f.ensure(h)
	}
	f.place(x, w, lines, style, size, color)
}

func (f *flow) bullet(x, w float64, text string) {
	size := f.theme.BodySize
	lines := f.wrap(text, w-bulletIndent, "", size)
	lh := f.lineHeight(size)
	if h := lh * float64(len(lines)); h <= f.bodyHeight() {
		f.ensure(h)
	} else {
		f.ensure(lh)
	}
	f.emit(Instruction{Kind: InstrText, X: x, Y: f.y, W: bulletIndent, H: lh, Text: "•", Size: size, Color: f.theme.Primary})
	f.place(x+bulletIndent, w-bulletIndent, lines, "", size, f.theme.Text)
}

// lines places wrapped text without a page-break check; used for the header.
func (f *flow) lines(x, w float64, text, style string, size float64, color RGB) {
	f.place(x, w, f.wrap(text, w, style, size), style, size, color)
}

func (f *flow) place(x, w float64, lines []string, style string, size float64, color RGB) {
	lh := f.lineHeight(size)
	for _, line := range lines {
		f.ensure(lh)
		f.emit(Instruction{Kind: InstrText, X: x, Y: f.y, W: w, H: lh, Text: line, Style: style, Size: size, Color: color})
		f.y += lh
	}
}

// wrap breaks text greedily at spaces. Words wider than the line are split by rune.
func (f *flow) wrap(text string, width float64, style string, size float64) []string {
	fits := func(s string) bool { return f.measure.Width(s, style, size) <= width }

	var out []string
	current := ""
	for _, word := range strings.Fields(text) {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if fits(candidate) {
			current = candidate
			continue
		}
		if current != "" {
			out = append(out, current)
			current = ""
		}
		if fits(word) {
			current = word
			continue
		}
		out = append(out, splitRunes(word, fits)...)
		current = out[len(out)-1]
		out = out[:len(out)-1]
	}
	if current != "" {
		out = append(out, current)
	}
	return out
}

func splitRunes(word string, fits func(string) bool) []string {
	var out []string
	var current []rune
	for _, r := range word {
		next := append(current, r)
		if len(current) > 0 && !fits(string(next)) {
			out = append(out, string(current))
			next = []rune{r}
		}
		current = next
	}
	if len(current) > 0 {
		out = append(out, string(current))
	}
	return out
}
