package render

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-pdf/fpdf"

	"resume-builder/internal/shared/apperr"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/resume/model"
)

const photoImageName = "personal-photo"

// PDFRenderer lays content out on A4 pages and writes a PDF. Core fonts are used
// unless the text needs glyphs outside cp1252.
type PDFRenderer struct {
	Photos PhotoResolver
	// Uncompressed leaves content streams readable; used by tests and debugging.
	Uncompressed bool
}

var _ Renderer = (*PDFRenderer)(nil)

// NewPDFRenderer returns a renderer. photos may be nil to disable photo embedding.
func NewPDFRenderer(photos PhotoResolver) *PDFRenderer {
	return &PDFRenderer{Photos: photos}
}

// Render produces the PDF. Photo problems are logged and the photo is left out.
func (r *PDFRenderer) Render(ctx context.Context, content model.Content, customization model.Customization) (out []byte, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			out = nil
			err = apperr.New(apperr.KindRender, fmt.Sprintf("pdf render panic: %v", rec))
		}
	}()

	theme := ThemeFor(customization)
	photo := r.resolvePhoto(ctx, content.Personal.Photo)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(A4.Margin, A4.Margin, A4.Margin)
	pdf.SetCellMargin(0)
	pdf.SetCompression(!r.Uncompressed)
	pdf.SetCreator("resume-builder", false)
	if content.Personal.FullName != "" {
		pdf.SetTitle(content.Personal.FullName, true)
	}
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	if needsUnicodeFont(content) {
		if err := registerUnicodeFont(pdf); err != nil {
			return nil, apperr.Wrap(apperr.KindRender, "load unicode font", err)
		}
		theme.Family = UnicodeFamily
		tr = func(s string) string { return s }
	}

	opts := LayoutOptions{Page: A4}
	if photo != nil {
		opts.PhotoSize = defaultPhotoSize
		pdf.RegisterImageOptionsReader(photoImageName, fpdf.ImageOptions{ImageType: "JPG"}, bytes.NewReader(photo.Data))
	}
	doc := Layout(content, theme, opts, &fpdfMeasurer{pdf: pdf, tr: tr, family: theme.Family})

	for _, page := range doc.Pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pdf.AddPage()
		for _, in := range page.Instructions {
			paint(pdf, tr, theme, in, photo)
		}
	}

	if pdf.Err() {
		return nil, apperr.Wrap(apperr.KindRender, "pdf render failed", pdf.Error())
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, apperr.Wrap(apperr.KindRender, "pdf output failed", err)
	}
	return buf.Bytes(), nil
}

func (r *PDFRenderer) resolvePhoto(ctx context.Context, ref string) *Photo {
	if ref == "" || r.Photos == nil {
		return nil
	}
	photo, err := r.Photos.Resolve(ctx, ref)
	if err != nil {
		telemetry.Warn("render.photo_skipped", map[string]any{
			"error": err.Error(),
			"kind":  string(apperr.KindOf(err)),
		})
		return nil
	}
	return photo
}

func paint(pdf *fpdf.Fpdf, tr func(string) string, theme Theme, in Instruction, photo *Photo) {
	switch in.Kind {
	case InstrText:
		pdf.SetFont(theme.Family, in.Style, in.Size)
		pdf.SetTextColor(in.Color.R, in.Color.G, in.Color.B)
		pdf.SetXY(in.X, in.Y)
		pdf.CellFormat(in.W, in.H, tr(in.Text), "", 0, "L", false, 0, "")
	case InstrRule:
		pdf.SetDrawColor(in.Color.R, in.Color.G, in.Color.B)
		pdf.SetLineWidth(0.3)
		pdf.Line(in.X, in.Y+0.5, in.X+in.W, in.Y+0.5)
	case InstrImage:
		if photo == nil {
			return
		}
		w, h := fitBox(float64(photo.Width), float64(photo.Height), in.W, in.H)
		x := in.X + (in.W-w)/2
		y := in.Y + (in.H-h)/2
		pdf.ImageOptions(photoImageName, x, y, w, h, false, fpdf.ImageOptions{ImageType: "JPG"}, 0, "")
	}
}

// fitBox scales w x h to fit inside boxW x boxH keeping the aspect ratio.
func fitBox(w, h, boxW, boxH float64) (float64, float64) {
	if w <= 0 || h <= 0 {
		return boxW, boxH
	}
	scale := boxW / w
	if s := boxH / h; s < scale {
		scale = s
	}
	return w * scale, h * scale
}

// fpdfMeasurer measures with the active font metrics after translation.
type fpdfMeasurer struct {
	pdf    *fpdf.Fpdf
	tr     func(string) string
	family string
}

func (m *fpdfMeasurer) Width(text, style string, size float64) float64 {
	m.pdf.SetFont(m.family, style, size)
	return m.pdf.GetStringWidth(m.tr(text))
}
