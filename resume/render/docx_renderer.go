package render

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"strings"
	"time"

	"resume-builder/internal/shared/apperr"
	"resume-builder/resume/model"
)

// DOCXRenderer writes an editable Word document. The output uses one fixed style
// regardless of customization.
type DOCXRenderer struct{}

var _ Renderer = DOCXRenderer{}

// Render produces the DOCX package.
func (DOCXRenderer) Render(ctx context.Context, content model.Content, _ model.Customization) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	documentXML := renderDocumentXMLText(content)
	if err := validateDocumentXMLStructure(documentXML); err != nil {
		return nil, apperr.Wrap(apperr.KindRender, "docx structure invalid", err)
	}

	parts := []struct {
		name string
		body string
	}{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", packageRelsXML},
		{"word/_rels/document.xml.rels", documentRelsXML},
		{"word/styles.xml", stylesXML},
		{"word/document.xml", documentXML},
	}

	var output bytes.Buffer
	writer := zip.NewWriter(&output)
	for _, p := range parts {
		if err := writeZipFile(writer, p.name, []byte(p.body)); err != nil {
			return nil, apperr.Wrap(apperr.KindRender, "write docx part", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, apperr.Wrap(apperr.KindRender, "close docx", err)
	}
	return output.Bytes(), nil
}

func renderDocumentXMLText(content model.Content) string {
	var w documentWriter
	w.start()

	if h, ok := BuildHeader(content.Personal); ok {
		if h.Name != "" {
			w.paragraph(docxParagraph{Style: "Title", Runs: []docxRun{{Text: h.Name, Style: StyleMap["name"]}}})
		}
		if h.Title != "" {
			w.paragraph(docxParagraph{Runs: []docxRun{{Text: h.Title, Style: StyleMap["title"]}}})
		}
		if len(h.Contact) > 0 {
			w.paragraph(docxParagraph{Runs: []docxRun{{Text: strings.Join(h.Contact, " | ")}}})
		}
	}

	for _, s := range BuildSections(content) {
		w.paragraph(docxParagraph{
			Style: "Heading1",
			Rule:  true,
			Runs:  []docxRun{{Text: s.Heading, Style: StyleMap["sectionHeading"]}},
		})
		for _, e := range s.Entries {
			if e.Title != "" {
				w.paragraph(docxParagraph{Runs: []docxRun{{Text: e.Title, Style: StyleMap["roleLine"]}}})
			}
			if e.Meta != "" {
				w.paragraph(docxParagraph{Runs: []docxRun{{Text: e.Meta, Style: StyleMap["meta"]}}})
			}
			if e.Dates != "" {
				w.paragraph(docxParagraph{Runs: []docxRun{{Text: e.Dates, Style: StyleMap["dates"]}}})
			}
			for _, l := range e.Lines {
				if l.Bullet {
					w.paragraph(docxParagraph{Indent: 360, Hang: 220, Runs: []docxRun{{Text: "• " + l.Text}}})
					continue
				}
				w.paragraph(docxParagraph{Indent: 120, Runs: []docxRun{{Text: l.Text}}})
			}
		}
	}
	return w.finish()
}

func readZipFile(file *zip.File) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	return content, nil
}

func writeZipFile(writer *zip.Writer, name string, content []byte) error {
	header := zip.FileHeader{
		Name:     normalizeZipName(name),
		Method:   zip.Deflate,
		Modified: time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	dst, err := writer.CreateHeader(&header)
	if err != nil {
		return err
	}
	if _, err := dst.Write(content); err != nil {
		return err
	}
	return nil
}

func normalizeZipName(name string) string {
	return strings.ReplaceAll(name, "\\", "/")
}

// DocumentXML returns word/document.xml from a DOCX package.
func DocumentXML(docx []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(docx), int64(len(docx)))
	if err != nil {
		return "", err
	}
	for _, file := range reader.File {
		if normalizeZipName(file.Name) == "word/document.xml" {
			content, err := readZipFile(file)
			if err != nil {
				return "", err
			}
			return string(content), nil
		}
	}
	return "", io.ErrUnexpectedEOF
}
