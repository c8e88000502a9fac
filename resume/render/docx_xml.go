package render

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	wmlNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	relNamespace = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
)

// docxRun is a run of text with one style.
type docxRun struct {
	Text  string
	Style RunStyle
}

// docxParagraph is a body paragraph.
type docxParagraph struct {
	Style  string
	Rule   bool
	Indent int
	Hang   int
	Runs   []docxRun
}

type documentWriter struct {
	b strings.Builder
}

func (w *documentWriter) start() {
	w.b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	w.b.WriteString(`<w:document xmlns:w="` + wmlNamespace + `" xmlns:r="` + relNamespace + `"><w:body>`)
}

func (w *documentWriter) paragraph(p docxParagraph) {
	w.b.WriteString("<w:p>")
	if p.Style != "" || p.Rule || p.Indent > 0 {
		w.b.WriteString("<w:pPr>")
		if p.Style != "" {
			w.b.WriteString(`<w:pStyle w:val="` + p.Style + `"/>`)
		}
		if p.Rule {
			w.b.WriteString(`<w:pBdr><w:bottom w:val="single" w:sz="6" w:space="1" w:color="D1D5DB"/></w:pBdr>`)
		}
		if p.Indent > 0 {
			w.b.WriteString(`<w:ind w:left="` + strconv.Itoa(p.Indent) + `"`)
			if p.Hang > 0 {
				w.b.WriteString(` w:hanging="` + strconv.Itoa(p.Hang) + `"`)
			}
			w.b.WriteString("/>")
		}
		w.b.WriteString("</w:pPr>")
	}
	for _, r := range p.Runs {
		w.run(r)
	}
	w.b.WriteString("</w:p>")
}

// run writes rPr before t; the structure check rejects the reverse.
func (w *documentWriter) run(r docxRun) {
	w.b.WriteString("<w:r>")
	s := r.Style
	if s.Bold || s.Italic || s.Color != "" || s.Size > 0 {
		w.b.WriteString("<w:rPr>")
		if s.Bold {
			w.b.WriteString("<w:b/>")
		}
		if s.Italic {
			w.b.WriteString("<w:i/>")
		}
		if s.Color != "" {
			w.b.WriteString(`<w:color w:val="` + s.Color + `"/>`)
		}
		if s.Size > 0 {
			w.b.WriteString(`<w:sz w:val="` + strconv.Itoa(s.Size) + `"/>`)
		}
		w.b.WriteString("</w:rPr>")
	}
	w.b.WriteString(`<w:t xml:space="preserve">`)
	_ = xml.EscapeText(&w.b, []byte(r.Text))
	w.b.WriteString("</w:t></w:r>")
}

func (w *documentWriter) finish() string {
	// A4 with 2cm margins, in twentieths of a point.
	w.b.WriteString(`<w:sectPr><w:pgSz w:w="11906" w:h="16838"/>`)
	w.b.WriteString(`<w:pgMar w:top="1134" w:right="1134" w:bottom="1134" w:left="1134" w:header="708" w:footer="708" w:gutter="0"/></w:sectPr>`)
	w.b.WriteString("</w:body></w:document>")
	return w.b.String()
}

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
	`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
	`<Default Extension="xml" ContentType="application/xml"/>` +
	`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
	`<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>` +
	`</Types>`

const packageRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
	`</Relationships>`

const documentRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>` +
	`</Relationships>`

const stylesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="` + wmlNamespace + `">` +
	`<w:docDefaults><w:rPrDefault><w:rPr><w:rFonts w:ascii="Calibri" w:hAnsi="Calibri" w:cs="Calibri"/><w:sz w:val="21"/></w:rPr></w:rPrDefault>` +
	`<w:pPrDefault><w:pPr><w:spacing w:after="60" w:line="264" w:lineRule="auto"/></w:pPr></w:pPrDefault></w:docDefaults>` +
	`<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/></w:style>` +
	`<w:style w:type="paragraph" w:styleId="Title"><w:name w:val="Title"/><w:basedOn w:val="Normal"/><w:next w:val="Normal"/><w:pPr><w:spacing w:after="40"/></w:pPr></w:style>` +
	`<w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="heading 1"/><w:basedOn w:val="Normal"/><w:next w:val="Normal"/>` +
	`<w:pPr><w:keepNext/><w:spacing w:before="240" w:after="80"/><w:outlineLvl w:val="0"/></w:pPr></w:style>` +
	`</w:styles>`

// validateDocumentXMLStructure rejects nested paragraphs and run properties placed
// after run text.
func validateDocumentXMLStructure(xmlText string) error {
	decoder := xml.NewDecoder(strings.NewReader(xmlText))
	var stack []xml.Name
	type runState struct {
		seenText bool
	}
	var runs []runState

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("document.xml parse failed: %w\n%s", err, firstLines(xmlText, 5))
		}
		switch t := token.(type) {
		case xml.StartElement:
			stack = append(stack, t.Name)
			if isWmlElement(t.Name, "p") {
				for i := len(stack) - 2; i >= 0; i-- {
					if isWmlElement(stack[i], "p") {
						return fmt.Errorf("document.xml has nested <w:p>\n%s", firstLines(xmlText, 5))
					}
				}
			}
			if isWmlElement(t.Name, "r") {
				runs = append(runs, runState{})
			}
			if isWmlElement(t.Name, "t") && len(runs) > 0 {
				runs[len(runs)-1].seenText = true
			}
			if isWmlElement(t.Name, "rPr") && len(runs) > 0 && runs[len(runs)-1].seenText {
				return fmt.Errorf("document.xml has <w:rPr> after <w:t> in a run\n%s", firstLines(xmlText, 5))
			}
		case xml.EndElement:
			if isWmlElement(t.Name, "r") && len(runs) > 0 {
				runs = runs[:len(runs)-1]
			}
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}
	return nil
}

func isWmlElement(name xml.Name, local string) bool {
	return name.Local == local && name.Space == wmlNamespace
}

func firstLines(text string, count int) string {
	if count <= 0 {
		return ""
	}
	lines := strings.Split(text, "\n")
	if len(lines) > count {
		lines = lines[:count]
	}
	return strings.Join(lines, "\n")
}
