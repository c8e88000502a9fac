package render

import (
	"fmt"
	"strings"

	"resume-builder/resume/model"
)

// Section keys in render order.
const (
	SectionHeader       = "header"
	SectionSummary      = "summary"
	SectionExperience   = "experience"
	SectionEducation    = "education"
	SectionSkills       = "skills"
	SectionProjects     = "projects"
	SectionCertificates = "certificates"
	SectionActivities   = "activities"
)

// Header is the identity block at the top of the first page.
type Header struct {
	Name    string
	Title   string
	Contact []string
}

// Line is one paragraph of body text.
type Line struct {
	Text   string
	Bullet bool
}

// Entry is one item of a list section. Any field may be empty.
type Entry struct {
	Title string
	Meta  string
	Dates string
	Lines []Line
}

// Section is a headed group of entries.
type Section struct {
	Key     string
	Heading string
	Entries []Entry
}

// BuildHeader returns the header block and whether it has anything to show.
func BuildHeader(p model.Personal) (Header, bool) {
	h := Header{
		Name:  strings.TrimSpace(p.FullName),
		Title: strings.TrimSpace(p.Title),
	}
	h.Contact = nonEmpty(p.Email, p.Phone, p.Address, p.Website, p.LinkedIn)
	return h, h.Name != "" || h.Title != "" || len(h.Contact) > 0
}

// BuildSections returns the non-empty body sections in fixed order. The header is
// not included.
func BuildSections(c model.Content) []Section {
	var out []Section
	add := func(key, heading string, entries []Entry) {
		if len(entries) > 0 {
			out = append(out, Section{Key: key, Heading: heading, Entries: entries})
		}
	}

	if lines := ParseDescription(c.Personal.Summary); len(lines) > 0 {
		add(SectionSummary, "Summary", []Entry{{Lines: lines}})
	}

	var exp []Entry
	for _, e := range c.Experience {
		entry := Entry{
			Title: e.JobTitle,
			Meta:  joinNonEmpty(" | ", e.Company, e.Location),
			Dates: DateRange(e.StartDate, e.EndDate, e.Current),
			Lines: ParseDescription(e.Description),
		}
		exp = appendEntry(exp, entry)
	}
	add(SectionExperience, "Experience", exp)

	var edu []Entry
	for _, e := range c.Education {
		title := e.Degree
		if e.Field != "" {
			title = joinNonEmpty(" in ", e.Degree, e.Field)
		}
		lines := ParseDescription(e.Description)
		if e.GPA != "" {
			lines = append([]Line{{Text: "GPA: " + e.GPA}}, lines...)
		}
		edu = appendEntry(edu, Entry{
			Title: title,
			Meta:  joinNonEmpty(" | ", e.School, e.Location),
			Dates: DateRange(e.StartDate, e.EndDate, e.Current),
			Lines: lines,
		})
	}
	add(SectionEducation, "Education", edu)

	if !c.Skills.IsEmpty() {
		add(SectionSkills, "Skills", skillEntries(c.Skills))
	}

	var projects []Entry
	for _, p := range c.Projects {
		lines := ParseDescription(p.Description)
		if techs := nonEmpty(p.Technologies...); len(techs) > 0 {
			lines = append(lines, Line{Text: "Technologies: " + strings.Join(techs, ", ")})
		}
		projects = appendEntry(projects, Entry{
			Title: p.Name,
			Meta:  joinNonEmpty(" | ", p.Role, p.URL),
			Dates: DateRange(p.StartDate, p.EndDate, p.Current),
			Lines: lines,
		})
	}
	add(SectionProjects, "Projects", projects)

	var certs []Entry
	for _, cert := range c.Certificates {
		var lines []Line
		if cert.CredentialID != "" {
			lines = append(lines, Line{Text: "Credential ID: " + cert.CredentialID})
		}
		if cert.URL != "" {
			lines = append(lines, Line{Text: cert.URL})
		}
		certs = appendEntry(certs, Entry{
			Title: cert.Name,
			Meta:  cert.Issuer,
			Dates: DateRange(cert.Date, cert.ExpiryDate, false),
			Lines: lines,
		})
	}
	add(SectionCertificates, "Certificates", certs)

	var acts []Entry
	for _, a := range c.Activities {
		acts = appendEntry(acts, Entry{
			Title: a.Title,
			Meta:  joinNonEmpty(" | ", a.Organization, a.Location),
			Dates: DateRange(a.StartDate, a.EndDate, a.Current),
			Lines: ParseDescription(a.Description),
		})
	}
	add(SectionActivities, "Activities", acts)

	return out
}

func skillEntries(s model.Skills) []Entry {
	var lines []Line
	group := func(label string, values []string) {
		if v := nonEmpty(values...); len(v) > 0 {
			lines = append(lines, Line{Text: label + ": " + strings.Join(v, ", ")})
		}
	}
	group("Technical", s.Technical)
	group("Soft", s.Soft)
	group("Languages", s.Languages)
	if len(s.Rated) > 0 {
		rated := make([]string, 0, len(s.Rated))
		for _, r := range s.Rated {
			if strings.TrimSpace(r.Name) == "" {
				continue
			}
			rated = append(rated, fmt.Sprintf("%s (%d/5)", strings.TrimSpace(r.Name), r.Level))
		}
		group("Proficiency", rated)
	}
	if len(lines) == 0 {
		return nil
	}
	return []Entry{{Lines: lines}}
}

// DateRange formats the light date line of an entry. It is empty without a start.
func DateRange(start, end string, current bool) string {
	start = strings.TrimSpace(start)
	end = strings.TrimSpace(end)
	switch {
	case start == "":
		return ""
	case current:
		return start + " – Present"
	case end != "":
		return start + " – " + end
	default:
		return start
	}
}

var bulletPrefixes = []string{"•", "-", "*", "–", "·", "▪"}

// ParseDescription splits free text into paragraphs. Lines starting with a
// bullet marker become bullet items with the marker removed.
func ParseDescription(text string) []Line {
	var out []Line
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		bullet := false
		for _, prefix := range bulletPrefixes {
			if strings.HasPrefix(line, prefix) {
				line = strings.TrimSpace(strings.TrimPrefix(line, prefix))
				bullet = true
				break
			}
		}
		if line == "" {
			continue
		}
		out = append(out, Line{Text: line, Bullet: bullet})
	}
	return out
}

func appendEntry(entries []Entry, e Entry) []Entry {
	if e.Title == "" && e.Meta == "" && e.Dates == "" && len(e.Lines) == 0 {
		return entries
	}
	return append(entries, e)
}

func nonEmpty(values ...string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func joinNonEmpty(sep string, values ...string) string {
	return strings.Join(nonEmpty(values...), sep)
}
