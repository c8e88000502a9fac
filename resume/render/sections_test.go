package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-builder/resume/model"
)

func TestDateRange(t *testing.T) {
	cases := []struct {
		start, end string
		current    bool
		want       string
	}{
		{"", "2021", false, ""},
		{"2020-01", "", false, "2020-01"},
		{"2020-01", "2021-06", false, "2020-01 – 2021-06"},
		{"2020-01", "2021-06", true, "2020-01 – Present"},
		{"2020", "", true, "2020 – Present"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, DateRange(tc.start, tc.end, tc.current), "%+v", tc)
	}
}

func TestParseDescriptionBullets(t *testing.T) {
	lines := ParseDescription("Led the team\n• Shipped v2\n- Cut costs\n\n  * Hired 4  \n–Ran ops\n▪ Wrote docs\n·\n")
	require.Len(t, lines, 6)
	assert.Equal(t, Line{Text: "Led the team"}, lines[0])
	for i, want := range []string{"Shipped v2", "Cut costs", "Hired 4", "Ran ops", "Wrote docs"} {
		assert.Equal(t, Line{Text: want, Bullet: true}, lines[i+1])
	}
}

func TestBuildSectionsSkipsEmpty(t *testing.T) {
	assert.Empty(t, BuildSections(model.Content{Personal: model.Personal{FullName: "Jane Doe"}}))

	sections := BuildSections(model.Content{
		Experience: []model.Experience{{}},
		Education:  []model.Education{{Degree: "BSc", Field: "Computer Science", School: "MIT", GPA: "3.9"}},
		Skills:     model.Skills{Rated: []model.RatedSkill{{Name: "Go", Level: 4}}},
	})
	require.Len(t, sections, 2)
	assert.Equal(t, SectionEducation, sections[0].Key)
	assert.Equal(t, "BSc in Computer Science", sections[0].Entries[0].Title)
	assert.Equal(t, "MIT", sections[0].Entries[0].Meta)
	assert.Equal(t, "GPA: 3.9", sections[0].Entries[0].Lines[0].Text)
	assert.Equal(t, SectionSkills, sections[1].Key)
	assert.Equal(t, "Proficiency: Go (4/5)", sections[1].Entries[0].Lines[0].Text)
}

func TestBuildSectionsOrderAndMeta(t *testing.T) {
	c := model.Content{
		Personal:     model.Personal{Summary: "Builder."},
		Activities:   []model.Activity{{Title: "Mentor"}},
		Certificates: []model.Certificate{{Name: "CKA", Issuer: "CNCF", Date: "2022"}},
		Projects:     []model.Project{{Name: "Tool", Technologies: []string{"Go", " "}}},
		Skills:       model.Skills{Technical: []string{"Go"}},
		Education:    []model.Education{{School: "MIT"}},
		Experience:   []model.Experience{{JobTitle: "Engineer", Company: "Acme", Location: "", StartDate: "2020"}},
	}
	sections := BuildSections(c)
	keys := make([]string, 0, len(sections))
	for _, s := range sections {
		keys = append(keys, s.Key)
	}
	assert.Equal(t, []string{
		SectionSummary, SectionExperience, SectionEducation, SectionSkills,
		SectionProjects, SectionCertificates, SectionActivities,
	}, keys)
	assert.Equal(t, "Acme", sections[1].Entries[0].Meta)
	assert.Equal(t, "2020", sections[1].Entries[0].Dates)
	assert.Equal(t, "Technologies: Go", sections[4].Entries[0].Lines[0].Text)
}

func TestBuildHeader(t *testing.T) {
	h, ok := BuildHeader(model.Personal{Email: "a@b.c", Website: "https://x.dev"})
	require.True(t, ok)
	assert.Equal(t, []string{"a@b.c", "https://x.dev"}, h.Contact)

	_, ok = BuildHeader(model.Personal{Summary: "only summary"})
	assert.False(t, ok)
}

func TestThemeFor(t *testing.T) {
	th := ThemeFor(model.Customization{FontFamily: "Georgia, serif", FontSize: model.FontSizeLarge, ColorScheme: "nope", Spacing: model.SpacingCompact})
	assert.Equal(t, "Times", th.Family)
	assert.Equal(t, 12.0, th.BodySize)
	assert.Equal(t, colorSchemes["blue"], th.Primary)
	assert.Equal(t, 0.85, th.Spacing)

	def := ThemeFor(model.Customization{})
	assert.Equal(t, "Helvetica", def.Family)
	assert.Equal(t, 10.5, def.BodySize)
	assert.Equal(t, "Courier", ThemeFor(model.Customization{FontFamily: "JetBrains Mono"}).Family)
	assert.Equal(t, "2563EB", def.Primary.Hex())
}
