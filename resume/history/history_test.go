package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-builder/resume/model"
)

func janeContent() model.Content {
	return model.Content{
		Personal: model.Personal{FullName: "Jane Doe"},
		Experience: []model.Experience{
			{JobTitle: "Engineer", Company: "Acme", StartDate: "2020-01", Current: true},
		},
	}
}

func TestNextVersion(t *testing.T) {
	assert.Equal(t, 1, NextVersion(nil))
	assert.Equal(t, 4, NextVersion([]Snapshot{{Version: 1}, {Version: 3}, {Version: 2}}))
}

func TestTakeCopiesContent(t *testing.T) {
	c := janeContent()
	snap := Take(1, c, model.DefaultCustomization(), "first", time.Now())
	c.Experience[0].Company = "Changed"
	assert.Equal(t, "Acme", snap.Content.Experience[0].Company)
	assert.Equal(t, "first", snap.Comment)
}

func TestFindAndSorted(t *testing.T) {
	snaps := []Snapshot{{Version: 2}, {Version: 1}}
	_, ok := Find(snaps, 3)
	assert.False(t, ok)
	s, ok := Find(snaps, 1)
	require.True(t, ok)
	assert.Equal(t, 1, s.Version)
	sorted := Sorted(snaps)
	assert.Equal(t, []int{1, 2}, []int{sorted[0].Version, sorted[1].Version})
	assert.Equal(t, 2, snaps[0].Version, "Sorted must not reorder input")
}

func TestCompareIdenticalIsEmpty(t *testing.T) {
	a := State{Content: janeContent(), Customization: model.DefaultCustomization()}
	b := State{Content: janeContent().Clone(), Customization: model.DefaultCustomization()}
	assert.Empty(t, Compare(a, b))
}

func TestCompareTreatsNilAndEmptyListsAlike(t *testing.T) {
	a := State{Content: model.Content{Projects: []model.Project{{Name: "p"}}}}
	b := State{Content: model.Content{Projects: []model.Project{{Name: "p", Technologies: []string{}}}, Education: []model.Education{}}}
	assert.Empty(t, Compare(a, b))
}

func TestCompareRemovedEntry(t *testing.T) {
	a := State{Content: janeContent()}
	b := State{Content: model.Content{Personal: model.Personal{FullName: "Jane Doe"}}}

	sections := Compare(a, b)
	d := Diff{From: 1, To: 2, Sections: sections}
	exp, ok := d.Section("experience")
	require.True(t, ok)
	require.Len(t, exp.Changes, 1)
	assert.Equal(t, "experience[0]", exp.Changes[0].Path)
	assert.Equal(t, Removed, exp.Changes[0].Kind)
	_, ok = d.Section("personal")
	assert.False(t, ok)
}

func TestCompareIsOrderSensitive(t *testing.T) {
	first := model.Experience{Company: "Acme"}
	second := model.Experience{Company: "Globex"}
	a := State{Content: model.Content{Experience: []model.Experience{first, second}}}
	b := State{Content: model.Content{Experience: []model.Experience{second, first}}}

	sections := Compare(a, b)
	require.Len(t, sections, 1)
	require.Len(t, sections[0].Changes, 2)
	for _, c := range sections[0].Changes {
		assert.Equal(t, Changed, c.Kind)
		require.Len(t, c.Fields, 1)
		assert.Contains(t, c.Fields[0].Path, ".company")
	}
}

func TestCompareScalarsSkillsAndCustomization(t *testing.T) {
	a := State{
		Content:       model.Content{Personal: model.Personal{FullName: "Jane"}, Skills: model.Skills{Technical: []string{"Go"}}},
		Customization: model.DefaultCustomization(),
	}
	custom := model.DefaultCustomization()
	custom.ColorScheme = "green"
	b := State{
		Content:       model.Content{Personal: model.Personal{FullName: "Jane Doe"}, Skills: model.Skills{Technical: []string{"Go", "SQL"}}},
		Customization: custom,
	}

	d := Diff{Sections: Compare(a, b)}

	personal, ok := d.Section("personal")
	require.True(t, ok)
	assert.Equal(t, Change{Path: "personal.fullName", Kind: Changed, Old: "Jane", New: "Jane Doe"}, personal.Changes[0])

	skills, ok := d.Section("skills")
	require.True(t, ok)
	assert.Equal(t, "skills.technical[1]", skills.Changes[0].Path)
	assert.Equal(t, Added, skills.Changes[0].Kind)

	cust, ok := d.Section("customization")
	require.True(t, ok)
	assert.Equal(t, "customization.colorScheme", cust.Changes[0].Path)
}
