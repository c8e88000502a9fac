package model

import (
	"errors"
	"testing"
)

func TestContentValidateAcceptsEmpty(t *testing.T) {
	if err := (Content{}).Validate(); err != nil {
		t.Fatalf("expected empty content to validate, got %v", err)
	}
}

func TestContentValidateDates(t *testing.T) {
	tests := []struct {
		name    string
		start   string
		wantErr bool
	}{
		{name: "year month", start: "2020-01"},
		{name: "year", start: "2020"},
		{name: "full date", start: "2020-01-31"},
		{name: "present", start: "Present"},
		{name: "bad month", start: "2020-13", wantErr: true},
		{name: "free text", start: "last spring", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Content{Experience: []Experience{{JobTitle: "Engineer", StartDate: tt.start}}}
			err := c.Validate()
			if tt.wantErr && err == nil {
				t.Fatalf("expected error for %q", tt.start)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error for %q: %v", tt.start, err)
			}
		})
	}
}

func TestContentValidateReportsJSONPaths(t *testing.T) {
	c := Content{
		Personal: Personal{Website: "not a url"},
		Skills:   Skills{Rated: []RatedSkill{{Name: "Go", Level: 9}}},
	}
	err := c.Validate()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T %v", err, err)
	}
	if _, ok := verr.Fields["personal.website"]; !ok {
		t.Fatalf("expected personal.website in %v", verr.Fields)
	}
	if _, ok := verr.Fields["skills.rated[0].level"]; !ok {
		t.Fatalf("expected skills.rated[0].level in %v", verr.Fields)
	}
}

func TestContentValidateChecksEveryListEntry(t *testing.T) {
	c := Content{
		Experience:   []Experience{{StartDate: "2020"}, {StartDate: "January"}},
		Education:    []Education{{EndDate: "2021-00"}},
		Projects:     []Project{{URL: "not a url"}},
		Certificates: []Certificate{{Date: "soon"}},
		Activities:   []Activity{{StartDate: "2019-02-30x"}},
	}
	var verr *ValidationError
	if !errors.As(c.Validate(), &verr) {
		t.Fatalf("expected ValidationError")
	}
	for _, key := range []string{
		"experience[1].startDate",
		"education[0].endDate",
		"projects[0].url",
		"certificates[0].date",
		"activities[0].startDate",
	} {
		if _, ok := verr.Fields[key]; !ok {
			t.Fatalf("expected %s in %v", key, verr.Fields)
		}
	}
	if _, ok := verr.Fields["experience[0].startDate"]; ok {
		t.Fatalf("valid entry reported: %v", verr.Fields)
	}
}

func TestCustomizationRejectsUnknownTags(t *testing.T) {
	if err := DefaultCustomization().Validate(); err != nil {
		t.Fatalf("default customization invalid: %v", err)
	}
	bad := Customization{Layout: "three-column", FontSize: "huge", Spacing: "airy"}
	var verr *ValidationError
	if !errors.As(bad.Validate(), &verr) {
		t.Fatalf("expected ValidationError")
	}
	for _, key := range []string{"layout", "fontSize", "spacing"} {
		if _, ok := verr.Fields[key]; !ok {
			t.Fatalf("expected %s in %v", key, verr.Fields)
		}
	}
}

func TestCloneDoesNotShareSlices(t *testing.T) {
	orig := Content{
		Experience: []Experience{{Company: "Acme"}},
		Projects:   []Project{{Name: "p", Technologies: []string{"Go"}}},
	}
	cp := orig.Clone()
	cp.Experience[0].Company = "Changed"
	cp.Projects[0].Technologies[0] = "Rust"
	if orig.Experience[0].Company != "Acme" {
		t.Fatalf("clone shares experience slice")
	}
	if orig.Projects[0].Technologies[0] != "Go" {
		t.Fatalf("clone shares technologies slice")
	}
}
