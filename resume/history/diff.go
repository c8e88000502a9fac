package history

import (
	"fmt"
	"reflect"
	"strings"

	"resume-builder/resume/model"
)

// ChangeKind describes how a value differs between two versions.
type ChangeKind string

const (
	Added   ChangeKind = "added"
	Removed ChangeKind = "removed"
	Changed ChangeKind = "changed"
)

// Change is one difference. Path uses json names, e.g. "experience[1]" or "personal.fullName".
// Fields lists per-field changes inside a changed list entry.
type Change struct {
	Path   string     `json:"path"`
	Kind   ChangeKind `json:"kind"`
	Old    any        `json:"old,omitempty"`
	New    any        `json:"new,omitempty"`
	Fields []Change   `json:"fields,omitempty"`
}

// SectionDiff groups changes under one top-level field.
type SectionDiff struct {
	Section string   `json:"section"`
	Changes []Change `json:"changes"`
}

// Diff compares two versions. To is 0 when the right side is the current state.
type Diff struct {
	From     int           `json:"from"`
	To       int           `json:"to"`
	Sections []SectionDiff `json:"sections"`
}

// Empty reports whether no differences were found.
func (d Diff) Empty() bool {
	return len(d.Sections) == 0
}

// Section returns the diff for one top-level field, if it changed.
func (d Diff) Section(name string) (SectionDiff, bool) {
	for _, s := range d.Sections {
		if s.Section == name {
			return s, true
		}
	}
	return SectionDiff{}, false
}

// State is the comparable part of a resume.
type State struct {
	Content       model.Content
	Customization model.Customization
}

// StateOf returns the comparable state of a snapshot.
func StateOf(s Snapshot) State {
	return State{Content: s.Content, Customization: s.Customization}
}

// Compare diffs a against b positionally. Reordering list entries counts as a change.
func Compare(a, b State) []SectionDiff {
	var out []SectionDiff

	av := reflect.ValueOf(a.Content)
	bv := reflect.ValueOf(b.Content)
	t := av.Type()
	for i := 0; i < t.NumField(); i++ {
		name := jsonName(t.Field(i))
		changes := compareSection(name, av.Field(i), bv.Field(i))
		if len(changes) > 0 {
			out = append(out, SectionDiff{Section: name, Changes: changes})
		}
	}

	if changes := compareStruct("customization", reflect.ValueOf(a.Customization), reflect.ValueOf(b.Customization)); len(changes) > 0 {
		out = append(out, SectionDiff{Section: "customization", Changes: changes})
	}
	return out
}

func compareSection(path string, a, b reflect.Value) []Change {
	switch a.Kind() {
	case reflect.Slice:
		return compareList(path, a, b)
	case reflect.Struct:
		var out []Change
		t := a.Type()
		for i := 0; i < t.NumField(); i++ {
			sub := path + "." + jsonName(t.Field(i))
			if a.Field(i).Kind() == reflect.Slice {
				out = append(out, compareList(sub, a.Field(i), b.Field(i))...)
				continue
			}
			if !reflect.DeepEqual(a.Field(i).Interface(), b.Field(i).Interface()) {
				out = append(out, Change{Path: sub, Kind: Changed, Old: a.Field(i).Interface(), New: b.Field(i).Interface()})
			}
		}
		return out
	default:
		if !reflect.DeepEqual(a.Interface(), b.Interface()) {
			return []Change{{Path: path, Kind: Changed, Old: a.Interface(), New: b.Interface()}}
		}
		return nil
	}
}

func compareList(path string, a, b reflect.Value) []Change {
	n := a.Len()
	if b.Len() > n {
		n = b.Len()
	}
	var out []Change
	for i := 0; i < n; i++ {
		entryPath := fmt.Sprintf("%s[%d]", path, i)
		switch {
		case i >= a.Len():
			out = append(out, Change{Path: entryPath, Kind: Added, New: b.Index(i).Interface()})
		case i >= b.Len():
			out = append(out, Change{Path: entryPath, Kind: Removed, Old: a.Index(i).Interface()})
		default:
			ai, bi := a.Index(i), b.Index(i)
			if reflect.DeepEqual(ai.Interface(), bi.Interface()) {
				continue
			}
			c := Change{Path: entryPath, Kind: Changed, Old: ai.Interface(), New: bi.Interface()}
			if ai.Kind() == reflect.Struct {
				c.Fields = compareStruct(entryPath, ai, bi)
				if len(c.Fields) == 0 {
					continue
				}
			}
			out = append(out, c)
		}
	}
	return out
}

// compareStruct reports field-level changes; nested slices compare as whole values.
func compareStruct(path string, a, b reflect.Value) []Change {
	var out []Change
	t := a.Type()
	for i := 0; i < t.NumField(); i++ {
		af, bf := a.Field(i).Interface(), b.Field(i).Interface()
		if reflect.DeepEqual(af, bf) || bothEmpty(a.Field(i), b.Field(i)) {
			continue
		}
		out = append(out, Change{Path: path + "." + jsonName(t.Field(i)), Kind: Changed, Old: af, New: bf})
	}
	return out
}

func bothEmpty(a, b reflect.Value) bool {
	return a.Kind() == reflect.Slice && a.Len() == 0 && b.Len() == 0
}

func jsonName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}
