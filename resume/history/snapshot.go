package history

import (
	"sort"
	"time"

	"resume-builder/resume/model"
)

// Snapshot is an immutable capture of a resume's content and customization.
type Snapshot struct {
	Version       int                 `json:"version"`
	Content       model.Content       `json:"content"`
	Customization model.Customization `json:"customization"`
	CreatedAt     time.Time           `json:"createdAt"`
	Comment       string              `json:"comment,omitempty"`
}

// Take copies content and customization into a new snapshot numbered version.
func Take(version int, content model.Content, customization model.Customization, comment string, now time.Time) Snapshot {
	return Snapshot{
		Version:       version,
		Content:       content.Clone(),
		Customization: customization,
		CreatedAt:     now.UTC(),
		Comment:       comment,
	}
}

// NextVersion returns max(version)+1, or 1 for an empty history.
func NextVersion(snaps []Snapshot) int {
	highest := 0
	for _, s := range snaps {
		if s.Version > highest {
			highest = s.Version
		}
	}
	return highest + 1
}

// Find returns the snapshot with the given version number.
func Find(snaps []Snapshot, version int) (Snapshot, bool) {
	for _, s := range snaps {
		if s.Version == version {
			return s, true
		}
	}
	return Snapshot{}, false
}

// Sorted returns a version-ascending copy.
func Sorted(snaps []Snapshot) []Snapshot {
	out := make([]Snapshot, len(snaps))
	copy(out, snaps)
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out
}
