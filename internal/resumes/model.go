package resumes

import (
	"time"

	"resume-builder/resume/history"
	"resume-builder/resume/model"
	"resume-builder/resume/sharing"
)

// Resume is the aggregate root. Personal email, phone and address are held as
// encryption tokens everywhere except in decrypted views returned by the service.
type Resume struct {
	ID            string              `json:"id"`
	OwnerID       string              `json:"ownerId"`
	Title         string              `json:"title"`
	Content       model.Content       `json:"content"`
	Customization model.Customization `json:"customization"`
	Versions      []history.Snapshot  `json:"versions"`
	Share         sharing.Settings    `json:"share"`
	Revision      int64               `json:"revision"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
	DeletedAt     *time.Time          `json:"deletedAt,omitempty"`
}

// Deleted reports whether the resume is in the trash.
func (r Resume) Deleted() bool {
	return r.DeletedAt != nil
}

// NextVersion is the number the next snapshot will receive.
func (r Resume) NextVersion() int {
	return history.NextVersion(r.Versions)
}

// Clone returns a copy that shares no slices or pointers with r.
func (r Resume) Clone() Resume {
	out := r
	out.Content = r.Content.Clone()
	out.Versions = make([]history.Snapshot, len(r.Versions))
	for i, s := range r.Versions {
		s.Content = s.Content.Clone()
		out.Versions[i] = s
	}
	if r.Versions == nil {
		out.Versions = nil
	}
	out.Share = cloneShare(r.Share)
	if r.DeletedAt != nil {
		t := *r.DeletedAt
		out.DeletedAt = &t
	}
	return out
}

func cloneShare(s sharing.Settings) sharing.Settings {
	out := s
	if s.ConsentAt != nil {
		t := *s.ConsentAt
		out.ConsentAt = &t
	}
	if s.ExpiresAt != nil {
		t := *s.ExpiresAt
		out.ExpiresAt = &t
	}
	return out
}

// CreateInput seeds a new resume. Zero customization means the defaults.
type CreateInput struct {
	Title         string
	Content       model.Content
	Customization *model.Customization
}

// UpdateInput carries a partial update; nil fields are left unchanged.
type UpdateInput struct {
	Title         *string
	Content       *model.Content
	Customization *model.Customization
}

// ShareUpdate carries a partial share-settings update; nil fields are left unchanged.
// An empty Password clears it.
type ShareUpdate struct {
	Public        *bool
	Consent       *bool
	Password      *string
	ExpiresAt     *time.Time
	ClearExpiry   bool
	AllowDownload *bool
}
