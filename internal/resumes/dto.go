package resumes

import (
	"time"

	"resume-builder/resume/history"
	"resume-builder/resume/model"
	"resume-builder/resume/sharing"
)

// ShareResponse exposes share settings without the password itself.
type ShareResponse struct {
	Public        bool       `json:"public"`
	ConsentGiven  bool       `json:"consentGiven"`
	ConsentAt     *time.Time `json:"consentAt,omitempty"`
	ShareID       string     `json:"shareId,omitempty"`
	HasPassword   bool       `json:"hasPassword"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
	AllowDownload bool       `json:"allowDownload"`
	Views         int64      `json:"views"`
}

// ResumeResponse is the owner's view of a resume.
type ResumeResponse struct {
	ResumeID      string              `json:"resumeId"`
	Title         string              `json:"title"`
	Content       model.Content       `json:"content"`
	Customization model.Customization `json:"customization"`
	Share         ShareResponse       `json:"share"`
	VersionCount  int                 `json:"versionCount"`
	LatestVersion int                 `json:"latestVersion"`
	Revision      int64               `json:"revision"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
	DeletedAt     *time.Time          `json:"deletedAt,omitempty"`
}

// ResumeSummary is a list entry.
type ResumeSummary struct {
	ResumeID     string     `json:"resumeId"`
	Title        string     `json:"title"`
	FullName     string     `json:"fullName,omitempty"`
	Public       bool       `json:"public"`
	VersionCount int        `json:"versionCount"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	DeletedAt    *time.Time `json:"deletedAt,omitempty"`
}

// SharedResumeResponse is what an anonymous viewer sees.
type SharedResumeResponse struct {
	Title         string              `json:"title"`
	Content       model.Content       `json:"content"`
	Customization model.Customization `json:"customization"`
	AllowDownload bool                `json:"allowDownload"`
	Views         int64               `json:"views"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

// VersionResponse is one snapshot.
type VersionResponse struct {
	Version       int                 `json:"version"`
	Comment       string              `json:"comment,omitempty"`
	CreatedAt     time.Time           `json:"createdAt"`
	Content       model.Content       `json:"content"`
	Customization model.Customization `json:"customization"`
}

// VersionSummary is a snapshot list entry without its content.
type VersionSummary struct {
	Version   int       `json:"version"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func toShareResponse(s sharing.Settings) ShareResponse {
	return ShareResponse{
		Public:        s.Public,
		ConsentGiven:  s.ConsentGiven,
		ConsentAt:     s.ConsentAt,
		ShareID:       s.ShareID,
		HasPassword:   s.HasPassword(),
		ExpiresAt:     s.ExpiresAt,
		AllowDownload: s.AllowDownload,
		Views:         s.Views,
	}
}

func toResponse(r Resume) ResumeResponse {
	return ResumeResponse{
		ResumeID:      r.ID,
		Title:         r.Title,
		Content:       r.Content,
		Customization: r.Customization,
		Share:         toShareResponse(r.Share),
		VersionCount:  len(r.Versions),
		LatestVersion: r.NextVersion() - 1,
		Revision:      r.Revision,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
		DeletedAt:     r.DeletedAt,
	}
}

func toSummary(r Resume) ResumeSummary {
	return ResumeSummary{
		ResumeID:     r.ID,
		Title:        r.Title,
		FullName:     r.Content.Personal.FullName,
		Public:       r.Share.Public,
		VersionCount: len(r.Versions),
		UpdatedAt:    r.UpdatedAt,
		DeletedAt:    r.DeletedAt,
	}
}

func toSharedResponse(r Resume) SharedResumeResponse {
	return SharedResumeResponse{
		Title:         r.Title,
		Content:       r.Content,
		Customization: r.Customization,
		AllowDownload: r.Share.AllowDownload,
		Views:         r.Share.Views,
		UpdatedAt:     r.UpdatedAt,
	}
}

func toVersionResponse(s history.Snapshot) VersionResponse {
	return VersionResponse{
		Version:       s.Version,
		Comment:       s.Comment,
		CreatedAt:     s.CreatedAt,
		Content:       s.Content,
		Customization: s.Customization,
	}
}

func toVersionSummary(s history.Snapshot) VersionSummary {
	return VersionSummary{Version: s.Version, Comment: s.Comment, CreatedAt: s.CreatedAt}
}
