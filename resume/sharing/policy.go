package sharing

import (
	"time"

	"resume-builder/internal/shared/apperr"
)

// Reason explains a denied share request.
type Reason string

const (
	ReasonNone               Reason = ""
	ReasonNotPublic          Reason = "not_public"
	ReasonExpired            Reason = "expired"
	ReasonWrongPassword      Reason = "wrong_password"
	ReasonDownloadNotAllowed Reason = "download_not_allowed"
)

// Settings is the sharing state of one resume. Password is stored and compared
// in plaintext.
type Settings struct {
	Public        bool       `json:"public"`
	ConsentGiven  bool       `json:"consentGiven"`
	ConsentAt     *time.Time `json:"consentAt,omitempty"`
	ShareID       string     `json:"shareId,omitempty"`
	Password      string     `json:"password,omitempty"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
	AllowDownload bool       `json:"allowDownload"`
	Views         int64      `json:"views"`
}

// HasPassword reports whether a password gate is configured.
func (s Settings) HasPassword() bool {
	return s.Password != ""
}

// Decision is the outcome of Authorize.
type Decision struct {
	Allowed bool
	Reason  Reason
}

// Err maps a denial to a typed error, or nil when allowed.
func (d Decision) Err() error {
	switch d.Reason {
	case ReasonNone:
		if d.Allowed {
			return nil
		}
		return apperr.Forbidden("access denied")
	case ReasonNotPublic:
		return apperr.WithReason(apperr.KindForbidden, string(ReasonNotPublic), "this resume is private")
	case ReasonExpired:
		return apperr.WithReason(apperr.KindExpired, string(ReasonExpired), "this share link has expired")
	case ReasonWrongPassword:
		return apperr.WithReason(apperr.KindForbidden, string(ReasonWrongPassword), "password is incorrect")
	case ReasonDownloadNotAllowed:
		return apperr.WithReason(apperr.KindForbidden, string(ReasonDownloadNotAllowed), "downloads are disabled for this resume")
	default:
		return apperr.Forbidden("access denied")
	}
}

func deny(r Reason) Decision { return Decision{Reason: r} }

// Authorize decides whether an anonymous request may view or download a shared resume.
// Rules apply in order: not public, expired, wrong password, download disallowed.
func Authorize(s Settings, password string, wantsDownload bool, now time.Time) Decision {
	if !s.Public {
		return deny(ReasonNotPublic)
	}
	if s.ExpiresAt != nil && now.After(*s.ExpiresAt) {
		return deny(ReasonExpired)
	}
	if s.HasPassword() && password != s.Password {
		return deny(ReasonWrongPassword)
	}
	if wantsDownload && !s.AllowDownload {
		return deny(ReasonDownloadNotAllowed)
	}
	return Decision{Allowed: true}
}
