package resumes

import "resume-builder/internal/shared/apperr"

var (
	ErrNotFound             = apperr.NotFound("resume not found")
	ErrForbidden            = apperr.Forbidden("you do not have access to this resume")
	ErrVersionNotFound      = apperr.NotFound("version not found")
	ErrConflict             = apperr.New(apperr.KindConflict, "resume was modified concurrently, retry")
	ErrConsentRequired      = apperr.WithReason(apperr.KindValidation, "consent_required", "public sharing requires consent")
	ErrConfirmationRequired = apperr.WithReason(apperr.KindValidation, "confirmation_required", "confirm with the resume title or DELETE")
	ErrNotInTrash           = apperr.WithReason(apperr.KindValidation, "not_deleted", "resume is not in the trash")
	ErrIdentityRequired     = apperr.Forbidden("sign in to manage resumes")
)
