package resumes

import (
	"resume-builder/internal/shared/fieldcrypt"
	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/resume/model"
)

// FieldCodec encrypts personal fields at rest.
type FieldCodec interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(token string) (string, error)
}

type personalField struct {
	name string
	get  func(*model.Personal) *string
}

var encryptedFields = []personalField{
	{name: "email", get: func(p *model.Personal) *string { return &p.Email }},
	{name: "phone", get: func(p *model.Personal) *string { return &p.Phone }},
	{name: "address", get: func(p *model.Personal) *string { return &p.Address }},
}

// sealPersonal encrypts next's sensitive fields. A field whose plaintext matches
// the previous stored value keeps the previous token, so unchanged fields do not
// churn on every save.
func sealPersonal(codec FieldCodec, prev, next model.Personal) (model.Personal, error) {
	if codec == nil {
		return next, nil
	}
	for _, f := range encryptedFields {
		val := f.get(&next)
		if *val == "" || fieldcrypt.IsToken(*val) {
			continue
		}
		old := *f.get(&prev)
		if old != "" && fieldcrypt.IsToken(old) {
			if plain, err := codec.Decrypt(old); err == nil && plain == *val {
				*val = old
				continue
			}
		}
		token, err := codec.Encrypt(*val)
		if err != nil {
			return model.Personal{}, err
		}
		*val = token
	}
	return next, nil
}

// openPersonal decrypts sensitive fields. A token that fails to decrypt becomes
// empty and is logged; values that are not token-shaped pass through.
func openPersonal(codec FieldCodec, resumeID string, p model.Personal) model.Personal {
	if codec == nil {
		return p
	}
	for _, f := range encryptedFields {
		val := f.get(&p)
		if *val == "" || !fieldcrypt.IsToken(*val) {
			continue
		}
		plain, err := codec.Decrypt(*val)
		if err != nil {
			metrics.IncDecryptionFailure()
			telemetry.Warn("resume.decrypt_failed", map[string]any{
				"resume_id": resumeID,
				"field":     f.name,
				"error":     err,
			})
			*val = ""
			continue
		}
		*val = plain
	}
	return p
}

// decrypted returns a view of res with every personal block decrypted.
func decrypted(codec FieldCodec, res Resume) Resume {
	out := res.Clone()
	out.Content.Personal = openPersonal(codec, res.ID, out.Content.Personal)
	for i := range out.Versions {
		out.Versions[i].Content.Personal = openPersonal(codec, res.ID, out.Versions[i].Content.Personal)
	}
	return out
}
