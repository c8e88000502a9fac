package resumes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"resume-builder/resume/history"
)

// PGRepo implements Repo on Postgres, storing document parts as JSONB.
type PGRepo struct {
	DB *sql.DB
}

const pgSelectColumns = `id, owner_id, title, content, customization, versions, share, views, revision, created_at, updated_at, deleted_at`

func (r *PGRepo) Create(ctx context.Context, res Resume) error {
	const query = `
INSERT INTO resumes (
    id,
    owner_id,
    title,
    content,
    customization,
    versions,
    share,
    share_id,
    revision,
    created_at,
    updated_at,
    deleted_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	parts, err := encodeParts(res)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(
		ctx,
		query,
		res.ID,
		res.OwnerID,
		res.Title,
		parts.content,
		parts.customization,
		parts.versions,
		parts.share,
		nullString(res.Share.ShareID),
		res.Revision,
		res.CreatedAt,
		res.UpdatedAt,
		nullTime(res),
	)
	return err
}

func (r *PGRepo) Get(ctx context.Context, id string) (Resume, error) {
	query := `SELECT ` + pgSelectColumns + ` FROM resumes WHERE id = $1`
	return scanResume(r.DB.QueryRowContext(ctx, query, id))
}

func (r *PGRepo) GetByShareID(ctx context.Context, shareID string) (Resume, error) {
	if shareID == "" {
		return Resume{}, ErrNotFound
	}
	query := `SELECT ` + pgSelectColumns + ` FROM resumes WHERE share_id = $1`
	return scanResume(r.DB.QueryRowContext(ctx, query, shareID))
}

func (r *PGRepo) ListByOwner(ctx context.Context, ownerID string, deleted bool, limit, offset int) ([]Resume, error) {
	if offset < 0 {
		offset = 0
	}
	var limitArg any
	if limit > 0 {
		limitArg = limit
	}
	query := `SELECT ` + pgSelectColumns + `
FROM resumes
WHERE owner_id = $1 AND (deleted_at IS NOT NULL) = $2
ORDER BY updated_at DESC, id ASC
LIMIT $3 OFFSET $4`

	rows, err := r.DB.QueryContext(ctx, query, ownerID, deleted, limitArg, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Resume, 0)
	for rows.Next() {
		res, err := scanResume(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

func (r *PGRepo) Update(ctx context.Context, next Resume, expected int64) error {
	const query = `
UPDATE resumes SET
    title = $3,
    content = $4,
    customization = $5,
    versions = $6,
    share = $7,
    share_id = $8,
    revision = $9,
    updated_at = $10,
    deleted_at = $11
WHERE id = $1 AND revision = $2`

	parts, err := encodeParts(next)
	if err != nil {
		return err
	}
	result, err := r.DB.ExecContext(
		ctx,
		query,
		next.ID,
		expected,
		next.Title,
		parts.content,
		parts.customization,
		parts.versions,
		parts.share,
		nullString(next.Share.ShareID),
		next.Revision,
		next.UpdatedAt,
		nullTime(next),
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 1 {
		return nil
	}
	return r.missingOrConflict(ctx, next.ID)
}

func (r *PGRepo) missingOrConflict(ctx context.Context, id string) error {
	var exists bool
	if err := r.DB.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM resumes WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return ErrConflict
}

func (r *PGRepo) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM resumes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) IncrementViews(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `UPDATE resumes SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResume(row rowScanner) (Resume, error) {
	var (
		res                                     Resume
		content, customization, versions, share []byte
		views                                   int64
		deletedAt                               sql.NullTime
	)
	err := row.Scan(
		&res.ID,
		&res.OwnerID,
		&res.Title,
		&content,
		&customization,
		&versions,
		&share,
		&views,
		&res.Revision,
		&res.CreatedAt,
		&res.UpdatedAt,
		&deletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Resume{}, ErrNotFound
		}
		return Resume{}, err
	}
	if err := json.Unmarshal(content, &res.Content); err != nil {
		return Resume{}, fmt.Errorf("decode content: %w", err)
	}
	if err := json.Unmarshal(customization, &res.Customization); err != nil {
		return Resume{}, fmt.Errorf("decode customization: %w", err)
	}
	if err := json.Unmarshal(versions, &res.Versions); err != nil {
		return Resume{}, fmt.Errorf("decode versions: %w", err)
	}
	if err := json.Unmarshal(share, &res.Share); err != nil {
		return Resume{}, fmt.Errorf("decode share: %w", err)
	}
	res.Share.Views = views
	if deletedAt.Valid {
		t := deletedAt.Time
		res.DeletedAt = &t
	}
	return res, nil
}

type encodedParts struct {
	content, customization, versions, share []byte
}

func encodeParts(res Resume) (encodedParts, error) {
	var (
		p   encodedParts
		err error
	)
	if p.content, err = json.Marshal(res.Content); err != nil {
		return p, fmt.Errorf("encode content: %w", err)
	}
	if p.customization, err = json.Marshal(res.Customization); err != nil {
		return p, fmt.Errorf("encode customization: %w", err)
	}
	versions := res.Versions
	if versions == nil {
		versions = []history.Snapshot{}
	}
	if p.versions, err = json.Marshal(versions); err != nil {
		return p, fmt.Errorf("encode versions: %w", err)
	}
	share := res.Share
	share.Views = 0
	if p.share, err = json.Marshal(share); err != nil {
		return p, fmt.Errorf("encode share: %w", err)
	}
	return p, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(res Resume) sql.NullTime {
	if res.DeletedAt == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *res.DeletedAt, Valid: true}
}

var _ Repo = (*PGRepo)(nil)
