package resumes

import (
	"context"
	"strings"

	"resume-builder/internal/shared/apperr"
	"resume-builder/internal/shared/auth"
	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/resume/history"
)

// SaveVersion snapshots the current content and customization. Numbers are
// assigned under the resume's write lock, so concurrent saves never collide.
func (s *Service) SaveVersion(ctx context.Context, requester auth.Identity, id, comment string) (history.Snapshot, error) {
	comment = strings.TrimSpace(comment)
	if len([]rune(comment)) > maxCommentLength {
		return history.Snapshot{}, apperr.Validation("comment must be at most 500 characters")
	}

	var snap history.Snapshot
	res, err := s.mutate(ctx, requester, id, false, func(r *Resume) error {
		snap = history.Take(r.NextVersion(), r.Content, r.Customization, comment, s.now())
		r.Versions = append(r.Versions, snap)
		return nil
	})
	if err != nil {
		return history.Snapshot{}, err
	}
	metrics.IncVersionSaved()
	telemetry.Info("resume.version_saved", map[string]any{
		"resume_id": id,
		"version":   snap.Version,
	})
	snap.Content.Personal = openPersonal(s.Codec, res.ID, snap.Content.Personal)
	return snap, nil
}

// ListVersions returns decrypted snapshots in ascending version order.
func (s *Service) ListVersions(ctx context.Context, requester auth.Identity, id string) ([]history.Snapshot, error) {
	res, err := s.readable(ctx, requester, id)
	if err != nil {
		return nil, err
	}
	return decrypted(s.Codec, Resume{ID: res.ID, Versions: history.Sorted(res.Versions)}).Versions, nil
}

// RestoreVersion overwrites current content and customization with a snapshot.
// Later snapshots are kept and the pre-restore state is not snapshotted.
func (s *Service) RestoreVersion(ctx context.Context, requester auth.Identity, id string, version int) (Resume, error) {
	res, err := s.mutate(ctx, requester, id, false, func(r *Resume) error {
		snap, ok := history.Find(r.Versions, version)
		if !ok {
			return ErrVersionNotFound
		}
		r.Content = snap.Content.Clone()
		r.Customization = snap.Customization
		return nil
	})
	if err != nil {
		return Resume{}, err
	}
	telemetry.Info("resume.version_restored", map[string]any{"resume_id": id, "version": version})
	return decrypted(s.Codec, res), nil
}

// CompareVersions diffs snapshot v1 against snapshot v2, both decrypted.
func (s *Service) CompareVersions(ctx context.Context, requester auth.Identity, id string, v1, v2 int) (history.Diff, error) {
	res, err := s.readable(ctx, requester, id)
	if err != nil {
		return history.Diff{}, err
	}
	a, ok := history.Find(res.Versions, v1)
	if !ok {
		return history.Diff{}, ErrVersionNotFound
	}
	b, ok := history.Find(res.Versions, v2)
	if !ok {
		return history.Diff{}, ErrVersionNotFound
	}
	return history.Diff{
		From:     v1,
		To:       v2,
		Sections: history.Compare(s.openState(res.ID, history.StateOf(a)), s.openState(res.ID, history.StateOf(b))),
	}, nil
}

// CompareWithCurrent diffs snapshot v against the current content. To is 0.
func (s *Service) CompareWithCurrent(ctx context.Context, requester auth.Identity, id string, v int) (history.Diff, error) {
	res, err := s.readable(ctx, requester, id)
	if err != nil {
		return history.Diff{}, err
	}
	snap, ok := history.Find(res.Versions, v)
	if !ok {
		return history.Diff{}, ErrVersionNotFound
	}
	current := history.State{Content: res.Content, Customization: res.Customization}
	return history.Diff{
		From:     v,
		To:       0,
		Sections: history.Compare(s.openState(res.ID, history.StateOf(snap)), s.openState(res.ID, current)),
	}, nil
}

func (s *Service) openState(resumeID string, st history.State) history.State {
	st.Content = st.Content.Clone()
	st.Content.Personal = openPersonal(s.Codec, resumeID, st.Content.Personal)
	return st
}
