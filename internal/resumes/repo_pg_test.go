package resumes

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"resume-builder/resume/history"
	"resume-builder/resume/model"
	"resume-builder/resume/sharing"
)

var pgColumns = []string{"id", "owner_id", "title", "content", "customization", "versions", "share", "views", "revision", "created_at", "updated_at", "deleted_at"}

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return raw
}

func TestPGRepoCreate(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	res := Resume{
		ID:            "r-1",
		OwnerID:       "user-1",
		Title:         "My Resume",
		Content:       model.Content{Personal: model.Personal{FullName: "Jane"}},
		Customization: model.DefaultCustomization(),
		Revision:      1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	mock.ExpectExec("INSERT INTO resumes").
		WithArgs(
			res.ID,
			res.OwnerID,
			res.Title,
			sqlmock.AnyArg(), // content
			sqlmock.AnyArg(), // customization
			[]byte("[]"),     // versions
			sqlmock.AnyArg(), // share
			nil,              // share_id
			int64(1),
			now,
			now,
			nil, // deleted_at
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), res); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetDecodesJSONBAndViews(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	content := model.Content{Personal: model.Personal{FullName: "Jane"}, Experience: []model.Experience{{Company: "Acme"}}}
	snaps := []history.Snapshot{history.Take(1, content, model.DefaultCustomization(), "first", now)}
	share := sharing.Settings{Public: true, ConsentGiven: true, ShareID: "s-1", Password: "pw"}

	rows := sqlmock.NewRows(pgColumns).AddRow(
		"r-1", "user-1", "My Resume",
		mustJSON(t, content), mustJSON(t, model.DefaultCustomization()), mustJSON(t, snaps), mustJSON(t, share),
		int64(7), int64(3), now, now, nil,
	)
	mock.ExpectQuery("SELECT id, owner_id").WithArgs("r-1").WillReturnRows(rows)

	got, err := repo.Get(context.Background(), "r-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Content.Experience[0].Company != "Acme" {
		t.Fatalf("unexpected content: %+v", got.Content)
	}
	if len(got.Versions) != 1 || got.Versions[0].Comment != "first" {
		t.Fatalf("unexpected versions: %+v", got.Versions)
	}
	if got.Share.Views != 7 || got.Share.ShareID != "s-1" || got.Share.Password != "pw" {
		t.Fatalf("unexpected share: %+v", got.Share)
	}
	if got.Revision != 3 || got.Deleted() {
		t.Fatalf("unexpected revision/deleted: %d %v", got.Revision, got.DeletedAt)
	}
}

func TestPGRepoGetNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("SELECT id, owner_id").WithArgs("missing").WillReturnRows(sqlmock.NewRows(pgColumns))

	if _, err := repo.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoUpdateCompareAndSwap(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	next := Resume{ID: "r-1", OwnerID: "user-1", Title: "t", Revision: 5, UpdatedAt: now, Share: sharing.Settings{ShareID: "s-1"}}

	t.Run("applied", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec("UPDATE resumes SET").
			WithArgs("r-1", int64(4), "t", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), "s-1", int64(5), now, nil).
			WillReturnResult(sqlmock.NewResult(0, 1))
		if err := repo.Update(context.Background(), next, 4); err != nil {
			t.Fatalf("Update: %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("ExpectationsWereMet: %v", err)
		}
	})

	t.Run("stale revision", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec("UPDATE resumes SET").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT EXISTS").WithArgs("r-1").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		if err := repo.Update(context.Background(), next, 4); !errors.Is(err, ErrConflict) {
			t.Fatalf("expected ErrConflict, got %v", err)
		}
	})

	t.Run("missing row", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec("UPDATE resumes SET").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT EXISTS").WithArgs("r-1").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		if err := repo.Update(context.Background(), next, 4); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestPGRepoListByOwnerFiltersDeleted(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	rows := sqlmock.NewRows(pgColumns).AddRow(
		"r-2", "user-1", "Trashed",
		[]byte(`{}`), []byte(`{}`), []byte(`[]`), []byte(`{}`),
		int64(0), int64(2), now, now, now,
	)
	mock.ExpectQuery("FROM resumes").WithArgs("user-1", true, 10, 0).WillReturnRows(rows)

	items, err := repo.ListByOwner(context.Background(), "user-1", true, 10, 0)
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(items) != 1 || !items[0].Deleted() {
		t.Fatalf("expected one deleted resume, got %+v", items)
	}
}

func TestPGRepoIncrementViews(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec("UPDATE resumes SET views = views \\+ 1").WithArgs("r-1").WillReturnResult(sqlmock.NewResult(0, 1))
	if err := repo.IncrementViews(context.Background(), "r-1"); err != nil {
		t.Fatalf("IncrementViews: %v", err)
	}

	mock.ExpectExec("UPDATE resumes SET views").WithArgs("gone").WillReturnResult(sqlmock.NewResult(0, 0))
	if err := repo.IncrementViews(context.Background(), "gone"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
