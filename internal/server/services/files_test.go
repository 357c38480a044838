package services

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/avolkovs/codepad/internal/common"
	"github.com/avolkovs/codepad/internal/server/models"
)

// fakeFilesRepo keeps files in an id-ordered slice, mirroring the ordering
// guarantee of the real repository.
type fakeFilesRepo struct {
	nextID int64
	items  []*models.File
}

func newFakeFilesRepo() *fakeFilesRepo {
	return &fakeFilesRepo{nextID: 1}
}

// seed inserts a file with an explicit id, keeping ascending order intact.
func (f *fakeFilesRepo) seed(id, ownerID int64, title, source string) {
	f.items = append(f.items, &models.File{ID: id, Title: title, SourceCode: source, UserID: ownerID})
	if id >= f.nextID {
		f.nextID = id + 1
	}
}

func (f *fakeFilesRepo) Create(ctx context.Context, file *models.File) (*models.File, error) {
	file.ID = f.nextID
	f.nextID++
	f.items = append(f.items, file)
	return file, nil
}

func (f *fakeFilesRepo) ListByOwner(ctx context.Context, ownerID int64) ([]*models.File, error) {
	var out []*models.File
	for _, it := range f.items {
		if it.UserID == ownerID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeFilesRepo) UpdateSource(ctx context.Context, ownerID, id int64, sourceCode string) error {
	for _, it := range f.items {
		if it.ID == id && it.UserID == ownerID {
			it.SourceCode = sourceCode
			return nil
		}
	}
	return common.ErrorNotFound
}

func (f *fakeFilesRepo) Delete(ctx context.Context, ownerID, id int64) error {
	for i, it := range f.items {
		if it.ID == id && it.UserID == ownerID {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return common.ErrorNotFound
}

// newFileService wires the service to fakes plus a sqlmock handle so the
// delete transaction has something to Begin/Commit against.
func newFileService(t *testing.T, repo *fakeFilesRepo) (*FileService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewFileService(db, &fakeRepoManager{f: repo}), mock
}

func TestFileCreateThenGet_RoundTrip(t *testing.T) {
	repo := newFakeFilesRepo()
	s, _ := newFileService(t, repo)
	ctx := context.Background()

	created, err := s.Create(ctx, 1, "main.go", "package main")
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	got, err := s.Get(ctx, 1, created.ID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.Title != "main.go" || got.SourceCode != "package main" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestFileList_Ordered(t *testing.T) {
	repo := newFakeFilesRepo()
	repo.seed(3, 1, "a", "")
	repo.seed(7, 1, "b", "")
	repo.seed(9, 2, "other owner", "")
	repo.seed(12, 1, "c", "")
	s, _ := newFileService(t, repo)

	list, err := s.List(context.Background(), 1)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	want := []int64{3, 7, 12}
	if len(list) != len(want) {
		t.Fatalf("wrong list length: got %d want %d", len(list), len(want))
	}
	for i, id := range want {
		if list[i].ID != id {
			t.Fatalf("position %d: got id %d want %d", i, list[i].ID, id)
		}
	}
}

func TestLocate(t *testing.T) {
	ids := []int64{3, 7, 9, 12}
	var list []*models.File
	for _, id := range ids {
		list = append(list, &models.File{ID: id})
	}

	for want, id := range ids {
		pos, ok := locate(list, id)
		if !ok || pos != want {
			t.Fatalf("locate(%d): got (%d,%v) want (%d,true)", id, pos, ok, want)
		}
	}
	for _, id := range []int64{1, 4, 8, 10, 100} {
		if _, ok := locate(list, id); ok {
			t.Fatalf("locate(%d): expected miss", id)
		}
	}
	if _, ok := locate(nil, 1); ok {
		t.Fatalf("locate on empty list: expected miss")
	}
}

func TestFileGet_OwnershipScoped(t *testing.T) {
	repo := newFakeFilesRepo()
	repo.seed(5, 1, "mine", "")
	s, _ := newFileService(t, repo)

	if _, err := s.Get(context.Background(), 2, 5); err != common.ErrFileNotFound {
		t.Fatalf("expected ErrFileNotFound for another owner's file, got %v", err)
	}
}

func TestFileUpdate_SourceOnly(t *testing.T) {
	repo := newFakeFilesRepo()
	repo.seed(5, 1, "title stays", "old")
	s, _ := newFileService(t, repo)
	ctx := context.Background()

	updated, err := s.Update(ctx, 1, 5, "new")
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if updated.SourceCode != "new" || updated.Title != "title stays" {
		t.Fatalf("update touched the wrong fields: %+v", updated)
	}

	got, err := s.Get(ctx, 1, 5)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.SourceCode != "new" || got.Title != "title stays" {
		t.Fatalf("persisted state wrong: %+v", got)
	}
}

func TestFileUpdate_NotFound(t *testing.T) {
	s, _ := newFileService(t, newFakeFilesRepo())

	if _, err := s.Update(context.Background(), 1, 42, "x"); err != common.ErrFileNotFound {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}
}

func TestFileDelete_NeighborLaw(t *testing.T) {
	ctx := context.Background()

	// deleting id 7 (position 1) returns the predecessor, id 3
	repo := newFakeFilesRepo()
	for _, id := range []int64{3, 7, 9, 12} {
		repo.seed(id, 1, "f", "")
	}
	s, mock := newFileService(t, repo)
	mock.ExpectBegin()
	mock.ExpectCommit()

	neighbor, err := s.Delete(ctx, 1, 7)
	if err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if neighbor == nil || *neighbor != 3 {
		t.Fatalf("deleting 7: expected neighbor 3, got %v", neighbor)
	}

	// deleting the first file (position 0) returns the successor
	repo = newFakeFilesRepo()
	for _, id := range []int64{3, 7, 9, 12} {
		repo.seed(id, 1, "f", "")
	}
	s, mock = newFileService(t, repo)
	mock.ExpectBegin()
	mock.ExpectCommit()

	neighbor, err = s.Delete(ctx, 1, 3)
	if err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if neighbor == nil || *neighbor != 7 {
		t.Fatalf("deleting 3: expected neighbor 7, got %v", neighbor)
	}

	// deleting the sole remaining file returns no neighbor
	repo = newFakeFilesRepo()
	repo.seed(5, 1, "last", "")
	s, mock = newFileService(t, repo)
	mock.ExpectBegin()
	mock.ExpectCommit()

	neighbor, err = s.Delete(ctx, 1, 5)
	if err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if neighbor != nil {
		t.Fatalf("deleting the last file: expected no neighbor, got %d", *neighbor)
	}

	if list, _ := repo.ListByOwner(ctx, 1); len(list) != 0 {
		t.Fatalf("file not removed")
	}
}

func TestFileDelete_NotFound(t *testing.T) {
	repo := newFakeFilesRepo()
	repo.seed(5, 1, "f", "")
	s, mock := newFileService(t, repo)
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := s.Delete(context.Background(), 1, 404)
	if !errors.Is(err, common.ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}

	if list, _ := repo.ListByOwner(context.Background(), 1); len(list) != 1 {
		t.Fatalf("miss must not remove anything")
	}
}
