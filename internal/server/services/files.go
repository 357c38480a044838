package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/avolkovs/codepad/internal/common"
	"github.com/avolkovs/codepad/internal/dbx"
	"github.com/avolkovs/codepad/internal/server/models"
	"github.com/avolkovs/codepad/internal/server/repositories/repomanager"
)

// FileService implements ownership-scoped CRUD over files. All lookups go
// through locate, a binary search over the owner's id-ordered collection; the
// ordering is a byproduct of monotonic id assignment and is preserved by every
// mutation path, so no sort step is ever needed.
type FileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

// NewFileService constructs a FileService using repositories.
func NewFileService(db *sql.DB, m repomanager.RepositoryManager) *FileService {
	return &FileService{db: db, repomanager: m}
}

// Create persists a new file under ownerID. Titles are not unique.
func (s *FileService) Create(ctx context.Context, ownerID int64, title, sourceCode string) (*models.File, error) {
	file := &models.File{Title: title, SourceCode: sourceCode, UserID: ownerID}

	repo := s.repomanager.Files(s.db)
	f, err := repo.Create(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("error creating file: %w", err)
	}
	return f, nil
}

// List returns the owner's files in ascending-identifier order.
func (s *FileService) List(ctx context.Context, ownerID int64) ([]*models.File, error) {
	repo := s.repomanager.Files(s.db)
	list, err := repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("error listing files: %w", err)
	}
	return list, nil
}

// locate finds id within the id-sorted list and returns its zero-based
// position. The second return is false when the id is absent.
func locate(list []*models.File, id int64) (int, bool) {
	pos := sort.Search(len(list), func(i int) bool { return list[i].ID >= id })
	if pos < len(list) && list[pos].ID == id {
		return pos, true
	}
	return 0, false
}

// Get returns the owner's file with the given id, or ErrFileNotFound.
func (s *FileService) Get(ctx context.Context, ownerID, id int64) (*models.File, error) {
	list, err := s.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	pos, ok := locate(list, id)
	if !ok {
		return nil, common.ErrFileNotFound
	}
	return list[pos], nil
}

// Update replaces the source text of the owner's file. The title is immutable
// in this flow. Returns the updated file, or ErrFileNotFound.
func (s *FileService) Update(ctx context.Context, ownerID, id int64, sourceCode string) (*models.File, error) {
	file, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	repo := s.repomanager.Files(s.db)
	if err := repo.UpdateSource(ctx, ownerID, id, sourceCode); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// deleted between locate and update
			return nil, common.ErrFileNotFound
		}
		return nil, fmt.Errorf("error updating file: %w", err)
	}

	file.SourceCode = sourceCode
	return file, nil
}

// Delete removes the owner's file and returns the identifier the caller
// should navigate to next: the file immediately before the removed one in
// id order, or the one immediately after when the removed file was first.
// When the deleted file was the owner's last, no neighbor is returned.
// List, neighbor selection and removal run in one transaction so the
// neighbor always reflects the collection the file was removed from.
func (s *FileService) Delete(ctx context.Context, ownerID, id int64) (*int64, error) {
	var neighbor *int64

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Files(tx)

		list, err := repo.ListByOwner(ctx, ownerID)
		if err != nil {
			return fmt.Errorf("error listing files: %w", err)
		}

		pos, ok := locate(list, id)
		if !ok {
			return common.ErrFileNotFound
		}

		if len(list) > 1 {
			n := pos - 1
			if pos == 0 {
				n = pos + 1
			}
			neighborID := list[n].ID
			neighbor = &neighborID
		}

		if err := repo.Delete(ctx, ownerID, id); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrFileNotFound
			}
			return fmt.Errorf("error deleting file: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return neighbor, nil
}
