// Package files persists source documents.
package files

import (
	"context"

	"github.com/avolkovs/codepad/internal/server/models"
)

// Repository is the storage contract for files. Every operation except Create
// is scoped to the owning user; a file is never reachable through another
// user's id.
//
// ListByOwner returns files in ascending id order, which — ids being assigned
// monotonically — is also insertion order. Callers rely on that ordering.
type Repository interface {
	Create(ctx context.Context, file *models.File) (*models.File, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*models.File, error)
	UpdateSource(ctx context.Context, ownerID, id int64, sourceCode string) error
	Delete(ctx context.Context, ownerID, id int64) error
}
