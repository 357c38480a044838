// Package users persists account rows.
package users

import (
	"context"

	"github.com/avolkovs/codepad/internal/server/models"
)

// Repository is the storage contract for user accounts.
//
// Create returns common.ErrUsernameTaken when the normalized username is
// already in use; the lookup methods return common.ErrorNotFound when no row
// matches.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByUsername(ctx context.Context, userName string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
}
