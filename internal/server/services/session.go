// Package services contains server-side business logic. This file implements
// SessionService, which handles registration, login, resolving the current
// user from a bearer token, and the sliding-expiration refresh decision.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avolkovs/codepad/internal/common"
	"github.com/avolkovs/codepad/internal/server/auth"
	"github.com/avolkovs/codepad/internal/server/config"
	"github.com/avolkovs/codepad/internal/server/models"
	"github.com/avolkovs/codepad/internal/server/repositories/repomanager"
)

// SessionService provides authentication-related operations:
//   - Register: create accounts (username normalized to lowercase)
//   - Login: verify credentials and mint an access token
//   - ResolveUser: map a bearer token back to its user
//   - RefreshIfNeeded: mint a replacement token when the current one is close
//     to expiring
type SessionService struct {
	db               *sql.DB
	repomanager      repomanager.RepositoryManager
	hasher           *auth.PasswordHasher
	jwtSecret        []byte
	tokenValidity    time.Duration
	refreshThreshold time.Duration
}

// NewSessionService constructs a SessionService using repositories and server config.
func NewSessionService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *SessionService {
	return &SessionService{
		db:               db,
		repomanager:      m,
		hasher:           auth.NewPasswordHasher(cfg.BcryptCost),
		jwtSecret:        []byte(cfg.SecretKey),
		tokenValidity:    cfg.AccessTokenValidityDuration,
		refreshThreshold: cfg.RefreshThreshold,
	}
}

// Register creates a new account. The username is normalized to lowercase
// before storage, and both registration and login compare case-insensitively,
// so no two accounts can differ only in case. The unique index on
// lower(username) makes the database the arbiter when two registrations race.
func (s *SessionService) Register(ctx context.Context, userName, password string) (*models.User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		UserName:     strings.ToLower(strings.TrimSpace(userName)),
		PasswordHash: hash,
	}

	repo := s.repomanager.Users(s.db)
	u, err := repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrUsernameTaken) {
			return nil, common.ErrUsernameTaken
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return u, nil
}

// Login verifies the credentials and, on success, returns the user together
// with a freshly issued access token. A missing user and a wrong password are
// indistinguishable to the caller.
func (s *SessionService) Login(ctx context.Context, userName, password string) (*models.User, string, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByUsername(ctx, strings.TrimSpace(userName))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, "", common.ErrInvalidCredentials
		}
		return nil, "", common.ErrorInternal
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, "", common.ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.tokenValidity)
	if err != nil {
		return nil, "", common.ErrorInternal
	}

	return user, token, nil
}

// ResolveUser validates the token and loads the bound user. Malformed,
// mis-signed and expired tokens fail with the corresponding sentinel from
// common; a token whose user no longer exists is treated as invalid.
func (s *SessionService) ResolveUser(ctx context.Context, tokenString string) (*models.User, *auth.Claims, error) {
	claims, err := auth.ParseToken(tokenString, s.jwtSecret)
	if err != nil {
		return nil, nil, err
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, common.ErrInvalidToken
		}
		return nil, nil, common.ErrorInternal
	}

	return user, claims, nil
}

// RefreshIfNeeded returns a replacement token bound to the same user when the
// remaining lifetime of claims is below the refresh threshold, and "" when the
// current token is still comfortably valid. Each request decides on its own;
// under concurrent access a client may receive several valid tokens, all good
// until their own expirations.
func (s *SessionService) RefreshIfNeeded(claims *auth.Claims) (string, error) {
	if claims.ExpiresAt != nil && time.Until(claims.ExpiresAt.Time) >= s.refreshThreshold {
		return "", nil
	}

	token, err := auth.GenerateToken(claims.UserID, s.jwtSecret, s.tokenValidity)
	if err != nil {
		return "", common.ErrorInternal
	}
	return token, nil
}
