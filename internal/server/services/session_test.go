package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/avolkovs/codepad/internal/common"
	"github.com/avolkovs/codepad/internal/dbx"
	"github.com/avolkovs/codepad/internal/server/auth"
	"github.com/avolkovs/codepad/internal/server/config"
	"github.com/avolkovs/codepad/internal/server/models"
	filesrepo "github.com/avolkovs/codepad/internal/server/repositories/files"
	usersrepo "github.com/avolkovs/codepad/internal/server/repositories/users"
)

// --- fakes ---

// fakeUsersRepo keeps users in memory. Create enforces the case-insensitive
// uniqueness the real unique index provides.
type fakeUsersRepo struct {
	nextID int64
	byName map[string]*models.User

	createErr error
	getErr    error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{nextID: 1, byName: map[string]*models.User{}}
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.byName[u.UserName]; ok {
		return nil, common.ErrUsernameTaken
	}
	u.ID = f.nextID
	f.nextID++
	u.CreatedAt = time.Now()
	f.byName[u.UserName] = u
	return u, nil
}

func (f *fakeUsersRepo) GetByUsername(ctx context.Context, userName string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	// the real repository compares against lower(username)
	for name, u := range f.byName {
		if name == toLower(userName) {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	for _, u := range f.byName {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func toLower(s string) string {
	b := []byte(s)
	for i := range b {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	f *fakeFilesRepo
}

func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository       { return m.u }
func (m *fakeRepoManager) Files(db dbx.DBTX) filesrepo.Repository       { return m.f }
func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func newSessionService(t *testing.T, rm *fakeRepoManager) *SessionService {
	t.Helper()
	cfg := &config.Config{
		SecretKey:                   "k",
		AccessTokenValidityDuration: time.Hour,
		RefreshThreshold:            30 * time.Minute,
		BcryptCost:                  4, // minimum cost keeps tests fast
	}
	return NewSessionService(nil, rm, cfg)
}

// --- tests ---

func TestRegisterThenLogin_RoundTrip(t *testing.T) {
	rm := &fakeRepoManager{u: newFakeUsersRepo()}
	s := newSessionService(t, rm)
	ctx := context.Background()

	u, err := s.Register(ctx, "Bob", "hunter22")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if u.UserName != "bob" {
		t.Fatalf("username not normalized: got %q", u.UserName)
	}
	if u.PasswordHash == "hunter22" || u.PasswordHash == "" {
		t.Fatalf("password stored as plaintext or empty")
	}

	// case variants of the registered name all authenticate
	for _, name := range []string{"bob", "Bob", "BOB"} {
		user, token, err := s.Login(ctx, name, "hunter22")
		if err != nil {
			t.Fatalf("Login(%q) error: %v", name, err)
		}
		if user.ID != u.ID {
			t.Fatalf("logged in as wrong user: got %d want %d", user.ID, u.ID)
		}

		resolved, _, err := s.ResolveUser(ctx, token)
		if err != nil {
			t.Fatalf("ResolveUser error: %v", err)
		}
		if resolved.ID != u.ID {
			t.Fatalf("token bound to wrong user: got %d want %d", resolved.ID, u.ID)
		}
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	rm := &fakeRepoManager{u: newFakeUsersRepo()}
	s := newSessionService(t, rm)
	ctx := context.Background()

	if _, err := s.Register(ctx, "alice", "pw"); err != nil {
		t.Fatalf("first Register error: %v", err)
	}
	if _, err := s.Register(ctx, "ALICE", "pw2"); err != common.ErrUsernameTaken {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	rm := &fakeRepoManager{u: newFakeUsersRepo()}
	s := newSessionService(t, rm)
	ctx := context.Background()

	if _, err := s.Register(ctx, "carol", "right"); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if _, _, err := s.Login(ctx, "carol", "wrong"); err != common.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_UnknownUser(t *testing.T) {
	rm := &fakeRepoManager{u: newFakeUsersRepo()}
	s := newSessionService(t, rm)

	if _, _, err := s.Login(context.Background(), "nobody", "pw"); err != common.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestResolveUser_BadTokens(t *testing.T) {
	rm := &fakeRepoManager{u: newFakeUsersRepo()}
	s := newSessionService(t, rm)
	ctx := context.Background()

	if _, _, err := s.ResolveUser(ctx, ""); err != common.ErrInvalidToken {
		t.Fatalf("empty token: expected ErrInvalidToken, got %v", err)
	}
	if _, _, err := s.ResolveUser(ctx, "garbage"); err != common.ErrInvalidToken {
		t.Fatalf("malformed token: expected ErrInvalidToken, got %v", err)
	}

	missigned, err := auth.GenerateToken(1, []byte("other-secret"), time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}
	if _, _, err := s.ResolveUser(ctx, missigned); err != common.ErrInvalidToken {
		t.Fatalf("mis-signed token: expected ErrInvalidToken, got %v", err)
	}

	expired, err := auth.GenerateToken(1, []byte("k"), -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}
	if _, _, err := s.ResolveUser(ctx, expired); err != common.ErrTokenExpired {
		t.Fatalf("expired token: expected ErrTokenExpired, got %v", err)
	}
}

func TestResolveUser_DeletedUser(t *testing.T) {
	rm := &fakeRepoManager{u: newFakeUsersRepo()}
	s := newSessionService(t, rm)

	tok, err := auth.GenerateToken(99, []byte("k"), time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}
	if _, _, err := s.ResolveUser(context.Background(), tok); err != common.ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for unknown user, got %v", err)
	}
}

func TestRefreshIfNeeded(t *testing.T) {
	rm := &fakeRepoManager{u: newFakeUsersRepo()}
	s := newSessionService(t, rm)

	fresh, err := auth.GenerateToken(7, []byte("k"), 2*time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}
	claims, err := auth.ParseToken(fresh, []byte("k"))
	if err != nil {
		t.Fatalf("ParseToken error: %v", err)
	}

	replacement, err := s.RefreshIfNeeded(claims)
	if err != nil {
		t.Fatalf("RefreshIfNeeded error: %v", err)
	}
	if replacement != "" {
		t.Fatalf("token with 2h left must not be refreshed")
	}

	closing, err := auth.GenerateToken(7, []byte("k"), 10*time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}
	claims, err = auth.ParseToken(closing, []byte("k"))
	if err != nil {
		t.Fatalf("ParseToken error: %v", err)
	}

	replacement, err = s.RefreshIfNeeded(claims)
	if err != nil {
		t.Fatalf("RefreshIfNeeded error: %v", err)
	}
	if replacement == "" {
		t.Fatalf("token with 10m left must be refreshed")
	}

	newClaims, err := auth.ParseToken(replacement, []byte("k"))
	if err != nil {
		t.Fatalf("replacement token does not parse: %v", err)
	}
	if newClaims.UserID != 7 {
		t.Fatalf("replacement bound to wrong user: got %d", newClaims.UserID)
	}
	if !newClaims.ExpiresAt.Time.After(claims.ExpiresAt.Time) {
		t.Fatalf("replacement must expire later than the original")
	}
}
