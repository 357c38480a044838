// Package httpapi exposes the codepad operations as a bearer-token JSON API.
// The boundary layer owns status codes, payload shapes and the attachment of
// sliding-refresh tokens; all business rules live in the services.
package httpapi

import (
	"context"
	"time"

	"github.com/avolkovs/codepad/internal/logging"
	"github.com/avolkovs/codepad/internal/server/auth"
	"github.com/avolkovs/codepad/internal/server/models"
	"github.com/gofiber/fiber/v2"
)

const shutdownTimeout = 10 * time.Second

// SessionManager is the slice of the session service the API needs.
type SessionManager interface {
	Register(ctx context.Context, userName, password string) (*models.User, error)
	Login(ctx context.Context, userName, password string) (*models.User, string, error)
	ResolveUser(ctx context.Context, token string) (*models.User, *auth.Claims, error)
	RefreshIfNeeded(claims *auth.Claims) (string, error)
}

// FileStore is the slice of the file service the API needs.
type FileStore interface {
	Create(ctx context.Context, ownerID int64, title, sourceCode string) (*models.File, error)
	List(ctx context.Context, ownerID int64) ([]*models.File, error)
	Get(ctx context.Context, ownerID, id int64) (*models.File, error)
	Update(ctx context.Context, ownerID, id int64, sourceCode string) (*models.File, error)
	Delete(ctx context.Context, ownerID, id int64) (*int64, error)
}

// Server wires the fiber application to the services.
type Server struct {
	app      *fiber.App
	addr     string
	logger   logging.Logger
	sessions SessionManager
	files    FileStore
}

// NewServer builds the fiber app and registers all routes.
func NewServer(addr string, logger logging.Logger, sessions SessionManager, files FileStore) *Server {
	s := &Server{
		addr:     addr,
		logger:   logger,
		sessions: sessions,
		files:    files,
	}

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(s.requestLogger())

	app.Get("/ping", s.ping)
	app.Post("/create-user", s.createUser)
	app.Post("/login", s.login)

	app.Post("/new-file", s.requireAuth(), s.newFile)
	app.Get("/fetch-files", s.requireAuth(), s.fetchFiles)
	app.Get("/fetch-file/:id", s.requireAuth(), s.fetchFile)
	app.Delete("/fetch-file/:id", s.requireAuth(), s.deleteFile)
	app.Put("/update-file/:id", s.requireAuth(), s.updateFile)

	s.app = app
	return s
}

// Run listens on the configured address until ctx is cancelled, then shuts
// the server down, allowing in-flight requests to finish.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		errCh <- s.app.Listen(s.addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info(ctx, "shutting down http server")
		return s.app.ShutdownWithTimeout(shutdownTimeout)
	}
}

// App exposes the underlying fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}
