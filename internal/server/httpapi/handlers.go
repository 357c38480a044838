package httpapi

import (
	"errors"
	"strconv"

	"github.com/avolkovs/codepad/internal/common"
	"github.com/gofiber/fiber/v2"
)

func (s *Server) ping(c *fiber.Ctx) error {
	return c.JSON(statusResponse{Status: "OK"})
}

func (s *Server) createUser(c *fiber.Ctx) error {
	var req createUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(messageResponse{Msg: "invalid request body"})
	}
	if req.Username == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(messageResponse{Msg: "username and password are required"})
	}

	if _, err := s.sessions.Register(c.UserContext(), req.Username, req.Password); err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(messageResponse{Msg: "user created successfully."})
}

func (s *Server) login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(messageResponse{Msg: "invalid request body"})
	}

	user, token, err := s.sessions.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(loginResponse{Username: user.UserName, AccessToken: token})
}

func (s *Server) newFile(c *fiber.Ctx) error {
	var req newFileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(messageResponse{Msg: "invalid request body"})
	}

	file, err := s.files.Create(c.UserContext(), currentUser(c).ID, req.Title, req.SourceCode)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(fileResponse{File: toFilePayload(file), AccessToken: refreshedToken(c)})
}

func (s *Server) fetchFiles(c *fiber.Ctx) error {
	list, err := s.files.List(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return s.respondError(c, err)
	}

	payloads := make([]filePayload, 0, len(list))
	for _, f := range list {
		payloads = append(payloads, toFilePayload(f))
	}

	return c.JSON(fileListResponse{Files: payloads, AccessToken: refreshedToken(c)})
}

func (s *Server) fetchFile(c *fiber.Ctx) error {
	id, err := fileID(c)
	if err != nil {
		return s.respondError(c, err)
	}

	file, err := s.files.Get(c.UserContext(), currentUser(c).ID, id)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(fileResponse{File: toFilePayload(file), AccessToken: refreshedToken(c)})
}

func (s *Server) updateFile(c *fiber.Ctx) error {
	id, err := fileID(c)
	if err != nil {
		return s.respondError(c, err)
	}

	var req updateFileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(messageResponse{Msg: "invalid request body"})
	}

	if _, err := s.files.Update(c.UserContext(), currentUser(c).ID, id, req.SourceCode); err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(messageResponse{Msg: "file updated.", AccessToken: refreshedToken(c)})
}

func (s *Server) deleteFile(c *fiber.Ctx) error {
	id, err := fileID(c)
	if err != nil {
		return s.respondError(c, err)
	}

	neighbor, err := s.files.Delete(c.UserContext(), currentUser(c).ID, id)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(deleteFileResponse{NextFile: neighbor, AccessToken: refreshedToken(c)})
}

// fileID parses the :id route parameter. A non-numeric id cannot resolve to
// any file, so it is reported the same way as a missing one.
func fileID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return 0, common.ErrFileNotFound
	}
	return id, nil
}

// respondError maps domain errors to HTTP responses. Anything unrecognized is
// a 500 and gets logged; the client only ever sees a generic message.
func (s *Server) respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, common.ErrUsernameTaken):
		return c.Status(fiber.StatusUnauthorized).JSON(messageResponse{Msg: "user already exists."})
	case errors.Is(err, common.ErrInvalidCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(messageResponse{Msg: "Invalid login credentials"})
	case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrTokenExpired):
		return c.Status(fiber.StatusUnauthorized).JSON(messageResponse{Msg: "invalid or expired token"})
	case errors.Is(err, common.ErrFileNotFound):
		return c.Status(fiber.StatusNotFound).JSON(messageResponse{Msg: "file not found"})
	default:
		s.logger.Error(c.UserContext(), "request failed", "error", err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(messageResponse{Msg: "internal error"})
	}
}
