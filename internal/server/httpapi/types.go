package httpapi

import "github.com/avolkovs/codepad/internal/server/models"

type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type newFileRequest struct {
	Title      string `json:"title"`
	SourceCode string `json:"source_code"`
}

type updateFileRequest struct {
	SourceCode string `json:"source_code"`
}

// messageResponse is the generic `{"msg": ...}` body used for confirmations
// and errors. AccessToken carries the sliding-refresh replacement on
// authenticated success responses and is omitted otherwise.
type messageResponse struct {
	Msg         string `json:"msg"`
	AccessToken string `json:"access_token,omitempty"`
}

type loginResponse struct {
	Username    string `json:"username"`
	AccessToken string `json:"access_token"`
}

type filePayload struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	SourceCode string `json:"source_code"`
}

type fileResponse struct {
	File        filePayload `json:"file"`
	AccessToken string      `json:"access_token,omitempty"`
}

type fileListResponse struct {
	Files       []filePayload `json:"files"`
	AccessToken string        `json:"access_token,omitempty"`
}

type deleteFileResponse struct {
	// NextFile is null when the deleted file was the owner's last one.
	NextFile    *int64 `json:"next_file"`
	AccessToken string `json:"access_token,omitempty"`
}

type statusResponse struct {
	Status string `json:"status"`
}

func toFilePayload(f *models.File) filePayload {
	return filePayload{ID: f.ID, Title: f.Title, SourceCode: f.SourceCode}
}
