// Package api implements the HTTP client for the codepad server. It keeps the
// current access token and transparently replaces it whenever a response
// carries a sliding-refresh replacement.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrUnavailable indicates the server could not be reached at all.
var ErrUnavailable = errors.New("server unavailable")

type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Token returns the current access token, empty when not logged in.
func (c *Client) Token() string {
	return c.token
}

// Logout drops the stored access token.
func (c *Client) Logout() {
	c.token = ""
}

type File struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	SourceCode string `json:"source_code"`
}

type credentialsRequest struct {
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

type messageResponse struct {
	Msg         string `json:"msg"`
	AccessToken string `json:"access_token"`
}

type loginResponse struct {
	Username    string `json:"username"`
	AccessToken string `json:"access_token"`
}

type fileResponse struct {
	File        File   `json:"file"`
	AccessToken string `json:"access_token"`
}

type fileListResponse struct {
	Files       []File `json:"files"`
	AccessToken string `json:"access_token"`
}

type deleteFileResponse struct {
	NextFile    *int64 `json:"next_file"`
	AccessToken string `json:"access_token"`
}

// do performs one request/response round trip. On success the body is decoded
// into out; if it carried a replacement access token, the stored one is
// swapped. On failure the server's msg is surfaced as the error.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {

	var body *bytes.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var msg messageResponse
		if err := json.NewDecoder(resp.Body).Decode(&msg); err == nil && msg.Msg != "" {
			return fmt.Errorf("server: %s", msg.Msg)
		}
		return fmt.Errorf("server: unexpected status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	if refreshed, ok := out.(interface{ refreshedToken() string }); ok {
		if token := refreshed.refreshedToken(); token != "" {
			c.token = token
		}
	}

	return nil
}

func (r *messageResponse) refreshedToken() string    { return r.AccessToken }
func (r *loginResponse) refreshedToken() string      { return r.AccessToken }
func (r *fileResponse) refreshedToken() string       { return r.AccessToken }
func (r *fileListResponse) refreshedToken() string   { return r.AccessToken }
func (r *deleteFileResponse) refreshedToken() string { return r.AccessToken }

func (c *Client) Register(ctx context.Context, userName, password string) error {
	return c.do(ctx, http.MethodPost, "/create-user", credentialsRequest{Username: userName, Password: password}, nil)
}

func (c *Client) Login(ctx context.Context, userName, password string) (string, error) {
	var out loginResponse
	if err := c.do(ctx, http.MethodPost, "/login", credentialsRequest{Username: userName, Password: password}, &out); err != nil {
		return "", err
	}
	return out.Username, nil
}

func (c *Client) CreateFile(ctx context.Context, title, sourceCode string) (*File, error) {
	var out fileResponse
	if err := c.do(ctx, http.MethodPost, "/new-file", newFileRequest{Title: title, SourceCode: sourceCode}, &out); err != nil {
		return nil, err
	}
	return &out.File, nil
}

func (c *Client) ListFiles(ctx context.Context) ([]File, error) {
	var out fileListResponse
	if err := c.do(ctx, http.MethodGet, "/fetch-files", nil, &out); err != nil {
		return nil, err
	}
	return out.Files, nil
}

func (c *Client) GetFile(ctx context.Context, id int64) (*File, error) {
	var out fileResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/fetch-file/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out.File, nil
}

func (c *Client) UpdateFile(ctx context.Context, id int64, sourceCode string) error {
	var out messageResponse
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/update-file/%d", id), updateFileRequest{SourceCode: sourceCode}, &out)
}

// DeleteFile removes the file and returns the id of the neighbor the server
// suggests showing next, or nil when no files remain.
func (c *Client) DeleteFile(ctx context.Context, id int64) (*int64, error) {
	var out deleteFileResponse
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/fetch-file/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return out.NextFile, nil
}
