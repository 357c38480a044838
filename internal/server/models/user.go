// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an account row. UserName is stored lowercased; PasswordHash is a
// bcrypt hash, never the plaintext.
type User struct {
	ID           int64
	UserName     string
	PasswordHash string
	CreatedAt    time.Time
}
