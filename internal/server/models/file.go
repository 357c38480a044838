package models

// File is a source document owned by exactly one user. UserID is immutable
// after creation; ids are assigned monotonically by the database, so a user's
// files ordered by id are also in insertion order.
type File struct {
	ID         int64
	Title      string
	SourceCode string
	UserID     int64
}
