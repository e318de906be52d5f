package repository

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrDuplicate indicates a uniqueness constraint (username, email) was violated.
	ErrDuplicate = errors.New("repository: duplicate key")
)
