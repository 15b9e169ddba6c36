package user

import "errors"

var (
	ErrNotFound = errors.New("user not found")
	// ErrExists covers both unique fields; callers must not reveal which
	// of email or username collided.
	ErrExists = errors.New("user already exists")
)
