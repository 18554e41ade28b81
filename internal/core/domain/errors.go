package domain

import "errors"

var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrPasswordTooLong    = errors.New("password longer than 72 bytes")

	ErrTokenMissing = errors.New("missing token")
	ErrTokenInvalid = errors.New("invalid token")

	ErrNoProfile       = errors.New("no profile for user")
	ErrProfileNotFound = errors.New("profile not found")
)
