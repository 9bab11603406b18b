package store

import "errors"

var (
	// ErrItemNotFound is returned when an item id is absent from the store
	ErrItemNotFound = errors.New("item not found")

	// ErrUserNotFound is returned when a user lookup misses
	ErrUserNotFound = errors.New("user not found")

	// ErrUsernameTaken is returned when a username is already registered
	ErrUsernameTaken = errors.New("username already taken")

	// ErrEmailTaken is returned when an email is already registered
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials is returned on a username/password mismatch
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrTokenNotFound is returned when a token is absent from the registry
	ErrTokenNotFound = errors.New("token not found")

	// ErrTokenExpired is returned when a token is past its TTL. Validation
	// removes the entry, so a second lookup yields ErrTokenNotFound.
	ErrTokenExpired = errors.New("token expired")
)
