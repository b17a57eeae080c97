package auth

import "errors"

var (
	// ErrInvalidCredentials signals a failed email/password check.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized signals a missing, expired, or revoked session.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrUserNotFound signals the user record could not be located.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailAlreadyExists signals a duplicate email on user creation.
	ErrEmailAlreadyExists = errors.New("email already exists")
	// ErrWeakCredentials signals an email/password pair failing basic policy.
	ErrWeakCredentials = errors.New("credentials do not meet requirements")
)
