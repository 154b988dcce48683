package services

import "errors"

var (
	ErrEmailRequired      = errors.New("email is required")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")

	// ErrInvalidToken covers unknown, already-consumed, and reuse-detected
	// tokens. The cases are never distinguished to the client.
	ErrInvalidToken = errors.New("invalid refresh token")
	ErrExpiredToken = errors.New("expired refresh token")

	// ErrStoreUnavailable means persistence failed and the request must
	// fail closed: a refresh is never approved without confirmed state.
	ErrStoreUnavailable = errors.New("token store unavailable")
)
