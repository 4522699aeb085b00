package models

import "errors"

// Application-wide standard errors
var (
	// Common Resource Errors
	ErrNotFound    = errors.New("resource not found")
	ErrKeyNotFound = errors.New("key not found in storage")

	// User & Authentication Errors
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthorized       = errors.New("unauthorized")

	// Token Errors
	ErrTokenInvalid   = errors.New("token is invalid")
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenNotFound  = errors.New("token not found in storage")

	// Persistence & Remote Errors
	ErrPersistence = errors.New("failed to persist snapshot")
	ErrRemote      = errors.New("remote store request failed")
	ErrUnavailable = errors.New("service unavailable")
	// ErrStorageUnavailable means a stored snapshot exists but could not be read.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// General Request Errors
	ErrInvalidInput = errors.New("invalid input data")
)
