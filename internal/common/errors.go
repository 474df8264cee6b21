package common

import "errors"

// Business logic errors
var (
	// General errors
	ErrNotFound  = errors.New("resource not found")
	ErrForbidden = errors.New("forbidden")

	// Revision workflow errors
	ErrRevisionNotFound     = errors.New("revision not found")
	ErrArticleNotFound      = errors.New("article not found")
	ErrInstructionNotFound  = errors.New("instruction not found")
	ErrInvalidState         = errors.New("invalid state transition")
	ErrActiveRevisionExists = errors.New("an active revision already exists for this article")
	ErrVersionConflict      = errors.New("revision was modified by someone else")

	// Auth errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrUserNotFound = errors.New("user not found")

	// Validation errors
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
)
