package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrTokenExpired       = errors.New("credentials expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrInvalidInput       = errors.New("invalid input")
)
