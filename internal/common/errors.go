// Package common defines shared sentinel errors used across accountkeeper
// components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Signup errors.
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrEmailTaken       = errors.New("email already registered")
	ErrUsernameTaken    = errors.New("username already registered")

	// Login errors. A missing account and a wrong password are deliberately
	// indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// Account lookup errors surfaced by the profile and reset flows.
	ErrAccountNotFound = errors.New("account not found")

	// Token lifecycle errors.
	ErrInvalidToken     = errors.New("invalid token")
	ErrTokenExpired     = errors.New("token expired")
	ErrTokenAlreadyUsed = errors.New("token already used")

	// Password-reset errors.
	ErrSamePassword = errors.New("new password must differ from the current one")

	// Profile validation errors.
	ErrInvalidAddress = errors.New("invalid address")
	ErrInvalidAge     = errors.New("invalid age")
)
