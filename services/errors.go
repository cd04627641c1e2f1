package services

import "errors"

// Sentinel errors returned by the service layer. Controllers translate
// these into field messages, flash notices, or the access-denied and
// not-found views; they never reach the client verbatim.
var (
	ErrNotFound         = errors.New("record not found")
	ErrForbidden        = errors.New("forbidden")
	ErrUsernameTaken    = errors.New("username already exists")
	ErrEmailTaken       = errors.New("email already exists")
	ErrUserMissing      = errors.New("user does not exist")
	ErrWrongPassword    = errors.New("invalid username or password")
	ErrWrongOldPassword = errors.New("old password does not match")
	ErrTitleTooLong     = errors.New("title too long")
)
