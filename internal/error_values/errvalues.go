package errorvalues

import "errors"

var (
	ErrUserExists       = errors.New("such user already exists")
	ErrUserNotFound     = errors.New("user doesn't exists")
	ErrWrongCredentials = errors.New("wrong email or password")
	ErrInvalidToken     = errors.New("invalid token")

	ErrHabitNotFound = errors.New("habit not found")
	ErrWrongOwner    = errors.New("resource belongs to another user")

	ErrProgressNotFound = errors.New("progress entry not found")
	// Returned when an insert races another request for the same
	// (user, habit, date). Recovered by the toggle, never surfaced.
	ErrProgressConflict = errors.New("progress entry already exists")

	ErrShareNotFound = errors.New("shared progress not found")
	ErrShareExpired  = errors.New("shared progress has expired")
	ErrShareExists   = errors.New("share id already taken")

	ErrValidation  = errors.New("validation error")
	ErrInvalidDate = errors.New("invalid date")
)
