package models

import "errors"

// The four failure classes every core operation reports. Operations wrap one
// of these with detail (fmt.Errorf("%w: ...", ErrX)) and the API layer maps
// them to status codes with errors.Is.
var (
	// ErrUnauthenticated indicates an unknown, expired, or logged-out token.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrNotFound indicates an unknown user, channel, DM, or message ID.
	ErrNotFound = errors.New("not found")
	// ErrForbidden indicates the caller lacks membership or ownership.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidInput indicates a length, range, or format violation.
	ErrInvalidInput = errors.New("invalid input")
)
