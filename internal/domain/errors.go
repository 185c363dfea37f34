package domain

import "errors"

var (
	// ErrNotFound is returned when no record matches the requested id.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateEmail is returned when a principal of the same kind
	// already uses the email. Emails are scoped per kind: an admin and a
	// client may share the same address.
	ErrDuplicateEmail = errors.New("a principal with this email already exists")

	// ErrForbidden is returned when an authenticated caller is not
	// allowed to see or mutate a record. Distinct from ErrNotFound: the
	// record exists.
	ErrForbidden = errors.New("access denied")
)
