package database

import "errors"

// Column limits of the users and cameras tables
const (
	MaxNameLength     = 50
	MaxEmailLength    = 100
	MaxPhoneLength    = 15
	MaxPathLength     = 255
	MaxIPLength       = 50
	MaxLocationLength = 100
)

var (
	// ErrNotFound is returned when a row with the requested id does not exist
	ErrNotFound = errors.New("not found")

	// ErrDuplicateEmail is returned when the unique email index rejects an insert
	ErrDuplicateEmail = errors.New("email already exists")
)
