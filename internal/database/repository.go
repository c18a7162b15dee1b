package database

import (
	"context"
)

// EncodingStore holds the face encodings of registered users
type EncodingStore interface {
	// Add persists one encoding for a user, no de-duplication is done
	Add(ctx context.Context, userID int64, encoding []float64) (int64, error)
	// All returns every stored encoding in insertion order
	All(ctx context.Context) ([]StoredEncoding, error)
	// Count returns the total number of encodings stored
	Count(ctx context.Context) (int, error)
}

// UserReader provides read-only access to users
type UserReader interface {
	// Get returns the user or ErrNotFound
	Get(ctx context.Context, id int64) (*User, error)
	// EmailExists checks the email against existing users
	EmailExists(ctx context.Context, email string) (bool, error)
	// List returns all users ordered by id
	List(ctx context.Context) ([]User, error)
	// ListWithoutEncoding returns users that have no stored encoding
	ListWithoutEncoding(ctx context.Context) ([]User, error)
}

// UserWriter provides write access to users
type UserWriter interface {
	UserReader

	// CreateWithEncoding inserts the user and its first encoding in one transaction.
	// A unique email violation is reported as ErrDuplicateEmail.
	CreateWithEncoding(ctx context.Context, user *User, encoding []float64) error
	// Delete removes the user, its encodings cascade and its logs keep a null user
	Delete(ctx context.Context, id int64) error
}

// RecognitionLogStore appends and lists recognition attempts
type RecognitionLogStore interface {
	// Append writes one log row and fills its ID
	Append(ctx context.Context, log *RecognitionLog) error
	// List returns all log rows, newest first, joined with the user's name
	List(ctx context.Context) ([]RecognitionLogEntry, error)
}

// CameraStore is plain CRUD over cameras
type CameraStore interface {
	List(ctx context.Context) ([]Camera, error)
	Get(ctx context.Context, id int64) (*Camera, error)
	Create(ctx context.Context, camera *Camera) error
	// Update applies a partial update and returns the stored camera, or ErrNotFound
	Update(ctx context.Context, id int64, update CameraUpdate) (*Camera, error)
	// Delete removes the camera or returns ErrNotFound
	Delete(ctx context.Context, id int64) error
}
