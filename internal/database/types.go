package database

import (
	"time"
)

// User is a registered identity with a reference portrait
type User struct {
	ID           int64
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	PortraitPath string
	IsActive     bool
	IsSuperuser  bool
	CreatedBy    string
	UpdatedBy    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FullName returns the display name used in recognition responses
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// StoredEncoding is a face encoding row together with its owner
type StoredEncoding struct {
	ID        int64
	UserID    int64
	Encoding  []float64
	CreatedAt time.Time
}

// RecognitionLog is one recognition attempt; UserID is nil when nobody matched
type RecognitionLog struct {
	ID               int64
	UserID           *int64
	Timestamp        time.Time
	SnapshotFilename string
	CreatedAt        time.Time
}

// RecognitionLogEntry is a log row joined with the recognized user's name.
// FirstName and LastName are empty when the log is unmatched or the user was deleted.
type RecognitionLogEntry struct {
	RecognitionLog
	FirstName string
	LastName  string
}

// Recognized reports whether the entry resolves to a live user
func (e *RecognitionLogEntry) Recognized() bool {
	return e.UserID != nil && (e.FirstName != "" || e.LastName != "")
}

// Camera is an independent device record
type Camera struct {
	ID        int64
	Name      string
	IPAddress string
	Location  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CameraUpdate holds the fields of a partial camera update; nil fields are left unchanged
type CameraUpdate struct {
	Name      *string
	IPAddress *string
	Location  *string
}

// Empty reports whether the update changes nothing
func (u CameraUpdate) Empty() bool {
	return u.Name == nil && u.IPAddress == nil && u.Location == nil
}

// Apply copies the set fields onto c
func (u CameraUpdate) Apply(c *Camera) {
	if u.Name != nil {
		c.Name = *u.Name
	}
	if u.IPAddress != nil {
		c.IPAddress = *u.IPAddress
	}
	if u.Location != nil {
		c.Location = *u.Location
	}
}
