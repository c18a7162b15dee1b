// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

// Face matching constants
const (
	// MatchTolerance is the maximum euclidean distance between two face encodings
	// for them to be considered the same person. Lower values = stricter matching
	MatchTolerance = 0.6

	// DefaultEncodingDim is the length of a face encoding vector
	DefaultEncodingDim = 128

	// MatchPolicyFirst accepts the first stored encoding within tolerance
	MatchPolicyFirst = "first"

	// MatchPolicyBest accepts the closest stored encoding within tolerance
	MatchPolicyBest = "best"
)

// Processing constants
const (
	// DefaultMaxWorkers is the default number of recognition and registration jobs
	// allowed to run at the same time
	DefaultMaxWorkers = 5

	// DefaultWorkerQueueSize is the default number of jobs allowed to wait for a worker
	DefaultWorkerQueueSize = 64

	// MaxImageSize is the maximum dimension (width or height) sent to the encoder
	MaxImageSize = 1920

	// JPEGQuality is used when re-encoding resized frames
	JPEGQuality = 85
)

// Storage constants
const (
	// DefaultPortraitDir is where registration portraits are stored
	DefaultPortraitDir = "uploads/portraits"

	// DefaultSnapshotDir is where recognition snapshots are stored
	DefaultSnapshotDir = "uploads/face_capture"

	// SnapshotTimeFormat is the timestamp prefix of snapshot filenames
	SnapshotTimeFormat = "20060102_150405"

	// MaxUploadSize is the maximum accepted multipart body size
	MaxUploadSize = 32 << 20
)

// NX Witness constants
const (
	// BookmarkName is the name of every bookmark created on a recognition
	BookmarkName = "Face Recognized"

	// BookmarkTag is attached to every bookmark
	BookmarkTag = "Face Recognition"

	// BookmarkDurationMs is the bookmark length in milliseconds
	BookmarkDurationMs = 1000

	// DefaultNotifyQueueSize is the buffer of pending bookmark notifications
	DefaultNotifyQueueSize = 32

	// DefaultNotifyRetries is the number of attempts per bookmark
	DefaultNotifyRetries = 2
)
