package constants

// Handler constants
const (
	// LogTimestampFormat is the timestamp layout of recognition log listings
	LogTimestampFormat = "2006-01-02 15:04:05"

	// PortraitFormField is the multipart field carrying a registration portrait
	PortraitFormField = "portrait"

	// FaceImageFormField is the multipart field carrying a recognition frame
	FaceImageFormField = "faceImage"
)
