package workflow

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kozaktomas/face-engine/internal/database"
	"github.com/kozaktomas/face-engine/internal/metrics"
	"github.com/kozaktomas/face-engine/internal/notify"
	"go.uber.org/zap"
)

// Recognition is the outcome of one recognition attempt that reached matching
type Recognition struct {
	LogID            int64
	SnapshotFilename string
	User             *database.User // nil when nobody matched
	Distance         float64
}

// Recognized reports whether a registered user matched
func (r *Recognition) Recognized() bool {
	return r.User != nil
}

// Recognizer matches incoming frames against the stored encodings
type Recognizer struct {
	users     database.UserReader
	encodings database.EncodingStore
	logs      database.RecognitionLogStore
	snapshots SnapshotStore
	encoder   Encoder
	matcher   Matcher
	runner    Runner
	notifier  Notifier // nil disables notifications
	log       *zap.Logger
	now       func() time.Time

	// OnOutcome is called once per recognition attempt
	OnOutcome OutcomeFunc
}

// RecognizerDeps are the collaborators of a Recognizer
type RecognizerDeps struct {
	Users     database.UserReader
	Encodings database.EncodingStore
	Logs      database.RecognitionLogStore
	Snapshots SnapshotStore
	Encoder   Encoder
	Matcher   Matcher
	Runner    Runner
	Notifier  Notifier
	Log       *zap.Logger
}

// NewRecognizer creates a recognizer
func NewRecognizer(d RecognizerDeps) *Recognizer {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Recognizer{
		users:     d.Users,
		encodings: d.Encodings,
		logs:      d.Logs,
		snapshots: d.Snapshots,
		encoder:   d.Encoder,
		matcher:   d.Matcher,
		runner:    d.Runner,
		notifier:  d.Notifier,
		log:       log,
		now:       time.Now,
	}
}

// Recognize runs one recognition attempt. cameraID is optional and only selects
// the notification target. The snapshot is always written first; a log row is
// written for every attempt where a face was found.
func (r *Recognizer) Recognize(ctx context.Context, image []byte, cameraID string) (*Recognition, error) {
	var result *Recognition
	err := r.runner.Do(ctx, func(ctx context.Context) error {
		var err error
		result, err = r.recognize(ctx, image, cameraID)
		return err
	})
	r.OnOutcome.record(recognitionOutcome(result, err))
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *Recognizer) recognize(ctx context.Context, image []byte, cameraID string) (*Recognition, error) {
	snapshot, err := r.snapshots.Save(bytes.NewReader(image))
	if err != nil {
		return nil, storageError(err)
	}
	log := r.log.With(zap.String("snapshot", snapshot), zap.String("camera_id", cameraID))

	encoding, err := r.encoder.Encode(ctx, image)
	if err != nil {
		return nil, encodingError(err)
	}
	if encoding == nil {
		log.Debug("No face found")
		return nil, ErrNoFaceFound
	}

	candidates, err := r.encodings.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load encodings: %w", err)
	}
	match, ok, err := r.matcher.Match(encoding, candidates)
	if err != nil {
		return nil, fmt.Errorf("match encodings: %w", err)
	}

	result := &Recognition{SnapshotFilename: snapshot}
	if ok {
		user, err := r.users.Get(ctx, match.UserID)
		switch {
		case errors.Is(err, database.ErrNotFound):
			// Deleted between the scan and now.
			log.Warn("Matched user no longer exists", zap.Int64("user_id", match.UserID))
		case err != nil:
			return nil, fmt.Errorf("load matched user: %w", err)
		default:
			result.User = user
			result.Distance = match.Distance
		}
	}

	entry := &database.RecognitionLog{
		Timestamp:        r.now(),
		SnapshotFilename: snapshot,
	}
	if result.User != nil {
		entry.UserID = &result.User.ID
	}
	if err := r.logs.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("write recognition log: %w", err)
	}
	result.LogID = entry.ID

	if result.User != nil {
		log.Info("Face recognized", zap.Int64("user_id", result.User.ID), zap.Float64("distance", result.Distance))
		if r.notifier != nil {
			r.notifier.Notify(notify.Event{CameraID: cameraID, FullName: result.User.FullName()})
		}
	} else {
		log.Info("Face not recognized")
	}
	return result, nil
}

func recognitionOutcome(result *Recognition, err error) string {
	switch {
	case errors.Is(err, ErrNoFaceFound):
		return metrics.OutcomeNoFace
	case err != nil:
		return metrics.OutcomeError
	case result.Recognized():
		return metrics.OutcomeRecognized
	}
	return metrics.OutcomeNotRecognized
}
