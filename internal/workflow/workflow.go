// Package workflow implements user registration and face recognition on top of
// the encoder, the stores and the worker pool.
package workflow

import (
	"context"
	"io"

	"github.com/kozaktomas/face-engine/internal/database"
	"github.com/kozaktomas/face-engine/internal/facematch"
	"github.com/kozaktomas/face-engine/internal/notify"
)

// Encoder returns the encoding of the first face in an image, nil when there is none
type Encoder interface {
	Encode(ctx context.Context, image []byte) ([]float64, error)
}

// Runner executes a job on a bounded worker and waits for it
type Runner interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Notifier enqueues a best-effort notification without waiting for it
type Notifier interface {
	Notify(e notify.Event)
}

// PortraitStore persists registration portraits
type PortraitStore interface {
	Save(original string, r io.Reader) (string, error)
	Read(name string) ([]byte, error)
	Path(name string) string
	Remove(name string) error
}

// SnapshotStore persists recognition frames
type SnapshotStore interface {
	Save(r io.Reader) (string, error)
}

// Matcher selects the stored encoding that matches a probe
type Matcher interface {
	Match(probe []float64, candidates []database.StoredEncoding) (facematch.Match, bool, error)
}

// OutcomeFunc records the outcome label of one workflow run
type OutcomeFunc func(outcome string)

func (f OutcomeFunc) record(outcome string) {
	if f != nil {
		f(outcome)
	}
}
