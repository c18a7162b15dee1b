package workflow

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sync"

	"github.com/kozaktomas/face-engine/internal/database"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// BackfillResult counts the outcomes of a backfill run
type BackfillResult struct {
	Encoded int
	NoFace  int
	Failed  int
}

// Backfiller encodes the stored portraits of users that have no encoding yet
type Backfiller struct {
	users     database.UserReader
	encodings database.EncodingStore
	portraits PortraitStore
	encoder   Encoder
	log       *zap.Logger
}

// NewBackfiller creates a backfiller
func NewBackfiller(users database.UserReader, encodings database.EncodingStore, portraits PortraitStore, encoder Encoder, log *zap.Logger) *Backfiller {
	return &Backfiller{
		users:     users,
		encodings: encodings,
		portraits: portraits,
		encoder:   encoder,
		log:       log,
	}
}

// Pending returns the users without an encoding
func (b *Backfiller) Pending(ctx context.Context) ([]database.User, error) {
	users, err := b.users.ListWithoutEncoding(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users without encoding: %w", err)
	}
	return users, nil
}

// Run encodes the portraits of users with up to concurrency encoder calls at a
// time. A failing user is counted and logged, it does not stop the run.
// onDone, when set, is called once per user.
func (b *Backfiller) Run(ctx context.Context, users []database.User, concurrency int, onDone func(database.User, error)) (BackfillResult, error) {
	var (
		mu     sync.Mutex
		result BackfillResult
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(concurrency, 1))

	for _, u := range users {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := b.encodeUser(ctx, u)

			mu.Lock()
			switch {
			case err == nil:
				result.Encoded++
			case errors.Is(err, ErrNoFaceFound):
				result.NoFace++
			default:
				result.Failed++
			}
			mu.Unlock()

			if err != nil {
				b.log.Warn("Backfill failed", zap.Int64("user_id", u.ID), zap.Error(err))
			}
			if onDone != nil {
				onDone(u, err)
			}
			return nil
		})
	}
	err := g.Wait()
	return result, err
}

func (b *Backfiller) encodeUser(ctx context.Context, u database.User) error {
	if u.PortraitPath == "" {
		return fmt.Errorf("user %d has no portrait", u.ID)
	}
	data, err := b.portraits.Read(path.Base(u.PortraitPath))
	if err != nil {
		return storageError(err)
	}
	encoding, err := b.encoder.Encode(ctx, data)
	if err != nil {
		return encodingError(err)
	}
	if encoding == nil {
		return ErrNoFaceFound
	}
	if _, err := b.encodings.Add(ctx, u.ID, encoding); err != nil {
		return fmt.Errorf("store encoding: %w", err)
	}
	return nil
}
