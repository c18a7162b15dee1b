// Package app wires the stores, the encoder, the worker pool and the workflows
// into one application context shared by the HTTP server and the CLI.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/kozaktomas/face-engine/internal/config"
	"github.com/kozaktomas/face-engine/internal/database"
	"github.com/kozaktomas/face-engine/internal/database/postgres"
	"github.com/kozaktomas/face-engine/internal/encoder"
	"github.com/kozaktomas/face-engine/internal/facematch"
	"github.com/kozaktomas/face-engine/internal/metrics"
	"github.com/kozaktomas/face-engine/internal/notify"
	"github.com/kozaktomas/face-engine/internal/storage"
	"github.com/kozaktomas/face-engine/internal/workerpool"
	"github.com/kozaktomas/face-engine/internal/workflow"
	"go.uber.org/zap"
)

// Stores groups the repositories the application depends on
type Stores struct {
	Users     database.UserWriter
	Encodings database.EncodingStore
	Logs      database.RecognitionLogStore
	Cameras   database.CameraStore
}

// App holds everything a running instance needs
type App struct {
	Config  *config.Config
	Log     *zap.Logger
	Metrics *metrics.Metrics

	Stores
	db *postgres.Pool

	Portraits  *storage.Portraits
	Snapshots  *storage.Snapshots
	Encoder    *encoder.Client
	Pool       *workerpool.Pool
	Notifier   *notify.Dispatcher // nil when NX Witness is disabled
	Registrar  *workflow.Registrar
	Recognizer *workflow.Recognizer
}

// New connects to PostgreSQL, applies pending migrations and builds the application
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	pool, applied, err := postgres.Open(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}
	for _, name := range applied {
		log.Info("Applied migration", zap.String("file", name))
	}

	a, err := NewWithStores(cfg, log, Stores{
		Users:     postgres.NewUserRepository(pool),
		Encodings: postgres.NewEncodingRepository(pool),
		Logs:      postgres.NewRecognitionLogRepository(pool),
		Cameras:   postgres.NewCameraRepository(pool),
	})
	if err != nil {
		pool.Close()
		return nil, err
	}
	a.db = pool
	return a, nil
}

// NewWithStores builds the application on top of the given repositories
func NewWithStores(cfg *config.Config, log *zap.Logger, stores Stores) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	policy, err := facematch.ParsePolicy(cfg.Match.Policy)
	if err != nil {
		return nil, err
	}

	portraits, err := storage.NewPortraits(cfg.Storage.PortraitDir)
	if err != nil {
		return nil, fmt.Errorf("portrait storage: %w", err)
	}
	snapshots, err := storage.NewSnapshots(cfg.Storage.SnapshotDir)
	if err != nil {
		return nil, fmt.Errorf("snapshot storage: %w", err)
	}

	m := metrics.New(cfg.Metrics.Prefix)
	a := &App{
		Config:    cfg,
		Log:       log,
		Metrics:   m,
		Stores:    stores,
		Portraits: portraits,
		Snapshots: snapshots,
		Encoder:   encoder.NewClient(&cfg.Encoder, encoder.WithObserver(m.ObserveEncoder)),
		Pool:      workerpool.New(cfg.Workers.Size, cfg.Workers.QueueSize),
	}
	a.Pool.OnAdmit = func(delta int) { m.WorkersQueued.Add(float64(delta)) }
	a.Pool.OnReject = m.WorkersRejected.Inc

	var notifier workflow.Notifier
	switch {
	case !cfg.NX.Enabled:
	case !cfg.NX.Configured():
		log.Warn("NX Witness notifications enabled but not configured, bookmarks are disabled")
	default:
		a.Notifier = notify.NewDispatcher(notify.NewClient(&cfg.NX), log.Named("nx"), cfg.NX.QueueSize)
		a.Notifier.OnResult = func(r notify.Result) {
			m.Notifications.WithLabelValues(notificationOutcome(r)).Inc()
		}
		notifier = a.Notifier
	}

	a.Registrar = workflow.NewRegistrar(stores.Users, portraits, a.Encoder, a.Pool, log.Named("registration"))
	a.Registrar.OnOutcome = func(o string) { m.Registrations.WithLabelValues(o).Inc() }

	a.Recognizer = workflow.NewRecognizer(workflow.RecognizerDeps{
		Users:     stores.Users,
		Encodings: stores.Encodings,
		Logs:      stores.Logs,
		Snapshots: snapshots,
		Encoder:   a.Encoder,
		Matcher:   facematch.NewMatcher(policy),
		Runner:    a.Pool,
		Notifier:  notifier,
		Log:       log.Named("recognition"),
	})
	a.Recognizer.OnOutcome = func(o string) { m.Recognitions.WithLabelValues(o).Inc() }

	return a, nil
}

func notificationOutcome(r notify.Result) string {
	switch {
	case r.Dropped:
		return metrics.OutcomeDropped
	case r.Err != nil:
		return metrics.OutcomeFailed
	}
	return metrics.OutcomeSent
}

// Ping checks the database connection. Without a database it always succeeds.
func (a *App) Ping(ctx context.Context) error {
	if a.db == nil {
		return nil
	}
	return a.db.Ping(ctx)
}

// Close waits for in-flight jobs and queued notifications, then closes the database
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if err := a.Pool.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("worker pool: %w", err))
	}
	if a.Notifier != nil {
		if err := a.Notifier.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("notifier: %w", err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("database: %w", err))
		}
	}
	return errors.Join(errs...)
}
