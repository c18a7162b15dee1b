package handlers

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/kozaktomas/face-engine/internal/database/mock"
	"github.com/kozaktomas/face-engine/internal/facematch"
	"github.com/kozaktomas/face-engine/internal/storage"
	"github.com/kozaktomas/face-engine/internal/workerpool"
	"github.com/kozaktomas/face-engine/internal/workflow"
	"go.uber.org/zap"
)

// fakeEncoder maps image bytes to encodings. Unknown images have no face.
type fakeEncoder struct {
	mu        sync.Mutex
	encodings map[string][]float64
	err       error
}

func (f *fakeEncoder) Encode(ctx context.Context, image []byte) ([]float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.encodings[string(image)], nil
}

func encodingOf(v float64) []float64 {
	e := make([]float64, 128)
	for i := range e {
		e[i] = v
	}
	return e
}

// workflowEnv wires real workflows onto the mock store and temp directories
type workflowEnv struct {
	store      *mock.Store
	encoder    *fakeEncoder
	portraits  *storage.Portraits
	snapshots  *storage.Snapshots
	pool       *workerpool.Pool
	registrar  *workflow.Registrar
	recognizer *workflow.Recognizer
}

func newWorkflowEnv(t *testing.T) *workflowEnv {
	t.Helper()
	dir := t.TempDir()
	portraits, err := storage.NewPortraits(filepath.Join(dir, "portraits"))
	if err != nil {
		t.Fatalf("failed to create portraits dir: %v", err)
	}
	snapshots, err := storage.NewSnapshots(filepath.Join(dir, "face_capture"))
	if err != nil {
		t.Fatalf("failed to create snapshots dir: %v", err)
	}
	pool := workerpool.New(2, 8)
	t.Cleanup(func() { pool.Close(context.Background()) })

	env := &workflowEnv{
		store:     mock.NewStore(),
		encoder:   &fakeEncoder{encodings: map[string][]float64{}},
		portraits: portraits,
		snapshots: snapshots,
		pool:      pool,
	}
	env.registrar = workflow.NewRegistrar(env.store.Users, portraits, env.encoder, pool, zap.NewNop())
	env.recognizer = workflow.NewRecognizer(workflow.RecognizerDeps{
		Users:     env.store.Users,
		Encodings: env.store.Encodings,
		Logs:      env.store.Logs,
		Snapshots: snapshots,
		Encoder:   env.encoder,
		Matcher:   facematch.NewMatcher(facematch.PolicyFirst),
		Runner:    pool,
	})
	return env
}
