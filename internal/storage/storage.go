// Package storage keeps uploaded portraits and recognition snapshots on disk.
package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kozaktomas/face-engine/internal/constants"
)

// Dir is one managed upload directory.
type Dir struct {
	root string
}

// NewDir creates the directory if needed.
func NewDir(root string) (*Dir, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory %s: %w", root, err)
	}
	return &Dir{root: root}, nil
}

// Root returns the directory path.
func (d *Dir) Root() string {
	return d.root
}

// Path returns the location of a stored file.
func (d *Dir) Path(name string) string {
	return filepath.Join(d.root, name)
}

// FS exposes the directory for read-only serving.
func (d *Dir) FS() fs.FS {
	return os.DirFS(d.root)
}

// Read returns the content of a stored file.
func (d *Dir) Read(name string) ([]byte, error) {
	data, err := os.ReadFile(d.Path(name))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

// Remove deletes a stored file; a missing file is not an error.
func (d *Dir) Remove(name string) error {
	if err := os.Remove(d.Path(name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", name, err)
	}
	return nil
}

// create writes r to name without replacing an existing file.
func (d *Dir) create(name string, r io.Reader) error {
	f, err := os.OpenFile(d.Path(name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(d.Path(name))
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(d.Path(name))
		return fmt.Errorf("close %s: %w", name, err)
	}
	return nil
}

// shortID returns 8 random hex characters.
func shortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// Portraits stores registration portraits under sanitized original names.
type Portraits struct {
	*Dir
}

// NewPortraits opens the portrait directory.
func NewPortraits(root string) (*Portraits, error) {
	d, err := NewDir(root)
	if err != nil {
		return nil, err
	}
	return &Portraits{Dir: d}, nil
}

// Save stores the portrait and returns the name it was stored under.
// An existing portrait with the same name is never overwritten, the new one
// gets a random suffix instead.
func (p *Portraits) Save(original string, r io.Reader) (string, error) {
	name := SanitizeFilename(original)
	if name == "" || strings.HasPrefix(name, "-") {
		name = "portrait_" + shortID() + ".jpg"
	}

	err := p.create(name, r)
	if errors.Is(err, fs.ErrExist) {
		ext := filepath.Ext(name)
		name = strings.TrimSuffix(name, ext) + "_" + shortID() + ext
		err = p.create(name, r)
	}
	if err != nil {
		return "", fmt.Errorf("save portrait: %w", err)
	}
	return name, nil
}

// Snapshots stores recognition frames under timestamped names.
type Snapshots struct {
	*Dir
	now func() time.Time
}

// NewSnapshots opens the snapshot directory.
func NewSnapshots(root string) (*Snapshots, error) {
	d, err := NewDir(root)
	if err != nil {
		return nil, err
	}
	return &Snapshots{Dir: d, now: time.Now}, nil
}

// SnapshotName returns "YYYYmmdd_HHMMSS_<8 hex>.jpg". The suffix keeps two
// frames captured within the same second apart.
func SnapshotName(t time.Time) string {
	return t.Format(constants.SnapshotTimeFormat) + "_" + shortID() + ".jpg"
}

// Save writes the frame and returns its filename.
func (s *Snapshots) Save(r io.Reader) (string, error) {
	name := SnapshotName(s.now())
	if err := s.create(name, r); err != nil {
		return "", fmt.Errorf("save snapshot: %w", err)
	}
	return name, nil
}
