package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrNoArtifact is returned by ArtifactStore.Load when nothing has been
// saved yet. It is a normal state, not a failure.
var ErrNoArtifact = errors.New("classifier: no model artifact")

// ArtifactStore loads and replaces the single trained model.
type ArtifactStore interface {
	// Load returns the stored model or ErrNoArtifact.
	Load(ctx context.Context) (*Model, error)
	// Save replaces the stored model.
	Save(ctx context.Context, m *Model) error
	// Location describes where the artifact lives, for logs and status.
	Location() string
}

func encodeModel(m *Model) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return json.MarshalIndent(m, "", "  ")
}

func decodeModel(b []byte) (*Model, error) {
	var m Model
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// ─── FILE STORE ───────────────────────────────────────────────────────────────

// FileStore keeps the artifact as a JSON file on local disk.
type FileStore struct {
	path string
}

// NewFileStore returns a store writing to path. The parent directory is
// created on first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Location() string { return f.path }

func (f *FileStore) Load(_ context.Context) (*Model, error) {
	b, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoArtifact
	}
	if err != nil {
		return nil, fmt.Errorf("classifier: read %s: %w", f.path, err)
	}
	return decodeModel(b)
}

// Save writes to a temporary file in the same directory and renames it over
// the target, so readers never observe a partial artifact.
func (f *FileStore) Save(_ context.Context, m *Model) error {
	b, err := encodeModel(m)
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("classifier: create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".model-*.json")
	if err != nil {
		return fmt.Errorf("classifier: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("classifier: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("classifier: close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("classifier: replace %s: %w", f.path, err)
	}
	return nil
}
