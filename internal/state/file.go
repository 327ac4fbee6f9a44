package state

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FilePersister keeps each named blob in <dir>/<name>.json.
type FilePersister struct{ dir string }

func NewFilePersister(dir string) (*FilePersister, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("state dir: %w", err)
	}
	return &FilePersister{dir: dir}, nil
}

func (f *FilePersister) path(name string) string {
	return filepath.Join(f.dir, filepath.Base(name)+".json")
}

func (f *FilePersister) Load(_ context.Context, name string) ([]byte, error) {
	b, err := os.ReadFile(f.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return b, err
}

// Save writes to a temp file and renames it over the old blob.
func (f *FilePersister) Save(_ context.Context, name string, blob []byte) error {
	tmp, err := os.CreateTemp(f.dir, filepath.Base(name)+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(blob); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), f.path(name))
}
