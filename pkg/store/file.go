package store

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	errs "github.com/matzehuels/randlist/pkg/errors"
)

// FileStore keeps each key as a file under a root directory. Keys are
// slash-separated relative paths, so "lists/a.out" lives at
// <root>/lists/a.out.
type FileStore struct {
	dir string
}

// NewFileStore creates a file store rooted at dir.
// The directory will be created if it doesn't exist.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errs.Wrap(errs.ErrCodeIO, err, "create store directory %s", dir)
	}
	return &FileStore{dir: dir}, nil
}

// Get reads the file for key.
func (s *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	path, err := s.Path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, notFound(key)
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeIO, err, "read %s", path)
	}
	return data, nil
}

// Put writes data to a temp file next to the target and renames it into
// place, so readers never observe a partial file.
func (s *FileStore) Put(ctx context.Context, key string, data []byte) error {
	path, err := s.Path(key)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errs.Wrap(errs.ErrCodeIO, err, "create %s", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return errs.Wrap(errs.ErrCodeIO, err, "create temp file in %s", dir)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errs.Wrap(errs.ErrCodeIO, err, "write %s", tmp.Name())
	}
	if err := tmp.Close(); err != nil {
		return errs.Wrap(errs.ErrCodeIO, err, "close %s", tmp.Name())
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return errs.Wrap(errs.ErrCodeIO, err, "chmod %s", tmp.Name())
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errs.Wrap(errs.ErrCodeIO, err, "rename to %s", path)
	}
	return nil
}

// Delete removes the file for key.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	path, err := s.Path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errs.Wrap(errs.ErrCodeIO, err, "remove %s", path)
	}
	return nil
}

// Close does nothing for file store.
func (s *FileStore) Close() error {
	return nil
}

// Dir returns the root directory.
func (s *FileStore) Dir() string { return s.dir }

// Path returns the file path for key after validating it.
func (s *FileStore) Path(key string) (string, error) {
	if err := errs.ValidateRelativeKey(key); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, filepath.FromSlash(key)), nil
}

// Ensure FileStore implements Store.
var _ Store = (*FileStore)(nil)
