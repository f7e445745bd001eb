package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/oklog/ulid/v2"
)

// Store abstracts the attachment blob service. Handlers only see keys;
// where the bytes live is an implementation detail.
type Store interface {
	Save(key string, r io.Reader) error
	Open(key string) (io.ReadCloser, int64, error)
	Delete(key string) error
	Has(key string) bool
}

// NewKey returns a fresh time-ordered object key.
func NewKey() string {
	return ulid.Make().String()
}

// DiskStore keeps blobs under a base directory. Keys may contain
// slashes to namespace objects per course.
type DiskStore struct {
	dir string
}

func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

func (s *DiskStore) path(key string) string {
	return filepath.Join(s.dir, filepath.FromSlash(key))
}

func (s *DiskStore) Save(key string, r io.Reader) error {
	path := s.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create object dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create object: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("write object: %w", err)
	}
	return nil
}

func (s *DiskStore) Open(key string) (io.ReadCloser, int64, error) {
	f, err := os.Open(s.path(key))
	if err != nil {
		return nil, 0, fmt.Errorf("open object: %w", err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, fmt.Errorf("stat object: %w", err)
	}
	return f, st.Size(), nil
}

func (s *DiskStore) Delete(key string) error {
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

func (s *DiskStore) Has(key string) bool {
	_, err := os.Stat(s.path(key))
	return err == nil
}
