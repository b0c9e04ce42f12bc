package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FSStore keeps blobs under a base directory. Keys are slash-separated and
// may not climb out of the base. Absolute keys are refused unless the exact
// path was registered with AllowAbsolute.
type FSStore struct {
	base     string
	mu       sync.RWMutex
	absolute map[string]struct{}
}

func NewFSStore(base string) (*FSStore, error) {
	if base == "" {
		base = "./data"
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, err
	}
	return &FSStore{base: base, absolute: map[string]struct{}{}}, nil
}

// AllowAbsolute registers files outside the base, such as BANK_FILE, that may
// be addressed by their absolute path. Relative and empty paths are ignored.
func (s *FSStore) AllowAbsolute(paths ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range paths {
		if filepath.IsAbs(p) {
			s.absolute[filepath.Clean(p)] = struct{}{}
		}
	}
}

func (s *FSStore) Base() string { return s.base }

// resolve maps key to a path inside base, or to a registered absolute path.
func (s *FSStore) resolve(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("%w: empty", ErrBadKey)
	}
	if filepath.IsAbs(key) {
		clean := filepath.Clean(key)
		s.mu.RLock()
		_, ok := s.absolute[clean]
		s.mu.RUnlock()
		if !ok {
			return "", fmt.Errorf("%w: absolute path %q not allowed", ErrBadKey, key)
		}
		return clean, nil
	}
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q escapes base", ErrBadKey, key)
	}
	return filepath.Join(s.base, clean), nil
}

// Put writes through a temp file so readers never see a partial blob.
func (s *FSStore) Put(key string, r io.Reader) (string, error) {
	dst, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".put-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", err
	}
	return filepath.ToSlash(key), nil
}

func (s *FSStore) Get(key string) (io.ReadCloser, error) {
	p, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	return os.Open(p)
}

func (s *FSStore) ReadAll(key string) ([]byte, error) {
	p, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(p)
}

func (s *FSStore) Exists(key string) bool {
	p, err := s.resolve(key)
	if err != nil {
		return false
	}
	_, err = os.Stat(p)
	return err == nil
}
