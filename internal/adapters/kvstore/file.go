// Package kvstore implements the cache stores backing loader cache entries.
package kvstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/xs/internal/core/domain"
	"go.trai.ch/zerr"
)

const fileExt = ".entry"

// record is the on-disk layout of one key.
type record struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// FileStore implements ports.CacheStore using a file-per-key strategy.
type FileStore struct {
	root     string
	compress bool
}

// NewFileStore creates a store rooted at dir. The directory is created on first write.
func NewFileStore(dir string, compressValues bool) *FileStore {
	return &FileStore{root: dir, compress: compressValues}
}

// Root returns the directory holding the entries.
func (s *FileStore) Root() string {
	return s.root
}

// Get retrieves the value stored for key.
func (s *FileStore) Get(key string) (string, bool, error) {
	filename := s.filename(key)
	//nolint:gosec // Path is constructed from the cache directory and a hashed key
	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, storageErr(domain.ErrStoreReadFailed, err, key)
	}

	data, err = decompress(data)
	if err != nil {
		return "", false, storageErr(domain.ErrStoreCorrupt, err, key)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return "", false, storageErr(domain.ErrStoreCorrupt, err, key)
	}

	// Hash collision: the file belongs to another key.
	if rec.Key != key {
		return "", false, nil
	}

	return rec.Value, true, nil
}

// Set stores value under key, replacing the file atomically.
func (s *FileStore) Set(key, value string) error {
	data, err := json.Marshal(record{Key: key, Value: value})
	if err != nil {
		return storageErr(domain.ErrStoreWriteFailed, err, key)
	}
	if s.compress {
		data = compress(data)
	}

	if err := os.MkdirAll(s.root, domain.DirPerm); err != nil {
		return storageErr(domain.ErrStoreCreateFailed, err, key)
	}

	tmp, err := os.CreateTemp(s.root, "tmp-*")
	if err != nil {
		return storageErr(domain.ErrStoreWriteFailed, err, key)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return storageErr(domain.ErrStoreWriteFailed, err, key)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return storageErr(domain.ErrStoreWriteFailed, err, key)
	}

	if err := os.Rename(tmpName, s.filename(key)); err != nil {
		_ = os.Remove(tmpName)
		return storageErr(domain.ErrStoreWriteFailed, err, key)
	}

	return nil
}

// Remove deletes key.
func (s *FileStore) Remove(key string) error {
	if err := os.Remove(s.filename(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return storageErr(domain.ErrStoreWriteFailed, err, key)
	}
	return nil
}

// Clear deletes the whole cache directory.
func (s *FileStore) Clear() error {
	if err := os.RemoveAll(s.root); err != nil {
		return zerr.With(fmt.Errorf("%w: %w: %w", domain.ErrStorage, domain.ErrStoreWriteFailed, err), "path", s.root)
	}
	return nil
}

func (s *FileStore) filename(key string) string {
	return filepath.Join(s.root, fmt.Sprintf("%016x%s", xxhash.Sum64String(key), fileExt))
}

// storageErr classifies err as a storage failure of the given kind.
func storageErr(kind, err error, key string) error {
	return zerr.With(fmt.Errorf("%w: %w: %w", domain.ErrStorage, kind, err), "key", key)
}
