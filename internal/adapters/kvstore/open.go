package kvstore

import (
	"fmt"

	"go.trai.ch/xs/internal/core/domain"
	"go.trai.ch/xs/internal/core/ports"
)

// Open returns the cache store selected by settings.
func Open(settings *domain.Settings) (ports.CacheStore, error) {
	switch settings.CacheBackend {
	case domain.CacheBackendDisk, "":
		return NewFileStore(settings.CacheDir, settings.CompressCache), nil
	case domain.CacheBackendMemory:
		return NewMemoryStore(), nil
	case domain.CacheBackendDisabled:
		return DisabledStore{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownCacheBackend, settings.CacheBackend)
	}
}
