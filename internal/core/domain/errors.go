package domain

import (
	"errors"

	"go.trai.ch/zerr"
)

var (
	// ErrMissingTarget is returned when a loader element carries no source URL.
	ErrMissingTarget = zerr.New("missing href attribute")

	// ErrFetch is returned when a source fetch, revalidation or transform call fails at the transport level.
	ErrFetch = zerr.New("fetch failed")

	// ErrTransform is returned when the transform service reports a structured error.
	ErrTransform = zerr.New("transform failed")

	// ErrStorage is returned when the cache store cannot be read or written.
	ErrStorage = zerr.New("cache storage unavailable")

	// ErrExecution is returned when a compiled module fails to load or evaluate.
	ErrExecution = zerr.New("module execution failed")

	// ErrImportMapParse is returned when an import map declaration cannot be parsed.
	ErrImportMapParse = zerr.New("failed to parse import map")

	// ErrInvalidSourceURL is returned when the href attribute cannot be resolved to an absolute URL.
	ErrInvalidSourceURL = zerr.New("invalid source url")

	// ErrStoreCreateFailed is returned when the cache directory cannot be created.
	ErrStoreCreateFailed = zerr.New("failed to create cache directory")

	// ErrStoreReadFailed is returned when a cache value cannot be read.
	ErrStoreReadFailed = zerr.New("failed to read cache value")

	// ErrStoreWriteFailed is returned when a cache value cannot be written.
	ErrStoreWriteFailed = zerr.New("failed to write cache value")

	// ErrStoreCorrupt is returned when a cache file cannot be decoded.
	ErrStoreCorrupt = zerr.New("corrupt cache value")

	// ErrStoreDisabled is returned by the disabled cache backend.
	ErrStoreDisabled = zerr.New("cache storage is disabled")

	// ErrUnknownCacheBackend is returned when the configured cache backend is not supported.
	ErrUnknownCacheBackend = zerr.New("unknown cache backend, expected 'disk', 'memory' or 'disabled'")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrInvalidConfig is returned when a config value is out of range.
	ErrInvalidConfig = zerr.New("invalid configuration")

	// ErrDocumentReadFailed is returned when the page document cannot be read.
	ErrDocumentReadFailed = zerr.New("failed to read document")

	// ErrDocumentParseFailed is returned when the page document cannot be parsed.
	ErrDocumentParseFailed = zerr.New("failed to parse document")

	// ErrNoLoaderElements is returned when a document contains no loader elements.
	ErrNoLoaderElements = zerr.New("no loader elements found")

	// ErrLoadFailed is returned when at least one loader element failed.
	ErrLoadFailed = zerr.New("one or more modules failed to load")

	// ErrRuntimeNotConfigured is returned when the runtime sink has no command.
	ErrRuntimeNotConfigured = zerr.New("no javascript runtime configured")

	// ErrEntryNotFound is returned when no cache entry exists for a key.
	ErrEntryNotFound = zerr.New("cache entry not found")
)

// TransformError carries the message reported by the transform service verbatim.
type TransformError struct {
	Message string
}

// Error implements the error interface.
func (e *TransformError) Error() string {
	return "transform error: " + e.Message
}

// Unwrap makes errors.Is(err, ErrTransform) report true.
func (e *TransformError) Unwrap() error {
	return ErrTransform
}

// Kind returns a short label for the error class of err, used for metrics and diagnostics.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case isAny(err, ErrMissingTarget, ErrInvalidSourceURL):
		return "missing_target"
	case isAny(err, ErrTransform):
		return "transform"
	case isAny(err, ErrFetch):
		return "fetch"
	case isAny(err, ErrExecution):
		return "execution"
	case isAny(err, ErrStorage):
		return "storage"
	default:
		return "internal"
	}
}

func isAny(err error, targets ...error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
