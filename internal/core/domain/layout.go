package domain

import (
	"path/filepath"
	"time"
)

const (
	// XSDirName is the name of the internal workspace directory.
	XSDirName = ".xs"

	// CacheDirName is the name of the cache directory.
	CacheDirName = "cache"

	// ConfigFileName is the name of the project configuration file.
	ConfigFileName = "xs.yaml"

	// CachePrefix namespaces every cache store key written by the loader.
	CachePrefix = "esm.sh/xs/"

	// DiagnosticPrefix prefixes every message reported on the page log channel.
	DiagnosticPrefix = "[esm.sh/xs]"

	// DefaultEndpoint is the origin of the prebuilt artifact and transform endpoints.
	DefaultEndpoint = "https://esm.sh"

	// DefaultLoaderPath is the path suffix identifying loader script elements.
	DefaultLoaderPath = "/xs"

	// DefaultMaxAge is the staleness window applied when max-age is absent.
	DefaultMaxAge = time.Hour

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// PrivateFilePerm is the default permission for private files (rw-------).
	PrivateFilePerm = 0o600
)

// DefaultXSPath returns the default root directory for xs metadata.
func DefaultXSPath() string {
	return XSDirName
}

// DefaultCachePath returns the default path for the loader cache.
// It joins .xs and cache.
func DefaultCachePath() string {
	return filepath.Join(XSDirName, CacheDirName)
}
