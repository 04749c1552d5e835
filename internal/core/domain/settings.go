package domain

import (
	"maps"
	"net/url"
	"runtime"
	"slices"
	"time"
)

// LocalDevMode controls the local development bypass of remote compilation.
type LocalDevMode string

const (
	// LocalDevAuto enables the bypass when the page host is a loopback host name.
	LocalDevAuto LocalDevMode = "auto"
	// LocalDevOn always enables the bypass.
	LocalDevOn LocalDevMode = "on"
	// LocalDevOff never enables the bypass.
	LocalDevOff LocalDevMode = "off"
)

// CacheBackend selects the cache store implementation.
type CacheBackend string

const (
	// CacheBackendDisk stores one file per key under the cache directory.
	CacheBackendDisk CacheBackend = "disk"
	// CacheBackendMemory keeps values in process memory.
	CacheBackendMemory CacheBackend = "memory"
	// CacheBackendDisabled rejects every operation, like a browser with storage turned off.
	CacheBackendDisabled CacheBackend = "disabled"
)

// Settings is the resolved loader configuration.
type Settings struct {
	Endpoint         string
	Target           string
	LoaderPath       string
	LocalDev         LocalDevMode
	CacheDir         string
	CacheBackend     CacheBackend
	CompressCache    bool
	Runtime          []string
	Parallelism      int
	HTTPTimeout      time.Duration
	SerializeSameKey bool
	ImportMapFile    string
	DefaultMaxAge    time.Duration

	// CredentialHeaders are attached to source fetches of elements with the credentials attribute.
	CredentialHeaders map[string]string
}

// DefaultSettings returns the settings used when no config file is present.
func DefaultSettings(target string) Settings {
	return Settings{
		Endpoint:      DefaultEndpoint,
		Target:        target,
		LoaderPath:    DefaultLoaderPath,
		LocalDev:      LocalDevAuto,
		CacheDir:      DefaultCachePath(),
		CacheBackend:  CacheBackendDisk,
		Runtime:       []string{"node"},
		Parallelism:   runtime.NumCPU(),
		DefaultMaxAge: DefaultMaxAge,
	}
}

// IsLocalDevHost reports whether host names a local development server.
func IsLocalDevHost(host string) bool {
	return host == "localhost" || host == "127.0.0.1"
}

// ResolveLocalDev resolves the local development bypass once for a page.
func (s Settings) ResolveLocalDev(pageURL *url.URL) bool {
	switch s.LocalDev {
	case LocalDevOn:
		return true
	case LocalDevOff:
		return false
	default:
		return pageURL != nil && IsLocalDevHost(pageURL.Hostname())
	}
}

// Clone returns a deep copy of s.
func (s Settings) Clone() Settings {
	c := s
	c.Runtime = slices.Clone(s.Runtime)
	c.CredentialHeaders = maps.Clone(s.CredentialHeaders)
	return c
}
