package domain

import (
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"go.trai.ch/zerr"
)

// Language identifies the source language sent to the transform service.
type Language string

const (
	// LangJS is plain JavaScript, the fallback for unknown extensions.
	LangJS Language = "js"
	// LangTS is TypeScript.
	LangTS Language = "ts"
	// LangJSX is JavaScript with JSX.
	LangJSX Language = "jsx"
	// LangTSX is TypeScript with JSX.
	LangTSX Language = "tsx"
)

// LanguageFromPath infers the language from the trailing extension of p.
func LanguageFromPath(p string) Language {
	switch strings.ToLower(strings.TrimPrefix(path.Ext(p), ".")) {
	case "jsx":
		return LangJSX
	case "tsx":
		return LangTSX
	case "ts":
		return LangTS
	default:
		return LangJS
	}
}

// LoaderRequest describes a single load triggered by one loader element.
type LoaderRequest struct {
	// SourceURL is the absolute URL of the source file.
	SourceURL *url.URL
	// Version is an optional cache-busting string.
	Version string
	// Endpoint is the origin serving prebuilt artifacts and the transform service.
	Endpoint *url.URL

	NoCache        bool
	ForceRefresh   bool
	CheckModified  bool
	UseCredentials bool
	// LocalDev serves fetched source unchanged, skipping prebuilt lookup and remote compilation.
	LocalDev bool

	// MaxAge is the staleness window of a cached entry.
	MaxAge time.Duration
	// Language is derived from the source file extension.
	Language Language
	// Target is the compile target identifier.
	Target string
}

// Validate reports ErrMissingTarget when the request has no source URL.
func (r *LoaderRequest) Validate() error {
	if r == nil || r.SourceURL == nil || r.SourceURL.String() == "" {
		return ErrMissingTarget
	}
	if !r.SourceURL.IsAbs() {
		return zerr.With(fmt.Errorf("%w", ErrInvalidSourceURL), "url", r.SourceURL.String())
	}
	return nil
}

// CacheKey returns the logical key of the request's cache entry.
// It is the absolute source URL, suffixed with ?v=<version> when a version is set.
func (r *LoaderRequest) CacheKey() string {
	key := r.SourceURL.String()
	if r.Version != "" {
		key += "?v=" + r.Version
	}
	return key
}

// FetchURL returns the URL used to fetch raw source, with the version set as the v query parameter.
func (r *LoaderRequest) FetchURL() string {
	if r.Version == "" {
		return r.SourceURL.String()
	}
	u := *r.SourceURL
	q := u.Query()
	q.Set("v", r.Version)
	u.RawQuery = q.Encode()
	return u.String()
}
