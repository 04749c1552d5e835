package domain

import "time"

// CacheField names one physically stored field of a cache entry.
type CacheField string

const (
	// FieldURL holds the source URL, echoed for diagnostics.
	FieldURL CacheField = "url"
	// FieldContent holds the last known compiled code.
	FieldContent CacheField = "content"
	// FieldTime holds the fetch timestamp in Unix milliseconds.
	FieldTime CacheField = "time"
	// FieldETag holds the ETag validator of the last raw fetch.
	FieldETag CacheField = "etag"
	// FieldLastModified holds the Last-Modified validator of the last raw fetch.
	FieldLastModified CacheField = "lastmod"
)

// CacheFields lists every field of a cache entry.
var CacheFields = []CacheField{FieldURL, FieldContent, FieldTime, FieldETag, FieldLastModified}

// CacheFieldKey returns the store key of field for the logical cache key.
func CacheFieldKey(field CacheField, cacheKey string) string {
	return CachePrefix + string(field) + ":" + cacheKey
}

// CacheEntry is the logical record for one (source URL, version) pair.
type CacheEntry struct {
	SourceURL    string
	Content      string
	FetchedAt    time.Time
	ETag         string
	LastModified string
}

// HasContent reports whether the entry carries compiled code.
// An entry without content is equivalent to absence.
func (e *CacheEntry) HasContent() bool {
	return e != nil && e.Content != ""
}

// IsFresh reports whether the content may be trusted at now.
func (e *CacheEntry) IsFresh(now time.Time, maxAge time.Duration) bool {
	if !e.HasContent() || e.FetchedAt.IsZero() {
		return false
	}
	return now.Sub(e.FetchedAt) <= maxAge
}

// HasValidators reports whether a conditional request can be built from the entry.
func (e *CacheEntry) HasValidators() bool {
	return e != nil && (e.ETag != "" || e.LastModified != "")
}
