package loader

import (
	"strconv"
	"time"

	"go.trai.ch/xs/internal/core/domain"
	"go.trai.ch/xs/internal/core/ports"
)

// ReadEntry reads every field of the cache entry stored under cacheKey.
// Missing fields are left empty; an unparsable timestamp reads as zero.
func ReadEntry(store ports.CacheStore, cacheKey string) (*domain.CacheEntry, error) {
	values := make(map[domain.CacheField]string, len(domain.CacheFields))
	for _, field := range domain.CacheFields {
		value, ok, err := store.Get(domain.CacheFieldKey(field, cacheKey))
		if err != nil {
			return nil, err
		}
		if ok {
			values[field] = value
		}
	}

	entry := &domain.CacheEntry{
		SourceURL:    values[domain.FieldURL],
		Content:      values[domain.FieldContent],
		ETag:         values[domain.FieldETag],
		LastModified: values[domain.FieldLastModified],
	}
	if ms, err := strconv.ParseInt(values[domain.FieldTime], 10, 64); err == nil {
		entry.FetchedAt = time.UnixMilli(ms)
	}
	return entry, nil
}

// WriteEntry overwrites the cache entry stored under cacheKey.
// Validators absent from entry are removed so they never describe older content.
func WriteEntry(store ports.CacheStore, cacheKey string, entry *domain.CacheEntry) error {
	fields := []struct {
		field domain.CacheField
		value string
	}{
		{domain.FieldContent, entry.Content},
		{domain.FieldTime, formatTime(entry.FetchedAt)},
		{domain.FieldURL, entry.SourceURL},
		{domain.FieldETag, entry.ETag},
		{domain.FieldLastModified, entry.LastModified},
	}

	for _, f := range fields {
		key := domain.CacheFieldKey(f.field, cacheKey)
		if f.value == "" {
			if err := store.Remove(key); err != nil {
				return err
			}
			continue
		}
		if err := store.Set(key, f.value); err != nil {
			return err
		}
	}
	return nil
}

// WriteTime refreshes only the fetch timestamp of the entry under cacheKey.
func WriteTime(store ports.CacheStore, cacheKey string, at time.Time) error {
	return store.Set(domain.CacheFieldKey(domain.FieldTime, cacheKey), formatTime(at))
}

// RemoveEntry deletes every field of the entry under cacheKey.
func RemoveEntry(store ports.CacheStore, cacheKey string) error {
	for _, field := range domain.CacheFields {
		if err := store.Remove(domain.CacheFieldKey(field, cacheKey)); err != nil {
			return err
		}
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return strconv.FormatInt(t.UnixMilli(), 10)
}
