package loader_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/xs/internal/adapters/kvstore"
	"go.trai.ch/xs/internal/core/domain"
	"go.trai.ch/xs/internal/engine/loader"
)

const entryKey = "https://a.test/app.tsx?v=2"

func TestWriteEntry_StoresFieldsUnderPrefixedKeys(t *testing.T) {
	store := kvstore.NewMemoryStore()
	at := time.UnixMilli(1735732800123)

	require.NoError(t, loader.WriteEntry(store, entryKey, &domain.CacheEntry{
		SourceURL:    "https://a.test/app.tsx",
		Content:      "console.log(1)",
		FetchedAt:    at,
		ETag:         `"abc"`,
		LastModified: "Wed, 01 Jan 2025 12:00:00 GMT",
	}))

	want := map[string]string{
		"esm.sh/xs/url:" + entryKey:     "https://a.test/app.tsx",
		"esm.sh/xs/content:" + entryKey: "console.log(1)",
		"esm.sh/xs/time:" + entryKey:    "1735732800123",
		"esm.sh/xs/etag:" + entryKey:    `"abc"`,
		"esm.sh/xs/lastmod:" + entryKey: "Wed, 01 Jan 2025 12:00:00 GMT",
	}
	for key, value := range want {
		got, ok, err := store.Get(key)
		require.NoError(t, err)
		assert.True(t, ok, key)
		assert.Equal(t, value, got, key)
	}

	entry, err := loader.ReadEntry(store, entryKey)
	require.NoError(t, err)
	assert.True(t, at.Equal(entry.FetchedAt))
	assert.Equal(t, "console.log(1)", entry.Content)
}

func TestWriteEntry_RemovesStaleValidators(t *testing.T) {
	store := kvstore.NewMemoryStore()
	require.NoError(t, loader.WriteEntry(store, entryKey, &domain.CacheEntry{
		Content: "a", FetchedAt: time.UnixMilli(1), ETag: `"1"`, LastModified: "then",
	}))
	require.NoError(t, loader.WriteEntry(store, entryKey, &domain.CacheEntry{
		Content: "b", FetchedAt: time.UnixMilli(2),
	}))

	entry, err := loader.ReadEntry(store, entryKey)
	require.NoError(t, err)
	assert.Equal(t, "b", entry.Content)
	assert.False(t, entry.HasValidators())
}

func TestReadEntry_Missing(t *testing.T) {
	entry, err := loader.ReadEntry(kvstore.NewMemoryStore(), entryKey)
	require.NoError(t, err)
	assert.False(t, entry.HasContent())
	assert.True(t, entry.FetchedAt.IsZero())
}

func TestReadEntry_UnparsableTime(t *testing.T) {
	store := kvstore.NewMemoryStore()
	require.NoError(t, store.Set(domain.CacheFieldKey(domain.FieldContent, entryKey), "x"))
	require.NoError(t, store.Set(domain.CacheFieldKey(domain.FieldTime, entryKey), "yesterday"))

	entry, err := loader.ReadEntry(store, entryKey)
	require.NoError(t, err)
	assert.True(t, entry.FetchedAt.IsZero())
	assert.False(t, entry.IsFresh(time.Now(), time.Hour))
}

func TestReadEntry_StorageError(t *testing.T) {
	_, err := loader.ReadEntry(kvstore.DisabledStore{}, entryKey)
	require.ErrorIs(t, err, domain.ErrStorage)
}

func TestWriteTime(t *testing.T) {
	store := kvstore.NewMemoryStore()
	require.NoError(t, loader.WriteEntry(store, entryKey, &domain.CacheEntry{
		Content: "a", FetchedAt: time.UnixMilli(1000), ETag: `"1"`,
	}))
	require.NoError(t, loader.WriteTime(store, entryKey, time.UnixMilli(5000)))

	entry, err := loader.ReadEntry(store, entryKey)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), entry.FetchedAt.UnixMilli())
	assert.Equal(t, "a", entry.Content)
	assert.Equal(t, `"1"`, entry.ETag)
}

func TestRemoveEntry(t *testing.T) {
	store := kvstore.NewMemoryStore()
	require.NoError(t, store.Set("other", "kept"))
	require.NoError(t, loader.WriteEntry(store, entryKey, &domain.CacheEntry{
		SourceURL: "u", Content: "a", FetchedAt: time.UnixMilli(1), ETag: "e", LastModified: "l",
	}))

	require.NoError(t, loader.RemoveEntry(store, entryKey))
	assert.Equal(t, 1, store.Len())
}
