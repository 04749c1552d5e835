package ports

// CacheStore is a best-effort key/value store for cache entry fields.
// Implementations are safe for concurrent use on a single key but offer no
// transactions across keys.
//
//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type CacheStore interface {
	// Get returns the value of key and whether it exists.
	Get(key string) (string, bool, error)

	// Set stores value under key.
	Set(key, value string) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(key string) error

	// Clear deletes every key.
	Clear() error
}
