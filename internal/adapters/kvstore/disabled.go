package kvstore

import (
	"fmt"

	"go.trai.ch/xs/internal/core/domain"
)

var errDisabled = fmt.Errorf("%w: %w", domain.ErrStorage, domain.ErrStoreDisabled)

// DisabledStore rejects every operation, like a browser with storage turned off.
type DisabledStore struct{}

// Get always fails.
func (DisabledStore) Get(string) (string, bool, error) { return "", false, errDisabled }

// Set always fails.
func (DisabledStore) Set(string, string) error { return errDisabled }

// Remove always fails.
func (DisabledStore) Remove(string) error { return errDisabled }

// Clear always fails.
func (DisabledStore) Clear() error { return errDisabled }
