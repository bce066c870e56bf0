// Package kvstore provides the persistent key-value substrate the wallet
// core stores its records in. The core only ever sees this small
// get/put/delete surface; whether the bytes land in LevelDB or in memory
// is an implementation detail.
package kvstore

import (
	"errors"
)

// ErrKeyNotFound indicates the key is absent from the store. Callers
// translate this into their own domain error (a missing wallet record
// becomes NoWallet, for example).
var ErrKeyNotFound = errors.New("key not found")

// Store is a generic persistent key-value substrate.
//
// Substrate unavailability surfaces as ErrAccessDenied and over-quota
// writes as ErrQuotaExceeded; neither is ever silently swallowed.
type Store interface {
	// Get returns the value for key, or ErrKeyNotFound if absent.
	Get(key string) ([]byte, error)

	// Put stores value under key, overwriting any previous value.
	Put(key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error

	// Close releases the underlying store. Operations after Close fail
	// with ErrAccessDenied.
	Close() error
}
