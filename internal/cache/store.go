// ABOUTME: Key-value Store interface backing the local day cache.
// ABOUTME: Injected into DayCache so the engine is testable without a device store.
package cache

import "errors"

// ErrKeyNotFound is returned by Store.Get for absent keys.
var ErrKeyNotFound = errors.New("key not found")

// Store is the flat key-value contract the day cache persists through.
// Implementations must be safe for the cooperative single-threaded access
// pattern of the collector (sequential OS-triggered callbacks).
type Store interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
	Keys() ([]string, error)
	Close() error
}
