// Package storage provides the local key-value substrate used for chat history
// and preferences.
package storage

import "errors"

// ErrClosed is returned by operations on a closed storage.
var ErrClosed = errors.New("storage: closed")

// Storage is a string key-value store.
type Storage interface {
	// Get returns the value for key and whether it exists.
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
	Close() error
}
