package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cockroachdb/pebble/v2"
	"github.com/cockroachdb/pebble/v2/vfs"
)

// PebbleStorage persists values in a PebbleDB directory.
type PebbleStorage struct {
	db *pebble.DB
}

// OpenPebble opens (or creates) a pebble database at dir.
func OpenPebble(dir string) (*PebbleStorage, error) {
	if dir == "" {
		return nil, errors.New("storage: empty data directory")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	db, err := pebble.Open(filepath.Clean(dir), &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open pebble: %w", err)
	}
	return &PebbleStorage{db: db}, nil
}

// OpenPebbleInMemory opens a pebble database on an in-memory filesystem.
func OpenPebbleInMemory() (*PebbleStorage, error) {
	db, err := pebble.Open("", &pebble.Options{FS: vfs.NewMem()})
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory pebble: %w", err)
	}
	return &PebbleStorage{db: db}, nil
}

func (p *PebbleStorage) Get(key string) (string, bool, error) {
	if p == nil || p.db == nil {
		return "", false, ErrClosed
	}
	val, closer, err := p.db.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	// val is only valid until closer is closed.
	out := string(val)
	if err := closer.Close(); err != nil {
		return "", false, err
	}
	return out, true, nil
}

func (p *PebbleStorage) Set(key, value string) error {
	if p == nil || p.db == nil {
		return ErrClosed
	}
	return p.db.Set([]byte(key), []byte(value), pebble.Sync)
}

func (p *PebbleStorage) Remove(key string) error {
	if p == nil || p.db == nil {
		return ErrClosed
	}
	return p.db.Delete([]byte(key), pebble.Sync)
}

func (p *PebbleStorage) Close() error {
	if p == nil || p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	return err
}
