// Package badger is the embedded document store the pipeline persists
// assembled ticker records into.
package badger

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/timshannon/badgerhold/v4"
)

// DB manages the Badger database connection.
type DB struct {
	store  *badgerhold.Store
	logger zerolog.Logger
}

// Open opens (creating if needed) the database at path.
func Open(path string) (*DB, error) {
	logger := log.With().Str("component", "badger").Logger()

	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = path
	options.ValueDir = path
	options.Logger = nil // quiet the default badger logger

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("opening badger database: %w", err)
	}

	logger.Debug().Str("path", path).Msg("Badger database opened")

	return &DB{store: store, logger: logger}, nil
}

// Store returns the underlying badgerhold store.
func (db *DB) Store() *badgerhold.Store {
	return db.store
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.store != nil {
		return db.store.Close()
	}
	return nil
}
