package database

import (
	"fmt"
	"os"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"
)

var DB *badger.DB

// Connect opens the embedded Badger store at the given directory, creating it
// if needed. The store holds the community board; everything else in the
// system lives in process memory.
func Connect(dataDir string) error {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory %s: %w", dataDir, err)
	}

	options := badger.DefaultOptions(dataDir)
	options.Logger = nil // badger's own logger is noisy; logrus covers our side

	db, err := badger.Open(options)
	if err != nil {
		return fmt.Errorf("failed to open badger store at %s: %w", dataDir, err)
	}

	DB = db
	logrus.WithField("path", dataDir).Info("Badger store opened")
	return nil
}

// Close closes the store
func Close() {
	if DB != nil {
		if err := DB.Close(); err != nil {
			logrus.Errorf("Error closing badger store: %v", err)
		}
	}
}

// Get reads the value stored under key. Returns (nil, nil) when the key is absent.
func Get(db *badger.DB, key string) ([]byte, error) {
	var value []byte
	err := db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Set writes value under key, replacing any previous value wholesale
func Set(db *badger.DB, key string, value []byte) error {
	return db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
}
