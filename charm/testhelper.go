// ABOUTME: Offline charm client backed by a plain BadgerDB directory
// ABOUTME: Used by tests and by the migrate tool when no charm server is wanted

package charm

import (
	"testing"

	"github.com/dgraph-io/badger/v3"
)

// badgerKV mirrors the charm/kv API on a local Badger database.
type badgerKV struct {
	db *badger.DB
}

func (b *badgerKV) Get(key []byte) ([]byte, error) {
	var out []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	return out, err
}

func (b *badgerKV) Set(key, value []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

func (b *badgerKV) Delete(key []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

func (b *badgerKV) Keys() ([][]byte, error) {
	var keys [][]byte
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	return keys, err
}

func (b *badgerKV) Sync() error { return nil }

func (b *badgerKV) Reset() error { return b.db.DropAll() }

// OpenOffline opens a Badger directory as a client that never syncs.
// The returned close func releases the database.
func OpenOffline(dir string) (*Client, func() error, error) {
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, nil, err
	}
	c := &Client{
		kv:      &badgerKV{db: db},
		config:  &Config{Host: "localhost"},
		offline: true,
	}
	return c, db.Close, nil
}

// NewTestClient returns an offline client in a temp directory that is
// removed when the test ends.
func NewTestClient(t *testing.T) *Client {
	t.Helper()
	c, closeDB, err := OpenOffline(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to open badger: %v", err)
	}
	t.Cleanup(func() {
		if err := closeDB(); err != nil {
			t.Logf("Warning: failed to close test database: %v", err)
		}
	})
	return c
}
