package regions

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"golang.org/x/text/cases"
)

// Cache stores resolved region coordinates.
type Cache interface {
	Get(region string) (Coords, bool, error)
	Put(region string, c Coords) error
}

// BadgerCache is a Cache persisted in a badger database.
type BadgerCache struct {
	db *badger.DB
}

var _ Cache = (*BadgerCache)(nil)

// OpenCache opens or creates the cache in dir. An empty dir keeps the cache in memory.
func OpenCache(dir string) (*BadgerCache, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BadgerCache{db: db}, nil
}

func (c *BadgerCache) Close() error {
	return c.db.Close()
}

func (c *BadgerCache) Get(region string) (Coords, bool, error) {
	var v Coords
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(cacheKey(region))
		if err != nil {
			return err
		}
		return item.Value(func(b []byte) error {
			return json.Unmarshal(b, &v)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Coords{}, false, nil
	}
	if err != nil {
		return Coords{}, false, err
	}
	return v, true, nil
}

func (c *BadgerCache) Put(region string, v Coords) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(cacheKey(region), b)
	})
}

// Region names are case-insensitive.
func cacheKey(region string) []byte {
	return []byte("region:" + cases.Fold().String(strings.TrimSpace(region)))
}
