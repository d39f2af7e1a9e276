// Package persist adapts a key/value store to the board Persister contract
// by storing each collection as one JSON array.
package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/p-blackswan/mission-control/pkg/kvstore"
)

// KeyPrefix namespaces every collection key.
const KeyPrefix = "mission-control:"

// Key returns the storage key for a collection.
func Key(collection string) string { return KeyPrefix + collection }

// JSON persists a []T under a single key.
type JSON[T any] struct {
	kv  kvstore.Store
	key string
}

// NewJSON returns a persister for collection.
func NewJSON[T any](kv kvstore.Store, collection string) *JSON[T] {
	return &JSON[T]{kv: kv, key: Key(collection)}
}

// Load returns the stored list. A missing key is an empty list.
func (p *JSON[T]) Load(ctx context.Context) ([]T, error) {
	raw, err := p.kv.Get(ctx, p.key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", p.key, err)
	}
	return items, nil
}

// Save replaces the stored list.
func (p *JSON[T]) Save(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", p.key, err)
	}
	return p.kv.Set(ctx, p.key, raw)
}
