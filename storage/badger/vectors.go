// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/groundwork/core"
	"github.com/poiesic/groundwork/storage"
)

// VectorCache is a BadgerDB backed storage.VectorCache.
type VectorCache struct {
	backend *Backend
	// owned is set when the cache opened the backend itself
	owned bool
}

var _ storage.VectorCache = (*VectorCache)(nil)

// NewVectorCache creates a vector cache on an existing backend.
// The caller remains responsible for closing the backend.
func NewVectorCache(backend *Backend) (*VectorCache, error) {
	if backend == nil {
		return nil, fmt.Errorf("backend required")
	}
	return &VectorCache{backend: backend}, nil
}

// OpenVectorCache opens a vector cache stored under path.
// Closing the cache closes the underlying database.
func OpenVectorCache(path string) (*VectorCache, error) {
	backend, err := OpenBackend(path, false, nil)
	if err != nil {
		return nil, err
	}
	return &VectorCache{backend: backend, owned: true}, nil
}

// GetVector returns the cached vector for key.
// Returns storage.ErrNotFound when absent.
func (c *VectorCache) GetVector(ctx context.Context, key core.ID) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var vector []float32
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeVectorKey(key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var err error
			vector, err = storage.UnmarshalVector(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return vector, nil
}

// PutVectors stores vectors in a single transaction. Empty vectors are skipped.
func (c *VectorCache) PutVectors(ctx context.Context, vectors map[core.ID][]float32) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(vectors) == 0 {
		return nil
	}

	return c.backend.WithTx(func(tx *badger.Txn) error {
		for key, vector := range vectors {
			if len(vector) == 0 {
				continue
			}
			if err := tx.Set(makeVectorKey(key), storage.MarshalVector(vector)); err != nil {
				return fmt.Errorf("caching vector %d: %w", key, err)
			}
		}
		return nil
	}, true)
}

// Len counts cached vectors.
func (c *VectorCache) Len(ctx context.Context) (int, error) {
	count := 0
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(vectorPrefix)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, ok := vectorKeyHash(iter.Item().Key()); ok {
				count++
			}
		}
		return nil
	}, false)
	return count, err
}

// Close releases the cache. The backend is closed only if the cache opened it.
func (c *VectorCache) Close() error {
	if c.owned {
		return c.backend.Close()
	}
	return nil
}
