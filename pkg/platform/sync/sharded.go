// Package sync adds keyed locking on top of the standard sync package.
package sync

import (
	"hash/maphash"
	"sync"
)

const shards = 32

// KeyedMutex serializes work per key. Keys on different shards never contend;
// unrelated keys may share a shard.
type KeyedMutex[K ~string] struct {
	seed  maphash.Seed
	locks [shards]sync.Mutex
}

func NewKeyedMutex[K ~string]() *KeyedMutex[K] {
	return &KeyedMutex[K]{seed: maphash.MakeSeed()}
}

// Do runs fn holding key's shard lock.
func (m *KeyedMutex[K]) Do(key K, fn func() error) error {
	mu := &m.locks[m.shard(key)]
	mu.Lock()
	defer mu.Unlock()
	return fn()
}

func (m *KeyedMutex[K]) shard(key K) uint64 {
	return maphash.String(m.seed, string(key)) % shards
}
