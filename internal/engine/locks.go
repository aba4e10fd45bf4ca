package engine

import (
	"hash/fnv"
	"sync"
)

const lockShards = 64

// keyedLocks serializes writers of the same key while letting writers of
// different keys proceed in parallel. Keys hash onto a fixed shard set, so
// distinct keys may occasionally share a mutex; that only costs throughput,
// never correctness.
type keyedLocks struct {
	shards [lockShards]sync.Mutex
}

func (k *keyedLocks) lock(key string) (unlock func()) {
	h := fnv.New32a()
	h.Write([]byte(key))
	m := &k.shards[h.Sum32()%lockShards]
	m.Lock()
	return m.Unlock
}
