package semantic

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

const cacheShards = 32

// cache is an append-only, sharded term -> vector map.
type cache struct {
	shards [cacheShards]cacheShard
}

type cacheShard struct {
	mu sync.RWMutex
	m  map[string][]float32
}

func newCache() *cache {
	c := &cache{}
	for i := range c.shards {
		c.shards[i].m = make(map[string][]float32)
	}
	return c
}

func (c *cache) shard(term string) *cacheShard {
	return &c.shards[xxhash.Sum64String(term)%cacheShards]
}

func (c *cache) get(term string) ([]float32, bool) {
	s := c.shard(term)
	s.mu.RLock()
	v, ok := s.m[term]
	s.mu.RUnlock()
	return v, ok
}

func (c *cache) put(term string, v []float32) {
	s := c.shard(term)
	s.mu.Lock()
	if _, ok := s.m[term]; !ok {
		s.m[term] = v
	}
	s.mu.Unlock()
}

func (c *cache) len() int {
	n := 0
	for i := range c.shards {
		c.shards[i].mu.RLock()
		n += len(c.shards[i].m)
		c.shards[i].mu.RUnlock()
	}
	return n
}
