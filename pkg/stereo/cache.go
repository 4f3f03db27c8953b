package stereo

import (
	"context"
	"sync"

	"github.com/golang/groupcache/lru"

	"github.com/dixieflatline76/Pano/pkg/projection"
	"github.com/dixieflatline76/Pano/util"
	"github.com/dixieflatline76/Pano/util/log"
)

// defaultCacheSize is used when a cache is created with a non-positive size.
const defaultCacheSize = 8

// MapCache keeps the most recently used projection maps in memory. Frames of
// a stream share their size, so each map pair is computed once.
type MapCache struct {
	mu      sync.Mutex
	entries *lru.Cache
	workers int
	hits    *util.SafeCounter
	misses  *util.SafeCounter
}

type mapPair struct {
	x, y *projection.Grid
}

// NewMapCache creates a cache holding up to size map pairs, computed with
// the given number of workers.
func NewMapCache(size, workers int) *MapCache {
	if size <= 0 {
		size = defaultCacheSize
	}
	return &MapCache{
		entries: lru.New(size),
		workers: workers,
		hits:    util.NewSafeCounter(0),
		misses:  util.NewSafeCounter(0),
	}
}

// Get returns the maps for p, computing and caching them on a miss. The
// returned grids are shared and must not be modified.
func (c *MapCache) Get(ctx context.Context, p projection.Params) (xMap, yMap *projection.Grid, err error) {
	if err := p.Validate(); err != nil {
		return nil, nil, err
	}

	c.mu.Lock()
	v, ok := c.entries.Get(p)
	c.mu.Unlock()
	if ok {
		c.hits.Increment()
		pair := v.(mapPair)
		return pair.x, pair.y, nil
	}

	c.misses.Increment()
	log.Debugf("stereo: computing maps for %dx%d dist=%.3f rot=%.3f", p.Width, p.Height, p.Distance, p.Rotation)
	xMap, yMap, err = projection.ComputeMapsContext(ctx, p.Width, p.Height, p.Distance, p.Rotation, c.workers)
	if err != nil {
		return nil, nil, err
	}

	c.mu.Lock()
	c.entries.Add(p, mapPair{x: xMap, y: yMap})
	c.mu.Unlock()
	return xMap, yMap, nil
}

// Len returns the number of cached map pairs.
func (c *MapCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Len()
}

// Stats returns the number of cache hits and misses so far.
func (c *MapCache) Stats() (hits, misses int) {
	return c.hits.Value(), c.misses.Value()
}
