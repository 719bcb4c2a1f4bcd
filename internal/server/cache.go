package server

import (
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/lundberg/diffreview/internal/diff"
)

type cacheKey struct {
	base     string
	target   string
	worktree bool
}

func (k cacheKey) String() string {
	if k.worktree {
		return "worktree"
	}
	return k.base + ".." + k.target
}

// diffCache holds parsed diffs per ref pair. Concurrent misses for the same
// key share one load.
type diffCache struct {
	mu      sync.Mutex
	entries map[cacheKey][]diff.FileDiff
	gen     uint64
	group   singleflight.Group
}

func newDiffCache() *diffCache {
	return &diffCache{entries: make(map[cacheKey][]diff.FileDiff)}
}

func (c *diffCache) get(key cacheKey, load func() ([]diff.FileDiff, error)) ([]diff.FileDiff, error) {
	c.mu.Lock()
	if files, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return files, nil
	}
	gen := c.gen
	c.mu.Unlock()

	v, err, _ := c.group.Do(key.String(), func() (any, error) {
		files, err := load()
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		// A clear during the load means the result may already be stale.
		if c.gen == gen {
			c.entries[key] = files
		}
		c.mu.Unlock()
		return files, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]diff.FileDiff), nil
}

// clear drops all entries and returns how many were dropped.
func (c *diffCache) clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.entries)
	c.entries = make(map[cacheKey][]diff.FileDiff)
	c.gen++
	return n
}
