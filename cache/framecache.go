package cache

import "sync"

// DefaultCap is the default frame cache capacity used when Cap is left at
// its zero value.
const DefaultCap = 2

// FrameCache is a bounded FIFO of materialized decompressed-frame paths,
// kept per compressed source file. Decompressing a frame already present
// is a pure path lookup.
type FrameCache struct {
	// Cap is the maximum number of entries retained; zero means
	// DefaultCap.
	Cap int

	mu    sync.Mutex
	order []int
	paths map[int]string
}

func (c *FrameCache) capacity() int {
	if c.Cap <= 0 {
		return DefaultCap
	}
	return c.Cap
}

// Lookup returns the materialized path for frame, if present.
func (c *FrameCache) Lookup(frame int) (path string, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.paths == nil {
		return "", false
	}
	path, ok = c.paths[frame]
	return path, ok
}

// Insert records frame's materialized path, evicting the oldest entry if
// the cache is over capacity. evicted is the evicted frame's path, if any.
func (c *FrameCache) Insert(frame int, path string) (evicted string, didEvict bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.paths == nil {
		c.paths = make(map[int]string)
	}
	if _, exists := c.paths[frame]; !exists {
		c.order = append(c.order, frame)
	}
	c.paths[frame] = path

	if len(c.order) <= c.capacity() {
		return "", false
	}
	oldest := c.order[0]
	c.order = c.order[1:]
	evicted = c.paths[oldest]
	delete(c.paths, oldest)
	return evicted, true
}
