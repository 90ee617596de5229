package trackview

import lru "github.com/hashicorp/golang-lru/v2"

// reduceKey identifies one reduction result: which segment of the current
// source and at which tolerance. Keys from an older source are never reused
// because the cache is purged whenever the source is replaced.
type reduceKey struct {
	segment   int
	tolerance float64
}

// reduceCache memoizes reduced segments so scrubbing the tolerance dial back
// and forth does not rerun the reducer on unchanged sources. All methods are
// safe on a nil receiver, which is how a disabled cache is represented.
type reduceCache struct {
	entries *lru.Cache[reduceKey, []Point]
}

// newReduceCache returns a cache holding up to size entries, or nil when
// size is not positive
func newReduceCache(size int) *reduceCache {
	if size <= 0 {
		return nil
	}
	entries, err := lru.New[reduceKey, []Point](size)
	if err != nil {
		return nil
	}
	return &reduceCache{entries: entries}
}

func (c *reduceCache) get(k reduceKey) ([]Point, bool) {
	if c == nil {
		return nil, false
	}
	return c.entries.Get(k)
}

func (c *reduceCache) add(k reduceKey, points []Point) {
	if c == nil {
		return
	}
	c.entries.Add(k, points)
}

func (c *reduceCache) purge() {
	if c == nil {
		return
	}
	c.entries.Purge()
}

// reduceSegment runs the reducer through the cache
func (c *reduceCache) reduceSegment(segment int, points []Point, tolerance float64, project Projector) []Point {
	key := reduceKey{segment: segment, tolerance: tolerance}
	if cached, ok := c.get(key); ok {
		return cached
	}
	reduced := Reduce(points, tolerance, project)
	c.add(key, reduced)
	return reduced
}
