package analysis

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"brilt/internal/cfg"
)

// Cache memoizes dominator trees and SCC decompositions across the
// passes of a pipeline. Entries key on the Cfg identity plus its
// generation counter, so a transform that touches the graph naturally
// misses and recomputes.

type cacheKey struct {
	c   *cfg.Cfg
	gen uint64
}

// Cache holds LRU-bounded analysis results.
type Cache struct {
	trees *lru.Cache[cacheKey, *DomTree]
	sccs  *lru.Cache[cacheKey, *SCCs]
}

// NewCache builds a cache bounded to size entries per analysis kind.
func NewCache(size int) *Cache {
	trees, err := lru.New[cacheKey, *DomTree](size)
	if err != nil {
		panic(err)
	}
	sccs, err := lru.New[cacheKey, *SCCs](size)
	if err != nil {
		panic(err)
	}
	return &Cache{trees: trees, sccs: sccs}
}

// DomTreeOf returns the dominator tree for c's current generation.
func (a *Cache) DomTreeOf(c *cfg.Cfg) *DomTree {
	key := cacheKey{c: c, gen: c.Generation()}
	if t, ok := a.trees.Get(key); ok {
		return t
	}
	t := BuildDomTree(c)
	a.trees.Add(key, t)
	return t
}

// SCCsOf returns the component decomposition for c's current generation.
func (a *Cache) SCCsOf(c *cfg.Cfg) *SCCs {
	key := cacheKey{c: c, gen: c.Generation()}
	if s, ok := a.sccs.Get(key); ok {
		return s
	}
	s := FindSCCs(c)
	a.sccs.Add(key, s)
	return s
}
