// curveplot/cache.go
// Copyright(c) 2022-2025 celplot contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package curveplot

import (
	"time"

	"github.com/mmp/celplot/log"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache holds recently loaded plots so that scenes referring to the same
// trajectory file more than once only read it once. It is safe for
// concurrent use.
type Cache struct {
	plots *expirable.LRU[string, *CurvePlot]
	lg    *log.Logger
}

func NewCache(size int, ttl time.Duration, lg *log.Logger) *Cache {
	return &Cache{
		plots: expirable.NewLRU[string, *CurvePlot](size, nil, ttl),
		lg:    lg,
	}
}

// Get returns the plot stored in the given file, loading it if it isn't
// in the cache. The returned plot is a copy that the caller may modify.
func (c *Cache) Get(path string) (*CurvePlot, error) {
	if p, ok := c.plots.Get(path); ok {
		c.lg.Debugf("%s: cache hit", path)
		return p.Clone(), nil
	}

	start := time.Now()
	p, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	c.lg.Infof("%s: loaded %d samples in %s", path, p.Len(), time.Since(start))

	c.plots.Add(path, p)
	return p.Clone(), nil
}

func (c *Cache) Len() int {
	return c.plots.Len()
}

// Purge discards all cached plots.
func (c *Cache) Purge() {
	c.plots.Purge()
}
