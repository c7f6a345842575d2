package indicators

import (
	"github.com/rs/zerolog/log"

	"github.com/quantsweep/quantsweep/internal/market"
)

// Cache holds precomputed indicator series keyed by an indicator identity
// string. It is built synchronously before a parameter sweep fans out and is
// read-only afterwards, so workers may share it without locking.
type Cache struct {
	entries map[string]cacheEntry
}

type cacheEntry struct {
	series *Series
	err    error
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]cacheEntry)}
}

// Put computes the indicator over the series and stores the result under the
// given key. A computation error (such as insufficient data) is stored too,
// so repeated lookups replay it instead of recomputing.
func (c *Cache) Put(key string, ind Indicator, s *market.Series) {
	if _, ok := c.entries[key]; ok {
		return
	}
	series, err := ind.Compute(s)
	c.entries[key] = cacheEntry{series: series, err: err}
}

// Get returns the cached series for a key. ok reports whether the key is
// present; err replays the stored computation error, if any.
func (c *Cache) Get(key string) (series *Series, ok bool, err error) {
	e, hit := c.entries[key]
	if !hit {
		return nil, false, nil
	}
	return e.series, true, e.err
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	return len(c.entries)
}

// PrecomputeRange computes one indicator series per window in
// [windowStart, windowEnd] with the given step, each in a single forward
// pass. The build function binds the window to a concrete indicator.
func PrecomputeRange(build func(window int) (Indicator, error), s *market.Series, windowStart, windowEnd, step int) (map[int]*Series, error) {
	if step < 1 {
		step = 1
	}

	out := make(map[int]*Series)
	for w := windowStart; w <= windowEnd; w += step {
		ind, err := build(w)
		if err != nil {
			return nil, err
		}
		series, err := ind.Compute(s)
		if err != nil {
			// Short series for this window only; the series is fully
			// Undefined and the caller decides whether that matters.
			log.Debug().Err(err).Int("window", w).Msg("Indicator window skipped warmup")
		}
		out[w] = series
	}

	return out, nil
}
