package engine

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"platwatch/internal/domain"
)

// PriceCache memoizes time-windowed price-sample sequences per item so a
// worker cycle does not repeat statistics fetches already paid for. It is
// shared by both refresh workers, so it is thread safe; a
// singleflight.Group coalesces concurrent fetches of the same key.
//
// Entries are whole-sequence values keyed by (window, item). They are
// created on first fetch and replaced only by an explicit forced
// refresh, never partially invalidated.
type PriceCache struct {
	source domain.MarketSource

	mu      sync.RWMutex
	entries map[domain.Window]map[string][]domain.PriceSample
	group   singleflight.Group
}

// NewPriceCache creates an empty cache backed by the given source.
func NewPriceCache(source domain.MarketSource) *PriceCache {
	return &PriceCache{
		source:  source,
		entries: make(map[domain.Window]map[string][]domain.PriceSample),
	}
}

// Contains reports whether a sequence is cached for the key, without
// triggering a fetch.
func (c *PriceCache) Contains(urlName string, window domain.Window) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[window][urlName]
	return ok
}

// Get returns the sample sequence for (item, window). On a hit with
// force=false the stored sequence is returned without any remote call;
// on a miss, or with force=true, the statistics are fetched, filtered to
// base-condition samples, stored, and returned.
func (c *PriceCache) Get(ctx context.Context, urlName string, window domain.Window, force bool) ([]domain.PriceSample, error) {
	if !force {
		c.mu.RLock()
		cached, ok := c.entries[window][urlName]
		c.mu.RUnlock()
		if ok {
			return cached, nil
		}
	}

	key := string(window) + ":" + urlName
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// Re-check under singleflight: a concurrent caller may have
		// populated the entry while this one waited.
		if !force {
			c.mu.RLock()
			cached, ok := c.entries[window][urlName]
			c.mu.RUnlock()
			if ok {
				return cached, nil
			}
		}

		raw, err := c.source.Statistics(ctx, urlName, window)
		if err != nil {
			return nil, err
		}

		filtered := make([]domain.PriceSample, 0, len(raw))
		for _, s := range raw {
			if s.Level != 0 {
				continue
			}
			filtered = append(filtered, s)
		}

		c.mu.Lock()
		if c.entries[window] == nil {
			c.entries[window] = make(map[string][]domain.PriceSample)
		}
		c.entries[window][urlName] = filtered
		c.mu.Unlock()

		return filtered, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.PriceSample), nil
}
