// Copyright 2024-2025
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package data

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultSeriesTTL bounds how long a fetched price series is reused
// before it is considered stale.
const DefaultSeriesTTL = 60 * time.Second

type seriesCacheEntry struct {
	series    *PriceSeries
	fetchedAt time.Time
}

// SeriesCache is a TTL cache of price series keyed by instrument and
// date range. Entries younger than the TTL are reused without a network
// call; older entries are refetched and overwritten by the caller.
type SeriesCache struct {
	mu      sync.RWMutex
	entries map[string]seriesCacheEntry
	ttl     time.Duration
}

func NewSeriesCache(ttl time.Duration) *SeriesCache {
	if ttl <= 0 {
		ttl = DefaultSeriesTTL
	}
	return &SeriesCache{
		entries: make(map[string]seriesCacheEntry),
		ttl:     ttl,
	}
}

// SeriesKey builds the cache key for an instrument and date range.
func SeriesKey(symbol string, start, end time.Time) string {
	return fmt.Sprintf("%s|%s_%s", symbol, start.Format(DateFormat), end.Format(DateFormat))
}

func (c *SeriesCache) Get(symbol string, start, end time.Time) (*PriceSeries, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[SeriesKey(symbol, start, end)]
	if !ok {
		return nil, false
	}
	if time.Since(entry.fetchedAt) >= c.ttl {
		return nil, false
	}
	return entry.series, true
}

func (c *SeriesCache) Set(symbol string, start, end time.Time, series *PriceSeries) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[SeriesKey(symbol, start, end)] = seriesCacheEntry{
		series:    series,
		fetchedAt: time.Now(),
	}
}

// Sweep drops every expired entry and returns the number evicted. Run
// periodically; a long-lived server has no page lifetime to bound the
// map the way the browser dashboard did.
func (c *SeriesCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	evicted := 0
	for k, entry := range c.entries {
		if time.Since(entry.fetchedAt) >= c.ttl {
			delete(c.entries, k)
			evicted++
		}
	}
	if evicted > 0 {
		log.Debug().Int("Evicted", evicted).Msg("swept expired price series from cache")
	}
	return evicted
}

// Len reports the number of cached entries, expired or not.
func (c *SeriesCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
