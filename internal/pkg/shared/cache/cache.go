// Copyright (c) 2018 PT Defender Nusa Semesta and contributors, All rights reserved.
//
// This file is part of Dsiem.
//
// Dsiem is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation version 3 of the License.
//
// Dsiem is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Dsiem. If not, see <https://www.gnu.org/licenses/>.

package cache

import (
	"time"

	"github.com/allegro/bigcache"
)

// NotFound is stored for terms that a source has no data for, so that
// negative results are cached too
var NotFound = []byte("n/f")

// Cache wraps a bigcache instance under a name
type Cache struct {
	ID    string
	cache *bigcache.BigCache
}

// New creates a cache whose entries live for lifetimeMinutes. shards must
// be a power of two; zero values select defaults.
func New(name string, lifetimeMinutes int, shards int) (*Cache, error) {
	if lifetimeMinutes == 0 {
		lifetimeMinutes = 10
	}
	if shards == 0 {
		shards = 128
	}
	config := bigcache.Config{
		Shards:             shards,
		LifeWindow:         time.Duration(lifetimeMinutes) * time.Minute,
		CleanWindow:        time.Minute,
		MaxEntriesInWindow: shards * lifetimeMinutes * 60,
		// intel results for a single IP are small JSON arrays
		MaxEntrySize:     1024,
		HardMaxCacheSize: shards,
	}
	p, err := bigcache.NewBigCache(config)
	if err != nil {
		return nil, err
	}
	return &Cache{ID: name, cache: p}, nil
}

// Set stores value under key
func (c *Cache) Set(key string, value []byte) error {
	return c.cache.Set(key, value)
}

// Get returns the value of key, or an error when it is absent or expired
func (c *Cache) Get(key string) ([]byte, error) {
	return c.cache.Get(key)
}

// Has reports whether key is present
func (c *Cache) Has(key string) bool {
	_, err := c.cache.Get(key)
	return err == nil
}

// Len returns the number of stored entries
func (c *Cache) Len() int {
	return c.cache.Len()
}

// Hits returns how many Get calls found their key
func (c *Cache) Hits() int64 {
	return c.cache.Stats().Hits
}

// Close drops every entry
func (c *Cache) Close() error {
	return c.cache.Reset()
}
