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

// Package lookup runs intel sources against IP addresses and caches the
// combined results, including the fact that nothing was found
package lookup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/defenxor/dshield/internal/pkg/shared/apm"
	"github.com/defenxor/dshield/internal/pkg/shared/cache"
	"github.com/defenxor/dshield/internal/pkg/shared/fs"
	log "github.com/defenxor/dshield/internal/pkg/shared/logger"
	"github.com/defenxor/dshield/pkg/intel"

	"github.com/paulbellamy/ratecounter"
)

// FileGlob selects intel source files inside the config directory
const FileGlob = "intel_*.json"

// DefaultTimeout bounds a single source lookup
const DefaultTimeout = 5 * time.Second

// ErrNoSource is returned when no enabled source could be loaded
var ErrNoSource = errors.New("no intel source loaded")

// Source is an entry of an intel source file. Config is handed to the
// plugin untouched.
type Source struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Enabled bool   `json:"enabled"`
	Plugin  string `json:"plugin"`
	Config  string `json:"config"`
}

// Sources is the content of one intel source file
type Sources struct {
	IntelSources []Source `json:"intel_sources"`
}

type checker struct {
	intel.Checker
	name string
}

// Stats summarizes lookup activity
type Stats struct {
	LookupsPerMinute int64    `json:"lookups_per_minute"`
	Lookups          int64    `json:"lookups"`
	CacheHits        int64    `json:"cache_hits"`
	CacheEntries     int      `json:"cache_entries"`
	Sources          []string `json:"sources"`
}

// Intel checks terms against the loaded sources
type Intel struct {
	lookups int64
	hits    int64
	// Timeout bounds each source lookup, DefaultTimeout when zero
	Timeout  time.Duration
	checkers []checker
	cache    *cache.Cache
	rate     *ratecounter.RateCounter
}

// New creates an Intel with an empty source list and a result cache whose
// entries live for cacheMinutes
func New(cacheMinutes int) (*Intel, error) {
	c, err := cache.New("intel", cacheMinutes, 0)
	if err != nil {
		return nil, err
	}
	return &Intel{
		Timeout: DefaultTimeout,
		cache:   c,
		rate:    ratecounter.NewRateCounter(time.Minute),
	}, nil
}

// Load reads every FileGlob file in confDir and adds the enabled sources.
// Sources whose plugin is missing or fails to initialize are skipped with
// a warning.
func Load(confDir string, cacheMinutes int) (*Intel, error) {
	files, err := fs.Glob(confDir, FileGlob)
	if err != nil {
		return nil, err
	}
	it, err := New(cacheMinutes)
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		var s Sources
		if err := fs.ReadJSON(f, &s); err != nil {
			it.Close()
			return nil, errors.New("cannot read " + f + ": " + err.Error())
		}
		for _, src := range s.IntelSources {
			if !src.Enabled {
				continue
			}
			if err := it.AddSource(src); err != nil {
				log.Warn(log.M{Msg: err.Error(), Endpoint: src.Name})
				continue
			}
			log.Info(log.M{Msg: "Adding intel plugin " + src.Plugin, Endpoint: src.Name})
		}
	}
	log.Info(log.M{Msg: "Loaded " + strconv.Itoa(len(it.checkers)) + " threat intelligence sources."})
	if len(it.checkers) == 0 {
		return it, ErrNoSource
	}
	return it, nil
}

// AddSource initializes src's plugin and appends it to the source list.
// It is not safe to call once lookups have started.
func (it *Intel) AddSource(src Source) error {
	c, err := intel.Checkers.New(src.Plugin, []byte(src.Config))
	if err != nil {
		return err
	}
	name := src.Name
	if name == "" {
		name = src.Plugin
	}
	it.checkers = append(it.checkers, checker{c, name})
	return nil
}

// Sources returns the names of the loaded sources, in lookup order
func (it *Intel) Sources() []string {
	names := make([]string, 0, len(it.checkers))
	for _, c := range it.checkers {
		names = append(names, c.name)
	}
	return names
}

// CheckIP looks term up in every source and returns the combined results.
// Results are cached only when at least one source answered, and a term
// nobody knows is cached as not found. parent, when given, continues a
// distributed trace.
func (it *Intel) CheckIP(ctx context.Context, term, rid string, parent *apm.TraceHeader) (found bool, results []intel.Result) {
	atomic.AddInt64(&it.lookups, 1)
	it.rate.Incr(1)

	if res, err := it.cache.Get(term); err == nil {
		atomic.AddInt64(&it.hits, 1)
		if bytes.Equal(res, cache.NotFound) {
			log.Debug(log.M{Msg: "Returning intel cache entry (not found)", Term: term, RId: rid})
			return
		}
		if err := json.Unmarshal(res, &results); err == nil {
			log.Debug(log.M{Msg: "Returning intel cache entry (found)", Term: term, RId: rid})
			return true, results
		}
		results = nil
	}

	var tx *apm.Transaction
	if apm.Enabled() {
		tx = apm.StartTransaction("Threat Intel Lookup", "intel", parent)
		tx.SetLabel("term", term)
		defer tx.End()
	}

	timeout := it.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	answered := false
	for _, c := range it.checkers {
		f, r, err := it.check(ctx, c, term, timeout, tx)
		if err != nil {
			log.Warn(log.M{Msg: "Error received from intel checker: " + err.Error(), Endpoint: c.name, Term: term, RId: rid})
			if tx != nil {
				tx.SetError(err)
			}
			continue
		}
		answered = true
		if f {
			found = true
			results = append(results, r...)
		}
	}

	if tx != nil {
		switch {
		case !answered:
			tx.Result("No source answered")
		case found:
			tx.Result("Intel found")
		default:
			tx.Result("Intel not found")
		}
	}

	if !answered {
		return
	}
	if found {
		if b, err := json.Marshal(results); err == nil {
			it.store(term, b, rid)
		}
	} else {
		it.store(term, cache.NotFound, rid)
	}
	return
}

func (it *Intel) check(ctx context.Context, c checker, term string, timeout time.Duration, tx *apm.Transaction) (bool, []intel.Result, error) {
	if tx != nil {
		var end func()
		ctx, end = tx.StartSpan(ctx, c.name, "intel.source")
		defer end()
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.CheckIP(ctx, term)
}

func (it *Intel) store(term string, b []byte, rid string) {
	if err := it.cache.Set(term, b); err != nil {
		log.Warn(log.M{Msg: "Cannot store intel result in cache: " + err.Error(), Term: term, RId: rid})
		return
	}
	log.Debug(log.M{Msg: "Storing intel result in cache", Term: term, RId: rid})
}

// Stats returns a snapshot of lookup activity
func (it *Intel) Stats() Stats {
	return Stats{
		LookupsPerMinute: it.rate.Rate(),
		Lookups:          atomic.LoadInt64(&it.lookups),
		CacheHits:        atomic.LoadInt64(&it.hits),
		CacheEntries:     it.cache.Len(),
		Sources:          it.Sources(),
	}
}

// Close releases the cache
func (it *Intel) Close() error {
	return it.cache.Close()
}
