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

package intel

import (
	"fmt"
	"sort"
	"sync"
)

// Factory returns a fresh, uninitialized Checker
type Factory func() Checker

type registry struct {
	sync.RWMutex
	m map[string]Factory
}

// Checkers holds the plugins available to intel sources, keyed by the
// name used in a source's "plugin" field
var Checkers = &registry{m: make(map[string]Factory)}

// Register adds a plugin under name. It returns false when name is empty
// or already taken.
func (r *registry) Register(name string, f Factory) bool {
	if name == "" || f == nil {
		return false
	}
	r.Lock()
	defer r.Unlock()
	if _, ok := r.m[name]; ok {
		return false
	}
	r.m[name] = f
	return true
}

// Unregister removes name, reporting whether it was present
func (r *registry) Unregister(name string) bool {
	r.Lock()
	defer r.Unlock()
	if _, ok := r.m[name]; !ok {
		return false
	}
	delete(r.m, name)
	return true
}

// Names returns the registered plugin names in sorted order
func (r *registry) Names() []string {
	r.RLock()
	defer r.RUnlock()
	names := make([]string, 0, len(r.m))
	for k := range r.m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// New creates a Checker for plugin name and initializes it with config
func (r *registry) New(name string, config []byte) (Checker, error) {
	r.RLock()
	f, ok := r.m[name]
	r.RUnlock()
	if !ok {
		return nil, fmt.Errorf("intel plugin %s is not registered", name)
	}
	c := f()
	if err := c.Initialize(config); err != nil {
		return nil, fmt.Errorf("cannot initialize intel plugin %s: %w", name, err)
	}
	return c, nil
}
