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

package dshield

import (
	"sort"
	"strconv"
	"strings"
)

// MetaKey is the metadata key the API adds to some JSON objects
const MetaKey = "METAKEYINFO"

// Normalize strips MetaKey from a decoded JSON object and, when every
// remaining key is an integer, turns the object into a slice ordered by key.
// Objects with other keys are returned as a copy without MetaKey. Slices and
// scalars are returned unchanged. v itself is never modified.
//
// An object that is empty once MetaKey is removed becomes an empty slice.
func Normalize(v interface{}) interface{} {
	m, ok := v.(map[string]interface{})
	if !ok {
		return v
	}

	cp := make(map[string]interface{}, len(m))
	for k, val := range m {
		if k == MetaKey {
			continue
		}
		cp[k] = val
	}

	type indexed struct {
		i   int
		key string
	}
	keys := make([]indexed, 0, len(cp))
	for k := range cp {
		i, err := strconv.Atoi(strings.TrimSpace(k))
		if err != nil {
			return cp
		}
		keys = append(keys, indexed{i, k})
	}
	sort.Slice(keys, func(a, b int) bool { return keys[a].i < keys[b].i })

	list := make([]interface{}, 0, len(keys))
	for _, k := range keys {
		list = append(list, cp[k.key])
	}
	return list
}
