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
	"bytes"
	"testing"
)

func TestCache(t *testing.T) {
	if _, err := New("intel", 0, 3); err == nil {
		t.Error("Expected error for shard eq. 3")
	}

	c, err := New("intel", 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	var tbl = []struct {
		key string
		val []byte
	}{
		{"1.2.3.4", []byte(`[{"provider":"DShield"}]`)},
		{"5.6.7.8", NotFound},
	}

	for _, tt := range tbl {
		if err := c.Set(tt.key, tt.val); err != nil {
			t.Fatal(err)
		}
		actual, err := c.Get(tt.key)
		if err != nil {
			t.Error(err)
		}
		if !bytes.Equal(actual, tt.val) {
			t.Errorf("key %v, result is %s expected %s.", tt.key, actual, tt.val)
		}
		if !c.Has(tt.key) {
			t.Errorf("expected key %v to be present", tt.key)
		}
	}

	if _, err := c.Get("9.9.9.9"); err == nil {
		t.Error("expected an error for a missing key")
	}
	if c.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", c.Len())
	}
	if c.Hits() < 2 {
		t.Errorf("expected at least 2 hits, got %d", c.Hits())
	}
}
