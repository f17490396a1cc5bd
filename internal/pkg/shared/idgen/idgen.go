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

package idgen

import (
	"strings"
	"sync"

	"github.com/teris-io/shortid"
)

var (
	sid     *shortid.Shortid
	once    sync.Once
	initErr error
)

// GenerateID creates a random shortid usable as a request ID. IDs never
// start with '-' so they stay safe as command line arguments.
func GenerateID() (string, error) {
	once.Do(func() {
		sid, initErr = shortid.New(1, shortid.DefaultABC, 2342)
	})
	if initErr != nil {
		return "", initErr
	}
	for {
		id, e := sid.Generate()
		if e != nil {
			return "", e
		}
		if !strings.HasPrefix(id, "-") {
			return id, nil
		}
	}
}
