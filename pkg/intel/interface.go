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

// Package intel provides entry point for threat intel plugins
package intel

import "context"

// Checker defines the behaviour that must be implemented by an intel plugin
type Checker interface {
	// Initialize configures the checker from the source's config string
	Initialize(config []byte) error
	// CheckIP returns found = false, with a nil error, when the source has
	// nothing on ip
	CheckIP(ctx context.Context, ip string) (found bool, results []Result, err error)
}

// Result defines the struct that must be returned by an intel plugin
type Result struct {
	Provider string `json:"provider"`
	Term     string `json:"term"`
	Result   string `json:"result"`
}
