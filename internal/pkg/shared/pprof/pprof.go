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

package pprof

import (
	"fmt"

	"github.com/pkg/profile"
)

// Modes lists the accepted profiler names
var Modes = []string{"cpu", "memory", "mutex", "block"}

// GetProfiler starts the named profiler writing into dir and returns it so
// the caller can Stop it on shutdown
func GetProfiler(p string, dir string) (interface{ Stop() }, error) {
	var mode func(*profile.Profile)
	switch p {
	case "cpu":
		mode = profile.CPUProfile
	case "memory":
		mode = profile.MemProfile
	case "mutex":
		mode = profile.MutexProfile
	case "block":
		mode = profile.BlockProfile
	default:
		return nil, fmt.Errorf("invalid profiler %q, valid option is %v", p, Modes)
	}
	opts := []func(*profile.Profile){mode, profile.NoShutdownHook, profile.Quiet}
	if dir != "" {
		opts = append(opts, profile.ProfilePath(dir))
	}
	return profile.Start(opts...), nil
}
