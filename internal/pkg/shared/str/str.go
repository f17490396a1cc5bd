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

package str

import (
	"strings"
)

// AppendUniq append string to slice if it its not there yet
func AppendUniq(slice []string, i string) []string {
	for _, ele := range slice {
		if ele == i {
			return slice
		}
	}
	return append(slice, i)
}

// CsvToSlice convert s to []string; where s is in the form of string, string, string
func CsvToSlice(s string) []string {
	return strings.Fields(strings.Replace(s, ",", " ", -1))
}

// Terms flattens command line arguments that may each hold a comma
// separated list, dropping duplicates while keeping the first-seen order
func Terms(args []string) (out []string) {
	for _, a := range args {
		for _, t := range CsvToSlice(a) {
			out = AppendUniq(out, t)
		}
	}
	return
}
