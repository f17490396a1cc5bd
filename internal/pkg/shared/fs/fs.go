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

package fs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/kardianos/osext"
)

// FileExist check if path exist
func FileExist(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// GetDir returns the program root directory. In development mode that is
// the closest parent of the working directory holding go.mod, otherwise
// the directory of the running executable.
func GetDir(devEnv bool) (string, error) {
	if devEnv {
		if wd, err := os.Getwd(); err == nil {
			for d := wd; ; d = filepath.Dir(d) {
				if FileExist(filepath.Join(d, "go.mod")) {
					return d, nil
				}
				if filepath.Dir(d) == d {
					break
				}
			}
		}
	}
	return osext.ExecutableFolder()
}

// Glob returns the sorted list of files in dir matching pattern
func Glob(dir, pattern string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// ReadJSON decodes the JSON file at path into v
func ReadJSON(path string, v interface{}) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// OverwriteFileBytes truncate filename and write b into it
func OverwriteFileBytes(b []byte, filename string) error {
	return os.WriteFile(filename, b, 0600)
}

// EnsureDir creates directory if it doesnt exist
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, os.FileMode(0700))
}
