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

// Format selects the representation requested from the API. The zero value
// asks for JSON and returns the decoded, normalized result; any other value
// returns the response body verbatim as a string.
type Format string

// Output formats supported by the API
const (
	Decoded Format = ""
	JSON    Format = "json"
	XML     Format = "xml"
	Text    Format = "text"
	PHP     Format = "php"
)

// Raw reports whether f returns the body verbatim
func (f Format) Raw() bool {
	return f != Decoded
}

// query returns the query string sent to the API for f
func (f Format) query() string {
	if f == Decoded {
		return string(JSON)
	}
	return string(f)
}

// ParseFormat converts s to a Format, accepting an empty string for the
// decoded mode.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case Decoded, JSON, XML, Text, PHP:
		return f, nil
	}
	return Decoded, &formatError{s}
}

type formatError struct {
	s string
}

func (e *formatError) Error() string {
	return "unsupported output format " + e.s + ", must be one of json, xml, text, php"
}
