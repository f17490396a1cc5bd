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
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrBadIPAddress is matched by errors.Is when the API rejects an IP address
	ErrBadIPAddress = errors.New("bad IP address")
	// ErrBadPortNumber is matched by errors.Is when the API rejects a port number
	ErrBadPortNumber = errors.New("bad port number")
	// ErrUnknownEndpoint is returned by Call for names missing from Endpoints
	ErrUnknownEndpoint = errors.New("unknown endpoint")
	// ErrMissingParam is returned by Call when a required parameter is omitted
	ErrMissingParam = errors.New("missing required parameter")
)

// Error is returned when the API reports that an input was invalid inside an
// otherwise successful response.
type Error struct {
	Kind  error
	Input string
}

func (e *Error) Error() string {
	k := e.Kind.Error()
	return strings.ToUpper(k[:1]) + k[1:] + ", " + e.Input
}

// Is makes errors.Is(err, ErrBadIPAddress) work for *Error values
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// checkPhrase returns an *Error of kind when the serialized form of v
// contains the text of kind. The API reports these input errors as plain
// strings inside the payload, so there is no structured field to check.
func checkPhrase(v interface{}, kind error, input interface{}) error {
	if kind == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		b = []byte(fmt.Sprint(v))
	}
	if !strings.Contains(string(b), kind.Error()) {
		return nil
	}
	s, _ := segment(input)
	return &Error{Kind: kind, Input: s}
}
