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
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the date format used in request paths
const DateLayout = "2006-01-02"

// BuildURI composes the request path for endpoint from its optional segments,
// in the endpoint's fixed order.
//
// The API nests optional path parameters, so segments are appended only up
// to the first omitted one: a later segment supplied after an omitted
// segment is silently dropped. BuildURI("porthistory", 80, nil, end) returns
// "porthistory/80".
//
// nil, the empty string, a zero of any integer kind (named integer types
// included) and the zero time.Time count as omitted. time.Time values are
// formatted as YYYY-MM-DD, strings are used verbatim.
func BuildURI(endpoint string, segments ...interface{}) string {
	parts := []string{endpoint}
	for _, s := range segments {
		v, ok := segment(s)
		if !ok {
			break
		}
		parts = append(parts, v)
	}
	return strings.Join(parts, "/")
}

// segment returns the path representation of v, and false when v is omitted
func segment(v interface{}) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, t != ""
	case time.Time:
		return t.Format(DateLayout), !t.IsZero()
	case *time.Time:
		if t == nil || t.IsZero() {
			return "", false
		}
		return t.Format(DateLayout), true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10), rv.Uint() != 0
	}
	s := fmt.Sprint(v)
	return s, s != ""
}

// supplied reports whether v would be written to a request path
func supplied(v interface{}) bool {
	_, ok := segment(v)
	return ok
}
