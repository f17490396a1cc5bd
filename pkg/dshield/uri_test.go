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
	"testing"
	"time"
)

type stringer struct{ s string }

func (s stringer) String() string { return s.s }

type portNumber uint16

func TestBuildURI(t *testing.T) {
	d1 := time.Date(2011, 7, 20, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2011, 7, 23, 13, 45, 0, 0, time.UTC)
	var nilTime *time.Time

	type uriTests struct {
		endpoint string
		segments []interface{}
		expected string
	}
	var tbl = []uriTests{
		{"port", []interface{}{80}, "port/80"},
		{"port", nil, "port"},
		{"port", []interface{}{"80"}, "port/80"},
		{"porthistory", []interface{}{80, d1, d2}, "porthistory/80/2011-07-20/2011-07-23"},
		{"porthistory", []interface{}{80, nil, d2}, "porthistory/80"},
		{"porthistory", []interface{}{80, "2011-07-20", &d2}, "porthistory/80/2011-07-20/2011-07-23"},
		{"porthistory", []interface{}{80, nilTime, d2}, "porthistory/80"},
		{"porthistory", []interface{}{80, time.Time{}, d2}, "porthistory/80"},
		{"backscatter", []interface{}{"", 10}, "backscatter"},
		{"backscatter", []interface{}{"2011-12-01", 0}, "backscatter/2011-12-01"},
		{"asnum", []interface{}{int64(10), uint16(4837)}, "asnum/10/4837"},
		{"topports", []interface{}{"records", 10, d1}, "topports/records/10/2011-07-20"},
		{"asnum", []interface{}{int8(10), uint8(0)}, "asnum/10"},
		{"asnum", []interface{}{int16(0), 10}, "asnum"},
		{"asnum", []interface{}{uint8(200), int16(300)}, "asnum/200/300"},
		{"port", []interface{}{portNumber(0)}, "port"},
		{"port", []interface{}{portNumber(443)}, "port/443"},
		{"glossary", []interface{}{stringer{"botnet"}}, "glossary/botnet"},
		{"glossary", []interface{}{stringer{""}}, "glossary"},
	}

	for _, tt := range tbl {
		actual := BuildURI(tt.endpoint, tt.segments...)
		if actual != tt.expected {
			t.Errorf("BuildURI(%s, %v): expected %s, actual %s", tt.endpoint, tt.segments, tt.expected, actual)
		}
	}
}

func TestFormat(t *testing.T) {
	if Decoded.Raw() || !JSON.Raw() || !XML.Raw() {
		t.Fatal("unexpected Raw() result")
	}
	if Decoded.query() != "json" || PHP.query() != "php" {
		t.Fatal("unexpected query string")
	}
	for _, s := range []string{"", "json", "xml", "text", "php"} {
		f, err := ParseFormat(s)
		if err != nil || string(f) != s {
			t.Errorf("ParseFormat(%s): got %v, %v", s, f, err)
		}
	}
	if _, err := ParseFormat("yaml"); err == nil {
		t.Error("expected error for unsupported format")
	}
}
