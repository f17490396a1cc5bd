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

import "sort"

// Kind is the type of a path parameter
type Kind int

// Parameter kinds
const (
	String Kind = iota
	Date
	Int
	Enum
)

func (k Kind) String() string {
	switch k {
	case Date:
		return "date"
	case Int:
		return "int"
	case Enum:
		return "enum"
	}
	return "string"
}

// Slot describes one positional path parameter of an endpoint
type Slot struct {
	Name string
	Kind Kind
	// Values lists the accepted values of an Enum slot. They are not
	// enforced; the API decides.
	Values []string
	// DefaultToday fills the slot with the current date when omitted
	DefaultToday bool
	// DefaultDaysAgo fills the slot with the date that many days before
	// the current date when omitted. Zero disables it.
	DefaultDaysAgo int
}

// Endpoint describes a remote API function and its path grammar. Slots are
// strictly nested: slot N is only sent when slots 1..N-1 are.
type Endpoint struct {
	Name     string
	Slots    []Slot
	Required int
	// Fault is the kind of *Error reported when its text shows up in a
	// decoded response, nil when the endpoint is not checked.
	Fault error
	Doc   string
}

var (
	dateSlot  = Slot{Name: "date", Kind: Date}
	rowsSlot  = Slot{Name: "rows", Kind: Int}
	limitSlot = Slot{Name: "limit", Kind: Int}
	portSlot  = Slot{Name: "port", Kind: Int}
)

// Endpoints holds the descriptors of every supported API function, keyed by
// name.
var Endpoints = map[string]Endpoint{
	"backscatter": {
		Name:  "backscatter",
		Slots: []Slot{dateSlot, rowsSlot},
		Doc:   `Possible backscatter data ("syn ack" only), summarized by source port`,
	},
	"handler": {
		Name: "handler",
		Doc:  "Name of the handler on duty",
	},
	"infocon": {
		Name: "infocon",
		Doc:  "Current infocon level (green, yellow, orange, red)",
	},
	"ip": {
		Name:     "ip",
		Slots:    []Slot{{Name: "address", Kind: String}},
		Required: 1,
		Fault:    ErrBadIPAddress,
		Doc:      "Summary of the information held for an IP address",
	},
	"port": {
		Name:     "port",
		Slots:    []Slot{portSlot},
		Required: 1,
		Fault:    ErrBadPortNumber,
		Doc:      "Summary information about a port",
	},
	"portdate": {
		Name:     "portdate",
		Slots:    []Slot{portSlot, dateSlot},
		Required: 1,
		Fault:    ErrBadPortNumber,
		Doc:      "Information about a port at a date, today when omitted",
	},
	"topports": {
		Name: "topports",
		Slots: []Slot{
			{Name: "sort_by", Kind: Enum, Values: []string{"records", "targets", "sources"}},
			limitSlot, dateSlot,
		},
		Doc: "Ports with the most activity",
	},
	"topips": {
		Name: "topips",
		Slots: []Slot{
			{Name: "sort_by", Kind: Enum, Values: []string{"records", "attacks"}},
			limitSlot, dateSlot,
		},
		Doc: "Source addresses with the most activity",
	},
	"sources": {
		Name: "sources",
		Slots: []Slot{
			{Name: "sort_by", Kind: Enum, Values: []string{"ip", "count", "attacks", "firstseen", "lastseen"}},
			limitSlot, dateSlot,
		},
		Doc: "Summary of source addresses",
	},
	"porthistory": {
		Name:     "porthistory",
		Slots:    []Slot{portSlot, {Name: "start_date", Kind: Date, DefaultDaysAgo: 30}, {Name: "end_date", Kind: Date}},
		Required: 1,
		Fault:    ErrBadPortNumber,
		Doc:      "Port activity over a date range",
	},
	"asnum": {
		Name:     "asnum",
		Slots:    []Slot{{Name: "number", Kind: Int}, rowsSlot},
		Required: 1,
		Doc:      "Addresses reported from an autonomous system",
	},
	"dailysummary": {
		Name:  "dailysummary",
		Slots: []Slot{{Name: "start_date", Kind: Date, DefaultToday: true}, {Name: "end_date", Kind: Date}},
		Doc:   "Daily totals of records, targets and sources",
	},
	"daily404summary": {
		Name:     "daily404summary",
		Slots:    []Slot{dateSlot},
		Required: 1,
		Doc:      "Summary of 404 reports for a date",
	},
	"daily404detail": {
		Name:     "daily404detail",
		Slots:    []Slot{dateSlot, limitSlot},
		Required: 1,
		Doc:      "Detailed 404 reports for a date",
	},
	"glossary": {
		Name:  "glossary",
		Slots: []Slot{{Name: "term", Kind: String}},
		Doc:   "Glossary entries, all of them when no term is given",
	},
	"webhoneypotsummary": {
		Name:     "webhoneypotsummary",
		Slots:    []Slot{dateSlot},
		Required: 1,
		Doc:      "Web honeypot summary for a date",
	},
	"webhoneypotbytype": {
		Name:     "webhoneypotbytype",
		Slots:    []Slot{dateSlot},
		Required: 1,
		Doc:      "Web honeypot reports by attack type for a date",
	},
}

// EndpointNames returns the sorted names of all endpoints
func EndpointNames() []string {
	names := make([]string, 0, len(Endpoints))
	for k := range Endpoints {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
