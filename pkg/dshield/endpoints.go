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

import "context"

// Date and numeric parameters below accept time.Time, a preformatted string
// or an integer as appropriate; nil omits the parameter and every parameter
// after it.

// Backscatter returns possible backscatter data. The report only includes
// "syn ack" data and is summarized by source port. rows defaults to 1000 on
// the server.
func (c *Client) Backscatter(ctx context.Context, date, rows interface{}) (interface{}, error) {
	return c.Call(ctx, "backscatter", date, rows)
}

// Handler returns the name of the handler of the day
func (c *Client) Handler(ctx context.Context) (interface{}, error) {
	return c.Call(ctx, "handler")
}

// Infocon returns the current infocon level (green, yellow, orange, red)
func (c *Client) Infocon(ctx context.Context) (interface{}, error) {
	return c.Call(ctx, "infocon")
}

// IP returns a summary of what the database holds for address. In the
// result, count is the number of packets blocked from the address and
// attacks the number of unique destinations. A *Error of kind
// ErrBadIPAddress is returned when the API rejects the address.
func (c *Client) IP(ctx context.Context, address string) (interface{}, error) {
	return c.Call(ctx, "ip", address)
}

// Port returns summary information about a port: records, targets and
// sources per date.
func (c *Client) Port(ctx context.Context, number interface{}) (interface{}, error) {
	return c.Call(ctx, "port", number)
}

// PortDate returns information about a port at a date, today when date is
// nil.
func (c *Client) PortDate(ctx context.Context, number, date interface{}) (interface{}, error) {
	return c.Call(ctx, "portdate", number, date)
}

// TopPorts returns the ports with the most activity, sorted by records,
// targets or sources.
func (c *Client) TopPorts(ctx context.Context, sortBy, limit, date interface{}) (interface{}, error) {
	return c.Call(ctx, "topports", sortBy, limit, date)
}

// TopIPs returns the source addresses with the most activity, sorted by
// records or attacks.
func (c *Client) TopIPs(ctx context.Context, sortBy, limit, date interface{}) (interface{}, error) {
	return c.Call(ctx, "topips", sortBy, limit, date)
}

// Sources returns a summary of source addresses, sorted by ip, count,
// attacks, firstseen or lastseen.
func (c *Client) Sources(ctx context.Context, sortBy, limit, date interface{}) (interface{}, error) {
	return c.Call(ctx, "sources", sortBy, limit, date)
}

// PortHistory returns port activity between start and end. A nil start
// means 30 days before today.
func (c *Client) PortHistory(ctx context.Context, port, start, end interface{}) (interface{}, error) {
	return c.Call(ctx, "porthistory", port, start, end)
}

// ASNum returns the addresses reported from an autonomous system
func (c *Client) ASNum(ctx context.Context, number, rows interface{}) (interface{}, error) {
	return c.Call(ctx, "asnum", number, rows)
}

// DailySummary returns daily totals between start and end. start defaults to
// today.
func (c *Client) DailySummary(ctx context.Context, start, end interface{}) (interface{}, error) {
	return c.Call(ctx, "dailysummary", start, end)
}

// Daily404Summary returns the summary of 404 reports for date
func (c *Client) Daily404Summary(ctx context.Context, date interface{}) (interface{}, error) {
	return c.Call(ctx, "daily404summary", date)
}

// Daily404Detail returns detailed 404 reports for date
func (c *Client) Daily404Detail(ctx context.Context, date, limit interface{}) (interface{}, error) {
	return c.Call(ctx, "daily404detail", date, limit)
}

// Glossary returns the glossary entries matching term, all of them when term
// is empty.
func (c *Client) Glossary(ctx context.Context, term string) (interface{}, error) {
	return c.Call(ctx, "glossary", term)
}

// WebHoneypotSummary returns the web honeypot summary for date
func (c *Client) WebHoneypotSummary(ctx context.Context, date interface{}) (interface{}, error) {
	return c.Call(ctx, "webhoneypotsummary", date)
}

// WebHoneypotByType returns web honeypot reports by attack type for date
func (c *Client) WebHoneypotByType(ctx context.Context, date interface{}) (interface{}, error) {
	return c.Call(ctx, "webhoneypotbytype", date)
}
