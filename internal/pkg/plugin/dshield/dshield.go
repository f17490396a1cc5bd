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

// Package dshield is an intel plugin that reports what the ISC/DShield
// database holds for an IP address
package dshield

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/defenxor/dshield/internal/pkg/shared/apm"
	"github.com/defenxor/dshield/internal/pkg/shared/ip"
	log "github.com/defenxor/dshield/internal/pkg/shared/logger"
	api "github.com/defenxor/dshield/pkg/dshield"
	"github.com/defenxor/dshield/pkg/intel"
)

// Provider is the name reported in results and used to register the plugin
const Provider = "DShield"

func init() {
	intel.Checkers.Register(Provider, func() intel.Checker { return &DShield{} })
}

// Config is the JSON document held in an intel source's config field
type Config struct {
	URL       string   `json:"url"`
	Timeout   string   `json:"timeout"`
	Transport string   `json:"transport"`
	SkipCIDRs []string `json:"skip_cidrs"`
	// MinCount is the number of reports needed before an address counts
	// as found, 1 when unset
	MinCount int `json:"min_count"`
}

// DShield is an intel plugin
type DShield struct {
	Cfg    Config
	client *api.Client
	skip   *ip.Set
}

// Initialize implement iface
func (d *DShield) Initialize(b []byte) error {
	if len(b) > 0 {
		if err := json.Unmarshal(b, &d.Cfg); err != nil {
			return err
		}
	}
	var timeout time.Duration
	if d.Cfg.Timeout != "" {
		t, err := time.ParseDuration(d.Cfg.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout: %w", err)
		}
		timeout = t
	}
	if d.Cfg.MinCount <= 0 {
		d.Cfg.MinCount = 1
	}
	skip, err := ip.NewSet(d.Cfg.SkipCIDRs)
	if err != nil {
		return err
	}
	c, err := api.New(api.Config{
		BaseURL:   d.Cfg.URL,
		Timeout:   timeout,
		Transport: d.Cfg.Transport,
		APM:       apm.Enabled(),
		Logger:    log.Logger(),
	})
	if err != nil {
		return err
	}
	d.client, d.skip = c, skip
	return nil
}

// CheckIP implement iface. Private and skipped addresses are never sent
// upstream.
func (d *DShield) CheckIP(ctx context.Context, addr string) (found bool, results []intel.Result, err error) {
	if d.client == nil {
		return false, nil, errors.New("plugin is not initialized")
	}
	if priv, err := ip.IsPrivateIP(addr); err != nil || priv {
		return false, nil, err
	}
	if skip, _ := d.skip.Contains(addr); skip {
		return false, nil, nil
	}

	res, err := d.client.IP(ctx, addr)
	if err != nil {
		return false, nil, err
	}
	s, ok := parseSummary(res)
	if !ok || (s.count < d.Cfg.MinCount && len(s.feeds) == 0) {
		return false, nil, nil
	}
	return true, []intel.Result{{Provider: Provider, Term: addr, Result: s.String()}}, nil
}

type summary struct {
	count, attacks    int
	first, last       string
	asName, asCountry string
	feeds             []string
}

// parseSummary reads the "ip" object of an ip endpoint response. Counters
// come back as numbers, numeric strings or null depending on the record.
func parseSummary(v interface{}) (s summary, ok bool) {
	top, ok := v.(map[string]interface{})
	if !ok {
		return
	}
	m, ok := top["ip"].(map[string]interface{})
	if !ok {
		return
	}
	s.count = toInt(m["count"])
	s.attacks = toInt(m["attacks"])
	s.first = toString(m["mindate"])
	s.last = toString(m["maxdate"])
	s.asName = toString(m["asname"])
	s.asCountry = toString(m["ascountry"])
	if feeds, isMap := m["threatfeeds"].(map[string]interface{}); isMap {
		for k := range feeds {
			s.feeds = append(s.feeds, k)
		}
		sort.Strings(s.feeds)
	}
	return s, true
}

func (s summary) String() string {
	parts := []string{fmt.Sprintf("reports: %d", s.count), fmt.Sprintf("targets: %d", s.attacks)}
	if s.first != "" {
		parts = append(parts, "first seen: "+s.first)
	}
	if s.last != "" {
		parts = append(parts, "last seen: "+s.last)
	}
	if len(s.feeds) > 0 {
		parts = append(parts, "threatfeeds: "+strings.Join(s.feeds, " "))
	}
	if s.asName != "" {
		as := "AS: " + s.asName
		if s.asCountry != "" {
			as += " (" + s.asCountry + ")"
		}
		parts = append(parts, as)
	}
	return strings.Join(parts, ", ")
}

func toInt(v interface{}) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case string:
		i, _ := strconv.Atoi(strings.TrimSpace(n))
		return i
	}
	return 0
}

func toString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}
