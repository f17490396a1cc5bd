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

package ip

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/yl2chen/cidranger"
)

var privateCIDRs = []string{
	"127.0.0.0/8",    // IPv4 loopback
	"10.0.0.0/8",     // RFC1918
	"172.16.0.0/12",  // RFC1918
	"192.168.0.0/16", // RFC1918
	"169.254.0.0/16", // RFC3927 link-local
	"::1/128",        // IPv6 loopback
	"fe80::/10",      // IPv6 link-local
	"fc00::/7",       // IPv6 unique local addr
}

var private *Set

func init() {
	var err error
	if private, err = NewSet(privateCIDRs); err != nil {
		panic(err)
	}
}

// ErrInvalidIP is returned for strings that are not an IP address
var ErrInvalidIP = errors.New("invalid IP address")

// Set is a collection of networks that IP addresses can be matched against
type Set struct {
	ranger cidranger.Ranger
	cidrs  []string
}

// NewSet parses cidrs into a Set. Entries without a prefix length are
// treated as single hosts.
func NewSet(cidrs []string) (*Set, error) {
	s := &Set{ranger: cidranger.NewPCTrieRanger()}
	for _, c := range cidrs {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if !strings.Contains(c, "/") {
			if strings.Contains(c, ":") {
				c += "/128"
			} else {
				c += "/32"
			}
		}
		_, n, err := net.ParseCIDR(c)
		if err != nil {
			return nil, fmt.Errorf("cannot parse %s: %w", c, err)
		}
		if err := s.ranger.Insert(cidranger.NewBasicRangerEntry(*n)); err != nil {
			return nil, fmt.Errorf("cannot insert %s: %w", c, err)
		}
		s.cidrs = append(s.cidrs, c)
	}
	return s, nil
}

// Contains reports whether ip falls in any network of the set
func (s *Set) Contains(ip string) (bool, error) {
	ipn := net.ParseIP(ip)
	if ipn == nil {
		return false, ErrInvalidIP
	}
	if s == nil {
		return false, nil
	}
	return s.ranger.Contains(ipn)
}

// Len returns the number of networks in the set
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.cidrs)
}

// IsPrivateIP check if IP is in private range
func IsPrivateIP(ip string) (bool, error) {
	return private.Contains(ip)
}

// Valid reports whether s parses as an IPv4 or IPv6 address
func Valid(s string) bool {
	return net.ParseIP(s) != nil
}
