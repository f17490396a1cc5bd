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

// Package dshield is a client for the ISC/DShield threat intelligence API.
//
// Every API function is described by an Endpoint and exposed as a Client
// method. Decoded results are passed through Normalize; a client obtained
// from WithFormat returns the response body verbatim instead.
package dshield

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// API origins
const (
	DefaultBaseURL = "https://isc.sans.edu/api/"
	LegacyBaseURL  = "https://dshield.org/api/"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "dshield-go/1.0"
)

// Config holds the client settings. The zero value is usable.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	// Transport is either TransportHTTP (default) or TransportFastHTTP,
	// ignored when Custom is set.
	Transport string
	// APM instruments the net/http transport with elastic APM
	APM    bool
	Custom Transport
	Logger *zap.Logger
}

// Client calls the API. It is immutable and safe for concurrent use.
type Client struct {
	baseURL   string
	format    Format
	transport Transport
	log       *zap.Logger
	now       func() time.Time
}

// New returns a Client built from cfg
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	base, err := normalizeBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	t := cfg.Custom
	if t == nil {
		switch cfg.Transport {
		case "", TransportHTTP:
			t = NewHTTPTransport(cfg.Timeout, cfg.UserAgent, cfg.APM)
		case TransportFastHTTP:
			t = NewFastHTTPTransport(cfg.Timeout, cfg.UserAgent)
		default:
			return nil, errors.New("unknown transport " + cfg.Transport + ", must be http or fasthttp")
		}
	}

	return &Client{
		baseURL:   base,
		transport: t,
		log:       cfg.Logger,
		now:       time.Now,
	}, nil
}

func normalizeBaseURL(s string) (string, error) {
	u, err := url.Parse(s)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("base URL must include scheme and host: %s", s)
	}
	u.RawQuery = ""
	u.Fragment = ""
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String(), nil
}

// WithFormat returns a copy of c that requests f. Clients with a raw format
// return the response body as a string.
func (c *Client) WithFormat(f Format) *Client {
	cp := *c
	cp.format = f
	return &cp
}

// Format returns the output format requested by c
func (c *Client) Format() Format {
	return c.format
}

// BaseURL returns the API origin used by c, always ending with a slash
func (c *Client) BaseURL() string {
	return c.baseURL
}

// URL returns the absolute request URL for path
func (c *Client) URL(path string) string {
	return c.baseURL + path + "?" + c.format.query()
}

// Call invokes the endpoint called name with its positional parameters, in
// the order of the endpoint's slots. See BuildURI for how omitted parameters
// are handled.
func (c *Client) Call(ctx context.Context, name string, args ...interface{}) (interface{}, error) {
	ep, ok := Endpoints[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEndpoint, name)
	}
	return c.call(ctx, ep, args...)
}

func (c *Client) call(ctx context.Context, ep Endpoint, args ...interface{}) (interface{}, error) {
	if len(args) > len(ep.Slots) {
		args = args[:len(ep.Slots)]
	}
	for i := 0; i < ep.Required; i++ {
		if i >= len(args) || !supplied(args[i]) {
			return nil, fmt.Errorf("%w: %s of %s", ErrMissingParam, ep.Slots[i].Name, ep.Name)
		}
	}
	filled := make([]interface{}, len(ep.Slots))
	copy(filled, args)
	for i, s := range ep.Slots {
		switch {
		case supplied(filled[i]):
		case s.DefaultToday:
			filled[i] = c.now()
		case s.DefaultDaysAgo > 0:
			filled[i] = c.now().AddDate(0, 0, -s.DefaultDaysAgo)
		}
	}

	var input interface{}
	if len(filled) > 0 {
		input = filled[0]
	}

	res, err := c.get(ctx, BuildURI(ep.Name, filled...))
	if err != nil || c.format.Raw() {
		return res, err
	}
	if err := checkPhrase(res, ep.Fault, input); err != nil {
		return nil, err
	}
	return res, nil
}

// get fetches path and returns the raw body or the normalized JSON value
func (c *Client) get(ctx context.Context, path string) (interface{}, error) {
	u := c.URL(path)
	start := time.Now()
	status, body, err := c.transport.Get(ctx, u)
	if err != nil {
		c.log.Debug("request failed", zap.String("url", u), zap.Error(err))
		return nil, err
	}
	c.log.Debug("request done", zap.String("url", u), zap.Int("status", status),
		zap.Int("bytes", len(body)), zap.Duration("took", time.Since(start)))

	if c.format.Raw() {
		return string(body), nil
	}
	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, err
	}
	return Normalize(v), nil
}
