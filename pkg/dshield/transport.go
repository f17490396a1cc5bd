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
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/valyala/fasthttp"
	"go.elastic.co/apm/module/apmhttp"
)

// Transport performs a single GET request and returns the status code and
// body. It is the only network collaborator of Client.
type Transport interface {
	Get(ctx context.Context, url string) (status int, body []byte, err error)
}

// Transport names accepted in Config
const (
	TransportHTTP     = "http"
	TransportFastHTTP = "fasthttp"
)

// HTTPTransport is a Transport backed by net/http
type HTTPTransport struct {
	Client    *http.Client
	UserAgent string
}

// NewHTTPTransport returns an HTTPTransport with the given timeout. When
// traced is true the client is instrumented with elastic APM so requests are
// recorded as spans of the transaction found in the request context.
func NewHTTPTransport(timeout time.Duration, userAgent string, traced bool) *HTTPTransport {
	c := &http.Client{Timeout: timeout}
	if traced {
		c = apmhttp.WrapClient(c)
	}
	return &HTTPTransport{Client: c, UserAgent: userAgent}
}

// Get implements Transport
func (t *HTTPTransport) Get(ctx context.Context, url string) (status int, body []byte, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return
	}
	if t.UserAgent != "" {
		req.Header.Set("User-Agent", t.UserAgent)
	}
	res, err := t.Client.Do(req)
	if err != nil {
		return
	}
	defer res.Body.Close()
	body, err = io.ReadAll(res.Body)
	status = res.StatusCode
	return
}

// FastHTTPTransport is a Transport backed by fasthttp
type FastHTTPTransport struct {
	Client  *fasthttp.Client
	Timeout time.Duration
}

// NewFastHTTPTransport returns a FastHTTPTransport with the given timeout
func NewFastHTTPTransport(timeout time.Duration, userAgent string) *FastHTTPTransport {
	return &FastHTTPTransport{
		Client: &fasthttp.Client{
			Name:         userAgent,
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
		Timeout: timeout,
	}
}

// maxRedirects bounds the redirect chain followed by FastHTTPTransport
const maxRedirects = 5

// ErrTooManyRedirects is returned when a redirect chain exceeds maxRedirects
var ErrTooManyRedirects = errors.New("too many redirects")

// Get implements Transport. The request deadline is the earlier of the
// context deadline and the configured timeout, and covers every redirect hop.
func (t *FastHTTPTransport) Get(ctx context.Context, rawURL string) (status int, body []byte, err error) {
	if err = ctx.Err(); err != nil {
		return
	}
	deadline := time.Now().Add(t.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.Header.SetMethod(fasthttp.MethodGet)

	for hops := 0; ; hops++ {
		req.SetRequestURI(rawURL)
		if err = t.Client.DoDeadline(req, resp, deadline); err != nil {
			return
		}
		if !fasthttp.StatusCodeIsRedirect(resp.StatusCode()) {
			break
		}
		if hops == maxRedirects {
			return resp.StatusCode(), nil, ErrTooManyRedirects
		}
		if rawURL, err = redirectTarget(rawURL, string(resp.Header.Peek("Location"))); err != nil {
			return
		}
		resp.Reset()
	}
	// resp is released on return, its body must be copied
	body = append([]byte(nil), resp.Body()...)
	status = resp.StatusCode()
	return
}

// redirectTarget resolves a Location header against the URL that returned it
func redirectTarget(from, location string) (string, error) {
	if location == "" {
		return "", errors.New("redirect without Location header")
	}
	base, err := url.Parse(from)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(location)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}
