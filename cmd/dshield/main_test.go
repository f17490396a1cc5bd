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

package main

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"reflect"
	"testing"
	"time"

	"github.com/defenxor/dshield/internal/pkg/lookup"
	"github.com/defenxor/dshield/internal/pkg/shared/apm"
	"github.com/defenxor/dshield/pkg/dshield"
	"github.com/defenxor/dshield/pkg/intel"

	"github.com/sebdah/goldie"
	"github.com/spf13/viper"
	"github.com/valyala/fasthttp"
	"go.elastic.co/apm/apmtest"
)

func TestRenderEndpoints(t *testing.T) {
	var b bytes.Buffer
	if err := renderEndpoints(&b); err != nil {
		t.Fatal(err)
	}
	goldie.Assert(t, "endpoints", b.Bytes())
}

func TestRenderResult(t *testing.T) {
	var b bytes.Buffer
	v := []interface{}{
		map[string]interface{}{"port": 23.0, "records": 104512.0, "targets": 88210.0, "sources": 3021.0},
		map[string]interface{}{"port": 22.0, "records": 98120.0, "targets": 40233.0, "sources": 1566.0},
	}
	if err := renderResult(&b, v); err != nil {
		t.Fatal(err)
	}
	goldie.Assert(t, "result", b.Bytes())

	for _, raw := range []string{"<infocon>green</infocon>", "<infocon>green</infocon>\n"} {
		b.Reset()
		if err := renderResult(&b, raw); err != nil {
			t.Fatal(err)
		}
		if b.String() != "<infocon>green</infocon>\n" {
			t.Errorf("unexpected raw rendering %q", b.String())
		}
	}
}

func TestParseArgs(t *testing.T) {
	day := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	type argTests struct {
		endpoint  string
		args      []string
		expected  []interface{}
		shouldErr bool
	}
	tbl := []argTests{
		{"topports", []string{"records", "10", "2024-03-02"}, []interface{}{"records", 10, day}, false},
		{"topports", []string{"records", "-", "2024-03-02"}, []interface{}{"records"}, false},
		{"ip", []string{"198.51.100.7"}, []interface{}{"198.51.100.7"}, false},
		{"handler", nil, []interface{}{}, false},
		{"handler", []string{"extra"}, nil, true},
		{"port", []string{"http"}, nil, true},
		{"porthistory", []string{"80", "03/02/2024"}, nil, true},
	}
	for _, tt := range tbl {
		actual, err := parseArgs(dshield.Endpoints[tt.endpoint], tt.args)
		if (err != nil) != tt.shouldErr {
			t.Errorf("%s %v: expected err %v, got %v", tt.endpoint, tt.args, tt.shouldErr, err)
			continue
		}
		if !tt.shouldErr && !reflect.DeepEqual(actual, tt.expected) {
			t.Errorf("%s %v: expected %v, got %v", tt.endpoint, tt.args, tt.expected, actual)
		}
	}
}

type fake struct{}

func (fake) Initialize([]byte) error { return nil }

func (fake) CheckIP(ctx context.Context, term string) (bool, []intel.Result, error) {
	if term == "198.51.100.7" {
		return true, []intel.Result{{Provider: "Fake", Term: term, Result: "reports: 152"}}, nil
	}
	return false, nil, nil
}

func TestCheckTerms(t *testing.T) {
	intel.Checkers.Register("Fake", func() intel.Checker { return fake{} })
	defer intel.Checkers.Unregister("Fake")

	it, err := lookup.New(0)
	if err != nil {
		t.Fatal(err)
	}
	defer it.Close()
	if err := it.AddSource(lookup.Source{Name: "fake", Plugin: "Fake"}); err != nil {
		t.Fatal(err)
	}

	res := checkTerms(it, []string{"198.51.100.7", "203.0.113.9", "not-an-ip"}, 2)
	var b bytes.Buffer
	if err := renderIntel(&b, res); err != nil {
		t.Fatal(err)
	}
	goldie.Assert(t, "intel", b.Bytes())

	if err := renderIntel(&b, nil); err == nil {
		t.Error("expected error for empty result set")
	}
}

func TestUserAgent(t *testing.T) {
	if userAgent() != "dshield/dev" {
		t.Errorf("unexpected user agent %s", userAgent())
	}
}

func TestCallTraced(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	go fasthttp.Serve(ln, func(ctx *fasthttp.RequestCtx) {
		if string(ctx.Path()) != "/api/infocon" {
			ctx.SetStatusCode(fasthttp.StatusNotFound)
			fmt.Fprint(ctx, "not found")
			return
		}
		fmt.Fprint(ctx, `{"status":"green"}`)
	})
	defer ln.Close()

	tracer := apmtest.NewRecordingTracer()
	defer tracer.Close()
	apm.SetTracer(tracer.Tracer)
	defer apm.SetTracer(nil)
	apm.Enable(true)
	defer apm.Enable(false)

	c, err := dshield.New(dshield.Config{BaseURL: "http://" + ln.Addr().String() + "/api/", Timeout: 5 * time.Second, APM: true})
	if err != nil {
		t.Fatal(err)
	}
	res, err := call(context.Background(), c, "infocon", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(res, map[string]interface{}{"status": "green"}) {
		t.Errorf("unexpected result %v", res)
	}
	if _, err := call(context.Background(), c, "glossary", []interface{}{"botnet"}); err == nil {
		t.Error("expected an error from a non-JSON body")
	}

	p := tracer.Payloads()
	if len(p.Transactions) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(p.Transactions))
	}
	if p.Transactions[0].Name != "get infocon" || p.Transactions[0].Result != "OK" {
		t.Errorf("unexpected transaction %s %s", p.Transactions[0].Name, p.Transactions[0].Result)
	}
	if p.Transactions[1].Result != "Error" || len(p.Errors) != 1 {
		t.Errorf("expected the failed call to be recorded, got %s and %d errors", p.Transactions[1].Result, len(p.Errors))
	}
	if len(p.Spans) != 2 || p.Spans[0].Type != "external" {
		t.Errorf("expected one external span per call, got %+v", p.Spans)
	}
}

func TestServeErrors(t *testing.T) {
	viper.Set("configDir", "../../configs")
	defer viper.Set("configDir", "")

	tbl := []struct {
		addr string
		port int
	}{
		{"127.0.0.1", 0},
		{"127.0.0.1", 70000},
		{"not-an-address", 8080},
	}
	for _, tt := range tbl {
		if err := serve(tt.addr, tt.port); err == nil {
			t.Errorf("%s:%d: expected serve to fail", tt.addr, tt.port)
		}
	}

	viper.Set("configDir", "fixtures")
	if err := serve("127.0.0.1", 8080); err == nil {
		t.Error("expected serve to fail without intel sources")
	}
}
