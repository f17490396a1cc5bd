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

package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"sync/atomic"
	"testing"

	"github.com/defenxor/dshield/internal/pkg/shared/apm"
	"github.com/defenxor/dshield/internal/pkg/shared/ip"
	"github.com/defenxor/dshield/internal/pkg/shared/test"
	"github.com/defenxor/dshield/pkg/intel"

	elasticapm "go.elastic.co/apm"
	"go.elastic.co/apm/apmtest"
	"go.elastic.co/apm/model"
	"golang.org/x/sync/errgroup"
)

type intelTests struct {
	ip            string
	expectedFound bool
	expectedRes   []intel.Result
}

var tblIntel = []intelTests{
	{"10.0.0.1", false, nil},
	{"not-an-ip", false, nil},
	{"10.0.0.2", true, []intel.Result{{Provider: "Dummy", Term: "10.0.0.2", Result: "Detected in DB"}}},
	{"10.0.0.2", true, []intel.Result{{Provider: "Dummy", Term: "10.0.0.2", Result: "Detected in DB"}}},
}

type dummy struct {
	Result string `json:"result"`
	calls  *int32
}

var dummyCalls int32

func (d *dummy) Initialize(b []byte) error {
	d.calls = &dummyCalls
	return json.Unmarshal(b, d)
}

func (d *dummy) CheckIP(ctx context.Context, term string) (bool, []intel.Result, error) {
	atomic.AddInt32(d.calls, 1)
	if !ip.Valid(term) {
		return false, nil, errors.New("invalid IP address")
	}
	if term == "10.0.0.2" {
		return true, []intel.Result{{Provider: "Dummy", Term: term, Result: d.Result}}, nil
	}
	return false, nil, nil
}

// traced records a child span of whatever span the lookup hands it, the
// way an instrumented HTTP client does
type traced struct {
	sawTx bool
}

func (tr *traced) Initialize(b []byte) error { return nil }

func (tr *traced) CheckIP(ctx context.Context, term string) (bool, []intel.Result, error) {
	tr.sawTx = elasticapm.TransactionFromContext(ctx) != nil
	span, _ := elasticapm.StartSpan(ctx, "GET isc.sans.edu", "external.http")
	span.End()
	return false, nil, nil
}

var tracedChecker = &traced{}

func init() {
	intel.Checkers.Register("Dummy", func() intel.Checker { return &dummy{} })
	intel.Checkers.Register("Traced", func() intel.Checker { return tracedChecker })
}

func TestIntel(t *testing.T) {
	if _, err := test.DirEnv(); err != nil {
		t.Fatal(err)
	}
	apm.Enable(true)
	defer apm.Enable(false)

	it, err := Load("fixtures", 0)
	if err != nil {
		t.Fatal("Cannot init intel: ", err)
	}
	defer it.Close()
	if !reflect.DeepEqual(it.Sources(), []string{"Dummy DB"}) {
		t.Fatalf("unexpected sources %v", it.Sources())
	}

	atomic.StoreInt32(&dummyCalls, 0)
	for _, tt := range tblIntel {
		found, res := it.CheckIP(context.Background(), tt.ip, "rid", nil)
		if found != tt.expectedFound {
			t.Errorf("Intel: %v, expected found %v, actual %v", tt.ip, tt.expectedFound, found)
		}
		if !reflect.DeepEqual(res, tt.expectedRes) {
			t.Errorf("Intel: %v, expected result %v, actual %v", tt.ip, tt.expectedRes, res)
		}
	}

	// 10.0.0.1 and 10.0.0.2 come from the cache the second time around;
	// not-an-ip is never cached because no source answered
	for _, tt := range tblIntel[:3] {
		it.CheckIP(context.Background(), tt.ip, "", nil)
	}
	if n := atomic.LoadInt32(&dummyCalls); n != 4 {
		t.Errorf("expected 4 source calls, got %d", n)
	}

	s := it.Stats()
	if s.Lookups != 7 {
		t.Errorf("expected 7 lookups, got %d", s.Lookups)
	}
	if s.CacheHits != 3 {
		t.Errorf("expected 3 cache hits, got %d", s.CacheHits)
	}
	if s.CacheEntries != 2 {
		t.Errorf("expected 2 cache entries, got %d", s.CacheEntries)
	}
	if s.LookupsPerMinute != 7 {
		t.Errorf("expected 7 lookups per minute, got %d", s.LookupsPerMinute)
	}
}

func TestConcurrentLookup(t *testing.T) {
	it, err := New(0)
	if err != nil {
		t.Fatal(err)
	}
	defer it.Close()
	if err := it.AddSource(Source{Plugin: "Dummy", Config: `{"result":"x"}`}); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(it.Sources(), []string{"Dummy"}) {
		t.Fatalf("expected plugin name as source name, got %v", it.Sources())
	}

	g := new(errgroup.Group)
	for i := 0; i < 100; i++ {
		g.Go(func() error {
			found, res := it.CheckIP(context.Background(), "10.0.0.2", "", nil)
			if !found || len(res) != 1 || res[0].Result != "x" {
				return errors.New("unexpected lookup result")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
	if it.Stats().Lookups != 100 {
		t.Errorf("expected 100 lookups, got %d", it.Stats().Lookups)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(t.TempDir(), 0); err != ErrNoSource {
		t.Errorf("expected ErrNoSource, got %v", err)
	}
	it, _ := New(0)
	defer it.Close()
	if err := it.AddSource(Source{Plugin: "Dummy", Config: "{"}); err == nil {
		t.Error("expected error from bad plugin config")
	}
	if err := it.AddSource(Source{Plugin: "Missing"}); err == nil {
		t.Error("expected error from unregistered plugin")
	}
}

func TestSourceSpans(t *testing.T) {
	tracer := apmtest.NewRecordingTracer()
	defer tracer.Close()
	apm.SetTracer(tracer.Tracer)
	defer apm.SetTracer(nil)
	apm.Enable(true)
	defer apm.Enable(false)

	it, err := New(0)
	if err != nil {
		t.Fatal(err)
	}
	defer it.Close()
	if err := it.AddSource(Source{Name: "Traced DB", Plugin: "Traced"}); err != nil {
		t.Fatal(err)
	}

	it.CheckIP(context.Background(), "10.0.0.3", "rid", nil)
	apm.Flush()

	if !tracedChecker.sawTx {
		t.Error("expected the source to receive the lookup transaction")
	}
	p := tracer.Payloads()
	if len(p.Transactions) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(p.Transactions))
	}
	var source, external *model.Span
	for i := range p.Spans {
		switch p.Spans[i].Name {
		case "Traced DB":
			source = &p.Spans[i]
		case "GET isc.sans.edu":
			external = &p.Spans[i]
		}
	}
	if source == nil || external == nil {
		t.Fatalf("expected source and external spans, got %+v", p.Spans)
	}
	if external.Type != "external" || external.Subtype != "http" {
		t.Errorf("unexpected external span type %s.%s", external.Type, external.Subtype)
	}
	if external.ParentID != source.ID {
		t.Error("expected the external span to be a child of the source span")
	}
}
