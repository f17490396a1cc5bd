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

package apm

import (
	"context"
	"sync"

	"go.elastic.co/apm"
	"go.elastic.co/apm/module/apmhttp"
)

var enabled bool
var tracer = apm.DefaultTracer
var mu = sync.RWMutex{}

// Enabled returns whether apm is enabled
func Enabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// Enable set apm status
func Enable(e bool) {
	mu.Lock()
	enabled = e
	mu.Unlock()
}

// SetTracer replaces the tracer used for new transactions. nil restores the
// default tracer.
func SetTracer(t *apm.Tracer) {
	mu.Lock()
	defer mu.Unlock()
	if t == nil {
		t = apm.DefaultTracer
	}
	tracer = t
}

func currentTracer() *apm.Tracer {
	mu.RLock()
	defer mu.RUnlock()
	return tracer
}

// Flush sends buffered events to the APM server
func Flush() {
	currentTracer().Flush(nil)
}

// TraceHeader holds W3C trace context headers received from or sent to a peer
type TraceHeader struct {
	Traceparent string
	TraceState  string
}

// Transaction wraps an elastic APM transaction and makes it safe for
// concurrent use by lookup goroutines
type Transaction struct {
	sync.Mutex
	Tx     *apm.Transaction
	tracer *apm.Tracer
	ended  bool
}

// StartTransaction starts a transaction, continuing parent's trace when given
func StartTransaction(name, transactionType string, parent *TraceHeader) *Transaction {
	opts := apm.TransactionOptions{}
	if parent != nil && parent.Traceparent != "" {
		if tc, err := apmhttp.ParseTraceparentHeader(parent.Traceparent); err == nil {
			tc.State, _ = apmhttp.ParseTracestateHeader(parent.TraceState)
			opts.TraceContext = tc
		}
	}
	t := currentTracer()
	return &Transaction{Tx: t.StartTransactionOptions(name, transactionType, opts), tracer: t}
}

// Recover reports a recovered panic against the transaction; defer it
func (t *Transaction) Recover() {
	v := recover()
	if v == nil {
		return
	}
	e := t.tracer.Recovered(v)
	e.SetTransaction(t.Tx)
	e.Send()
}

// SetLabel attaches a label to the transaction
func (t *Transaction) SetLabel(key string, value string) {
	t.Lock()
	defer t.Unlock()
	if t.ended {
		return
	}
	t.Tx.Context.SetLabel(key, value)
}

// Result set the result for the transaction
func (t *Transaction) Result(value string) {
	t.Lock()
	defer t.Unlock()
	if t.ended {
		return
	}
	t.Tx.Result = value
}

// SetError sends err linked to the transaction
func (t *Transaction) SetError(err error) {
	e := t.tracer.NewError(err)
	e.SetTransaction(t.Tx)
	e.Send()
}

// Span times one step inside the transaction, e.g. a single source lookup.
// The returned func ends the span.
func (t *Transaction) Span(name, spanType string) func() {
	t.Lock()
	defer t.Unlock()
	if t.ended {
		return func() {}
	}
	s := t.Tx.StartSpan(name, spanType, nil)
	return s.End
}

// StartSpan starts a span like Span and returns ctx carrying both the
// transaction and the span, so instrumented clients called with it record
// their requests as children of the span.
func (t *Transaction) StartSpan(ctx context.Context, name, spanType string) (context.Context, func()) {
	t.Lock()
	defer t.Unlock()
	if t.ended {
		return ctx, func() {}
	}
	s := t.Tx.StartSpan(name, spanType, nil)
	ctx = apm.ContextWithTransaction(ctx, t.Tx)
	return apm.ContextWithSpan(ctx, s), s.End
}

// Context returns ctx carrying the transaction
func (t *Transaction) Context(ctx context.Context) context.Context {
	return apm.ContextWithTransaction(ctx, t.Tx)
}

// End completes the transaction
func (t *Transaction) End() {
	t.Lock()
	defer t.Unlock()
	if t.ended {
		return
	}
	t.ended = true
	t.Tx.End()
}

// TraceContext returns headers that let a peer continue this trace
func (t *Transaction) TraceContext() *TraceHeader {
	t.Lock()
	defer t.Unlock()
	tc := t.Tx.TraceContext()
	return &TraceHeader{
		Traceparent: apmhttp.FormatTraceparentHeader(tc),
		TraceState:  tc.State.String(),
	}
}
