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
	"errors"
	"testing"
)

func TestAPM(t *testing.T) {
	Enable(true)
	if !Enabled() {
		t.Errorf("APM expected to be enabled")
	}
	defer Enable(false)

	tx := StartTransaction("lookup", "intel", nil)
	if tx.Tx == nil {
		t.Fatal("Expected transaction not to be nil")
	}
	if tx.Tx.Name != "lookup" {
		t.Fatal("Expected tx.Name to be lookup")
	}
	if tx.Tx.Type != "intel" {
		t.Fatal("Expected tx.Type to be intel")
	}

	tx.Result("found")
	if tx.Tx.Result != "found" {
		t.Error("Expected result to be 'found'")
	}

	th := tx.TraceContext()
	if th.Traceparent == "" {
		t.Fatal("Expected a traceparent header")
	}
	tx2 := StartTransaction("child", "intel", th)
	if tx2.Tx.TraceContext().Trace != tx.Tx.TraceContext().Trace {
		t.Error("Expected child transaction to continue the parent trace")
	}
	tx2.End()

	bad := StartTransaction("bad", "intel", &TraceHeader{Traceparent: "garbage"})
	bad.End()

	end := tx.Span("DShield", "source")
	end()
	tx.SetLabel("term", "1.2.3.4")
	tx.SetError(errors.New("Test error"))
	tx.Recover()
	tx.End()

	// no-ops after end
	tx.SetLabel("term", "1.2.3.4")
	tx.Result("Try to change result after end")
	tx.Span("late", "source")()
	tx.End()
	if !tx.ended {
		t.Error("expected transaction to be marked ended")
	}

	defer tx.Recover()
	trick := false
	if !trick {
		panic("panic")
	}
	t.Error("expected to recover from panic and never reach this point")
}
