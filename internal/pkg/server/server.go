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

// Package server exposes intel lookups over HTTP
package server

import (
	"context"
	"encoding/json"
	"errors"
	"expvar"
	"fmt"
	"net"
	"strconv"

	"github.com/defenxor/dshield/internal/pkg/lookup"
	"github.com/defenxor/dshield/internal/pkg/shared/apm"
	"github.com/defenxor/dshield/internal/pkg/shared/idgen"
	"github.com/defenxor/dshield/internal/pkg/shared/ip"
	log "github.com/defenxor/dshield/internal/pkg/shared/logger"

	"github.com/buaazp/fasthttprouter"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/expvarhandler"
	"github.com/valyala/fasthttp/pprofhandler"
	"github.com/valyala/fasthttp/reuseport"
)

// NotFoundMsg is the body returned when no source knows the address
const NotFoundMsg = "no intel found\n"

var lookupCounter = expvar.NewInt("intel_lookups")

// Server answers intel lookups from a lookup.Intel
type Server struct {
	intel *lookup.Intel
}

// New returns a Server backed by it
func New(it *lookup.Intel) *Server {
	return &Server{intel: it}
}

// Handler returns the request router
func (s *Server) Handler() fasthttp.RequestHandler {
	router := fasthttprouter.New()
	router.GET("/ip/:ip", s.handleIP)
	router.GET("/stats", s.handleStats)
	router.GET("/debug/vars/", expvarhandler.ExpvarHandler)
	router.GET("/debug/pprof/:name", pprofhandler.PprofHandler)
	router.GET("/debug/pprof/", pprofhandler.PprofHandler)
	return router.Handler
}

// Serve handles connections from ln until it is closed
func (s *Server) Serve(ln net.Listener) error {
	return fasthttp.Serve(ln, s.Handler())
}

// Start listens on addr:port and serves until the listener fails
func (s *Server) Start(addr string, port int) error {
	if a := net.ParseIP(addr); a == nil {
		return errors.New(addr + " is not a valid IP address")
	}
	if port < 1 || port > 65535 {
		return errors.New("Invalid TCP port number")
	}
	hostPort := net.JoinHostPort(addr, strconv.Itoa(port))
	network := "tcp4"
	if net.ParseIP(addr).To4() == nil {
		network = "tcp6"
	}
	ln, err := reuseport.Listen(network, hostPort)
	if err != nil {
		return err
	}
	log.Info(log.M{Msg: "Server listening on " + hostPort})
	return s.Serve(ln)
}

func (s *Server) handleIP(ctx *fasthttp.RequestCtx) {
	term := ctx.UserValue("ip").(string)
	clientAddr := ctx.RemoteAddr().String()

	if !ip.Valid(term) {
		log.Warn(log.M{Msg: "Invalid IP address requested by " + clientAddr, Term: term})
		fmt.Fprintf(ctx, "Not a valid IP address\n")
		ctx.SetStatusCode(fasthttp.StatusTeapot)
		return
	}

	rid, err := idgen.GenerateID()
	if err != nil {
		log.Warn(log.M{Msg: "Cannot generate request ID: " + err.Error(), Term: term})
	}
	ctx.Response.Header.Set("X-Request-ID", rid)
	log.Debug(log.M{Msg: "Intel request from " + clientAddr, Term: term, RId: rid})
	lookupCounter.Add(1)

	var parent *apm.TraceHeader
	if tp := ctx.Request.Header.Peek("Traceparent"); len(tp) > 0 {
		parent = &apm.TraceHeader{
			Traceparent: string(tp),
			TraceState:  string(ctx.Request.Header.Peek("Tracestate")),
		}
	}

	found, res := s.intel.CheckIP(context.Background(), term, rid, parent)
	if !found {
		fmt.Fprint(ctx, NotFoundMsg)
		return
	}
	writeJSON(ctx, res)
}

func (s *Server) handleStats(ctx *fasthttp.RequestCtx) {
	writeJSON(ctx, s.intel.Stats())
}

func writeJSON(ctx *fasthttp.RequestCtx, v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(ctx, "Error encoding result\n")
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetContentType("application/json")
	ctx.Write(b)
}
