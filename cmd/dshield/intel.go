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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/defenxor/dshield/internal/pkg/lookup"
	"github.com/defenxor/dshield/internal/pkg/server"
	"github.com/defenxor/dshield/internal/pkg/shared/idgen"
	"github.com/defenxor/dshield/internal/pkg/shared/pprof"
	"github.com/defenxor/dshield/internal/pkg/shared/str"
	"github.com/defenxor/dshield/pkg/intel"

	log "github.com/defenxor/dshield/internal/pkg/shared/logger"

	"github.com/remeh/sizedwaitgroup"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var intelCmd = &cobra.Command{
	Use:   "intel <ip[,ip...]>...",
	Short: "Check IP addresses against the configured intel sources",
	Long: `Check IP addresses against the intel sources configured in intel_*.json files.
Addresses may be given as separate arguments or as comma separated lists.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		it, err := loadIntel()
		if err != nil {
			exit("Cannot initialize threat intel", err)
		}
		defer it.Close()
		res := checkTerms(it, str.Terms(args), viper.GetInt("concurrency"))
		if err := renderIntel(os.Stdout, res); err != nil {
			exit("Cannot print result", err)
		}
	},
}

var serverCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the intel lookup server",
	Long: `
Start an HTTP server answering GET /ip/<address> with the combined results of
the configured intel sources, and GET /stats with lookup statistics.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := serve(viper.GetString("address"), viper.GetInt("port")); err != nil {
			exit("Cannot start server", err)
		}
	},
}

// serve runs the lookup server until interrupted and returns what stopped
// it, after the profiler and the intel sources are released
func serve(addr string, port int) error {
	if p := viper.GetString("pprof"); p != "" {
		prof, err := pprof.GetProfiler(p, "")
		if err != nil {
			return fmt.Errorf("cannot start profiler: %w", err)
		}
		defer prof.Stop()
	}
	it, err := loadIntel()
	if err != nil {
		return fmt.Errorf("cannot initialize threat intel: %w", err)
	}
	defer it.Close()

	log.Info(log.M{Msg: "Starting " + progName + " " + version})
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.New(it).Start(addr, port)
	}()
	return waitInterruptSignal(errCh)
}

func loadIntel() (*lookup.Intel, error) {
	it, err := lookup.Load(configDir(), viper.GetInt("cacheDuration"))
	if err != nil && it != nil {
		it.Close()
	}
	return it, err
}

// termResult is the outcome of looking up one term
type termResult struct {
	Term    string         `json:"term"`
	Found   bool           `json:"found"`
	Results []intel.Result `json:"results,omitempty"`
}

// checkTerms looks up terms with at most conc lookups in flight, keeping
// the input order in the output
func checkTerms(it *lookup.Intel, terms []string, conc int) []termResult {
	if conc < 1 {
		conc = 1
	}
	out := make([]termResult, len(terms))
	swg := sizedwaitgroup.New(conc)
	var mu sync.Mutex
	for i, t := range terms {
		swg.Add()
		go func(i int, t string) {
			defer swg.Done()
			rid, err := idgen.GenerateID()
			if err != nil {
				log.Warn(log.M{Msg: "Cannot generate request ID: " + err.Error(), Term: t})
			}
			found, res := it.CheckIP(context.Background(), t, rid, nil)
			mu.Lock()
			out[i] = termResult{Term: t, Found: found, Results: res}
			mu.Unlock()
		}(i, t)
	}
	swg.Wait()
	return out
}

// renderIntel writes one JSON document per term
func renderIntel(w io.Writer, res []termResult) error {
	if len(res) == 0 {
		return errors.New("no term to look up")
	}
	enc := json.NewEncoder(w)
	for _, r := range res {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("cannot encode result for %s: %w", r.Term, err)
		}
	}
	return nil
}
