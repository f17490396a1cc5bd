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
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/defenxor/dshield/internal/pkg/shared/apm"
	"github.com/defenxor/dshield/pkg/dshield"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var getCmd = &cobra.Command{
	Use:   "get <endpoint> [params...]",
	Short: "Call an API endpoint",
	Long: `Call an API endpoint with positional parameters, in the order listed by the
endpoints command. Dates use the YYYY-MM-DD format. A parameter given as "-"
is omitted, and so is every parameter after it.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ep, ok := dshield.Endpoints[args[0]]
		if !ok {
			exit("Cannot call endpoint", fmt.Errorf("%w: %s", dshield.ErrUnknownEndpoint, args[0]))
		}
		params, err := parseArgs(ep, args[1:])
		if err != nil {
			exit("Invalid parameter", err)
		}
		f, err := dshield.ParseFormat(viper.GetString("format"))
		if err != nil {
			exit("Invalid format", err)
		}
		c, err := newClient()
		if err != nil {
			exit("Cannot create client", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), viper.GetDuration("timeout"))
		defer cancel()
		res, err := call(ctx, c.WithFormat(f), ep.Name, params)
		if err != nil {
			exit("Error returned from API", err)
		}
		if err := renderResult(os.Stdout, res); err != nil {
			exit("Cannot print result", err)
		}
	},
}

// call runs one endpoint call, inside an APM transaction when enabled so the
// traced transport records the request
func call(ctx context.Context, c *dshield.Client, name string, params []interface{}) (interface{}, error) {
	if !apm.Enabled() {
		return c.Call(ctx, name, params...)
	}
	tx := apm.StartTransaction("get "+name, "cli", nil)
	defer apm.Flush()
	defer tx.End()
	res, err := c.Call(tx.Context(ctx), name, params...)
	if err != nil {
		tx.SetError(err)
		tx.Result("Error")
		return nil, err
	}
	tx.Result("OK")
	return res, nil
}

var endpointsCmd = &cobra.Command{
	Use:   "endpoints",
	Short: "List the API endpoints and their parameters",
	Long:  `List the API endpoints and their parameters. Required parameters are marked with *.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := renderEndpoints(os.Stdout); err != nil {
			exit("Cannot print endpoints", err)
		}
	},
}

// parseArgs converts command line parameters to the types of ep's slots
func parseArgs(ep dshield.Endpoint, args []string) ([]interface{}, error) {
	if len(args) > len(ep.Slots) {
		return nil, fmt.Errorf("%s takes at most %d parameters", ep.Name, len(ep.Slots))
	}
	out := make([]interface{}, 0, len(args))
	for i, a := range args {
		if a == "-" || a == "" {
			break
		}
		s := ep.Slots[i]
		switch s.Kind {
		case dshield.Date:
			t, err := time.Parse(dshield.DateLayout, a)
			if err != nil {
				return nil, fmt.Errorf("%s must be a YYYY-MM-DD date: %s", s.Name, a)
			}
			out = append(out, t)
		case dshield.Int:
			n, err := strconv.Atoi(a)
			if err != nil {
				return nil, fmt.Errorf("%s must be a number: %s", s.Name, a)
			}
			out = append(out, n)
		default:
			out = append(out, a)
		}
	}
	return out, nil
}

// renderResult prints raw bodies as they are and decoded values as indented JSON
func renderResult(w io.Writer, v interface{}) error {
	if s, ok := v.(string); ok {
		if !strings.HasSuffix(s, "\n") {
			s += "\n"
		}
		_, err := io.WriteString(w, s)
		return err
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(append(b, '\n'))
	return err
}

func slotUsage(ep dshield.Endpoint) string {
	var parts []string
	for i, s := range ep.Slots {
		p := s.Name
		if len(s.Values) > 0 {
			p += "(" + strings.Join(s.Values, "|") + ")"
		} else if s.Kind != dshield.String && s.Kind.String() != s.Name {
			p += ":" + s.Kind.String()
		}
		if s.DefaultToday {
			p += "=today"
		}
		if i < ep.Required {
			p += "*"
		}
		parts = append(parts, p)
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}

func renderEndpoints(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ENDPOINT\tPARAMETERS\tDESCRIPTION")
	for _, name := range dshield.EndpointNames() {
		ep := dshield.Endpoints[name]
		fmt.Fprintf(tw, "%s\t%s\t%s\n", ep.Name, slotUsage(ep), ep.Doc)
	}
	return tw.Flush()
}
