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
	"fmt"
	"os"
	"os/signal"
	"path"
	"time"

	log "github.com/defenxor/dshield/internal/pkg/shared/logger"

	"github.com/defenxor/dshield/internal/pkg/shared/apm"
	"github.com/defenxor/dshield/internal/pkg/shared/fs"
	"github.com/defenxor/dshield/pkg/dshield"

	_ "github.com/defenxor/dshield/internal/pkg/plugin/dshield"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const progName = "dshield"

var version string
var buildTime string

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(endpointsCmd)
	rootCmd.AddCommand(intelCmd)
	rootCmd.AddCommand(serverCmd)
	rootCmd.PersistentFlags().Bool("dev", false, "Enable development environment specific setting")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug messages for tracing and troubleshooting")
	rootCmd.PersistentFlags().StringP("url", "u", dshield.DefaultBaseURL, "Base URL of the API, "+dshield.LegacyBaseURL+" for the legacy origin")
	rootCmd.PersistentFlags().DurationP("timeout", "t", 30*time.Second, "Timeout for a single API request")
	rootCmd.PersistentFlags().String("transport", dshield.TransportHTTP, "HTTP client implementation, http or fasthttp")
	rootCmd.PersistentFlags().Bool("apm", false, "Enable elastic APM instrumentation")
	rootCmd.PersistentFlags().String("configDir", "", "Directory holding intel_*.json source files, defaults to <program dir>/configs")
	rootCmd.PersistentFlags().IntP("cacheDuration", "c", 10, "Cache expiration time in minutes for intel query results")
	getCmd.Flags().StringP("format", "f", "", "Return the raw response in json, xml, text or php format instead of decoded JSON")
	intelCmd.Flags().IntP("concurrency", "n", 4, "Number of lookups to run at the same time")
	serverCmd.Flags().StringP("address", "a", "0.0.0.0", "IP address for the HTTP server to listen on")
	serverCmd.Flags().IntP("port", "p", 8080, "TCP port for the HTTP server to listen on")
	serverCmd.Flags().String("pprof", "", "Write a cpu, memory, mutex or block profile to the working directory until shutdown")
	viper.BindPFlag("dev", rootCmd.PersistentFlags().Lookup("dev"))
	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("url", rootCmd.PersistentFlags().Lookup("url"))
	viper.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout"))
	viper.BindPFlag("transport", rootCmd.PersistentFlags().Lookup("transport"))
	viper.BindPFlag("apm", rootCmd.PersistentFlags().Lookup("apm"))
	viper.BindPFlag("configDir", rootCmd.PersistentFlags().Lookup("configDir"))
	viper.BindPFlag("cacheDuration", rootCmd.PersistentFlags().Lookup("cacheDuration"))
	viper.BindPFlag("format", getCmd.Flags().Lookup("format"))
	viper.BindPFlag("concurrency", intelCmd.Flags().Lookup("concurrency"))
	viper.BindPFlag("address", serverCmd.Flags().Lookup("address"))
	viper.BindPFlag("port", serverCmd.Flags().Lookup("port"))
	viper.BindPFlag("pprof", serverCmd.Flags().Lookup("pprof"))
}

func initConfig() {
	viper.SetEnvPrefix(progName)
	viper.AutomaticEnv()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		exit("Error returned from command", err)
	}
}

func exit(msg string, err error) {
	fmt.Fprintln(os.Stderr, msg+":", err)
	os.Exit(1)
}

var rootCmd = &cobra.Command{
	Use:   progName,
	Short: "Client for the ISC/DShield threat intelligence API",
	Long: `
dshield queries the SANS Internet Storm Center (DShield) API.

Use get to call any API endpoint, intel to check IP addresses against the
configured intel sources, and serve to expose those lookups over HTTP.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := log.Setup(viper.GetBool("debug")); err != nil {
			exit("Cannot setup logger", err)
		}
		apm.Enable(viper.GetBool("apm"))
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and build information",
	Long:  `Print the version and build information`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version, buildTime)
	},
}

// newClient builds an API client from the global flags
func newClient() (*dshield.Client, error) {
	return dshield.New(dshield.Config{
		BaseURL:   viper.GetString("url"),
		Timeout:   viper.GetDuration("timeout"),
		Transport: viper.GetString("transport"),
		APM:       apm.Enabled(),
		Logger:    log.Logger(),
		UserAgent: userAgent(),
	})
}

func userAgent() string {
	if version == "" {
		return progName + "/dev"
	}
	return progName + "/" + version
}

func configDir() string {
	if d := viper.GetString("configDir"); d != "" {
		return d
	}
	d, err := fs.GetDir(viper.GetBool("dev"))
	if err != nil {
		exit("Cannot get current directory??", err)
	}
	return path.Join(d, "configs")
}

func waitInterruptSignal(errCh <-chan error) error {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)
	defer signal.Stop(ch)
	select {
	case <-ch:
		return nil
	case err := <-errCh:
		return err
	}
}
