/*
Copyright © 2021 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/grafink/grafink/config"
)

var cfgFile string
var logLevel string

var conf *config.C

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "grafink",
	Short: "Render Grafana panels for TRMNL e-ink displays",
	Long: `grafink reads one Grafana dashboard panel, queries its datasource and
flattens the result into the merge variables a TRMNL device renders.

Two strategies are supported: start-server exposes an HTTP API the device
polls, start-pusher delivers updates to the device webhook on an interval.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		conf, err = config.New(cfgFile, logLevel)
		return err
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default searches $HOME, ., /etc/grafink for grafink.yaml)")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "log level: debug, info, warn, error")
}
