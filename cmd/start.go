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
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/grafink/grafink/httpd"
	"github.com/grafink/grafink/pipeline"
	"github.com/grafink/grafink/runner"
)

var once bool

// startServerCmd represents the start-server command
var startServerCmd = &cobra.Command{
	Use:   "start-server",
	Short: "Start the HTTP API for devices that poll",
	Long: `Start the HTTP API. A TRMNL private plugin in polling mode fetches
GET /api/data, or POSTs a JSON body overriding the configured dashboard,
panel and time range per request.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := pipeline.New(conf)
		if err != nil {
			return err
		}

		s, err := httpd.New(conf, p)
		if err != nil {
			return err
		}
		if err := s.Start(); err != nil {
			return err
		}

		terminate := make(chan os.Signal, 1)
		signal.Notify(terminate, syscall.SIGINT, syscall.SIGTERM)
		<-terminate

		return s.Close()
	},
}

// startPusherCmd represents the start-pusher command
var startPusherCmd = &cobra.Command{
	Use:   "start-pusher",
	Short: "Start the webhook push loop",
	Long: `Render the configured panel on an interval and push the result to the
TRMNL webhook. Failures are delivered as an error card so the display never
silently goes stale.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := runner.New(conf)
		if err != nil {
			return err
		}

		if once {
			return r.RunOnce()
		}

		terminate := make(chan os.Signal, 1)
		signal.Notify(terminate, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-terminate
			r.Stop()
		}()

		return r.StartPusher()
	},
}

func init() {
	rootCmd.AddCommand(startServerCmd)
	rootCmd.AddCommand(startPusherCmd)

	startPusherCmd.PersistentFlags().BoolVarP(&once, "once", "o", false, "push one update and exit")
}
