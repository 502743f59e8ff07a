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
	"fmt"
	"io/ioutil"
	"os"

	"github.com/juju/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/grafink/grafink/config"
)

var outFile string

// starterConfig mirrors the viper key set so the generated file loads as is.
type starterConfig struct {
	GrafanaURL   string `yaml:"grafana_url"`
	APIKey       string `yaml:"grafana_api_key"`
	DashboardUID string `yaml:"dashboard_uid"`
	PanelID      int    `yaml:"panel_id"`
	TimeFrom     string `yaml:"time_from"`
	TimeTo       string `yaml:"time_to"`
	Timezone     string `yaml:"timezone"`
	Label        string `yaml:"label"`
	Variables    string `yaml:"variables"`
	WebhookURL   string `yaml:"trmnl_webhook_url"`
	Interval     int    `yaml:"interval"`
	RateLimit    int    `yaml:"rate_limit"`
	MaxPoints    int    `yaml:"max_points"`
	QueryTimeout int    `yaml:"query_timeout"`
	HTTPBind     string `yaml:"http_bind"`
}

// initConfigCmd represents the init-config command
var initConfigCmd = &cobra.Command{
	Use:   "init-config",
	Short: "Write a starter configuration file",
	Long: `Write a starter grafink.yaml with every supported key filled in with
its default or a placeholder. The same keys can be set from the environment
instead (GRAFANA_URL, DASHBOARD_UID, ...).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeStarterConfig(outFile)
	},
}

func writeStarterConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return errors.Errorf("%s already exists, not overwriting", path)
	}

	starter := starterConfig{
		GrafanaURL:   "https://grafana.example.com",
		APIKey:       "glsa_xxxxxxxxxxxx",
		DashboardUID: "abc123",
		PanelID:      1,
		TimeFrom:     config.DefaultTimeFrom,
		TimeTo:       config.DefaultTimeTo,
		Timezone:     config.DefaultTimezone,
		Label:        config.DefaultLabel,
		Variables:    `{"env": "prod"}`,
		WebhookURL:   "https://usetrmnl.com/api/custom_plugins/your-plugin-id",
		Interval:     config.DefaultInterval,
		RateLimit:    0,
		MaxPoints:    config.DefaultMaxPoints,
		QueryTimeout: config.DefaultQueryTimeout,
		HTTPBind:     config.DefaultHTTPBind,
	}

	body, err := yaml.Marshal(&starter)
	if err != nil {
		return errors.Annotate(err, "marshaling starter config")
	}

	header := "# grafink configuration.\n# Every key can also be set from the environment (GRAFANA_URL, PANEL_ID, ...).\n"
	if err := ioutil.WriteFile(path, append([]byte(header), body...), 0600); err != nil {
		return errors.Annotatef(err, "writing %s", path)
	}

	fmt.Println("wrote", path)
	return nil
}

func init() {
	rootCmd.AddCommand(initConfigCmd)

	initConfigCmd.PersistentFlags().StringVarP(&outFile, "out", "w", "grafink.yaml", "path of the file to write")
}
