package config

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/juju/errors"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	l "github.com/grafink/grafink/logger"
)

const (
	DefaultTimeFrom     = "now-1h"
	DefaultTimeTo       = "now"
	DefaultLabel        = "name"
	DefaultTimezone     = "UTC"
	DefaultInterval     = 300
	DefaultMaxPoints    = 100
	DefaultQueryTimeout = 30
	DefaultHTTPBind     = ":8080"
)

// Mapped is the raw key set read by viper. Every key is also readable from
// the environment (GRAFANA_URL, DASHBOARD_UID, ...) via AutomaticEnv.
type Mapped struct {
	GrafanaURL   string `mapstructure:"grafana_url"`
	APIKey       string `mapstructure:"grafana_api_key"`
	DashboardUID string `mapstructure:"dashboard_uid"`
	PanelID      int    `mapstructure:"panel_id"`
	PanelType    string `mapstructure:"panel_type"`

	TimeFrom string `mapstructure:"time_from"`
	TimeTo   string `mapstructure:"time_to"`
	Timezone string `mapstructure:"timezone"`
	Label    string `mapstructure:"label"`

	// JSON object string, e.g. {"env":"prod"}. Shared by file and env so
	// that VARIABLES can be set either way.
	RawVariables string `mapstructure:"variables"`

	WebhookURL string `mapstructure:"trmnl_webhook_url"`

	Interval     int `mapstructure:"interval"`
	RateLimit    int `mapstructure:"rate_limit"`
	MaxPoints    int `mapstructure:"max_points"`
	QueryTimeout int `mapstructure:"query_timeout"`

	HTTPBind      string `mapstructure:"http_bind"`
	PreserveOrder bool   `mapstructure:"preserve_order"`
}

type C struct {
	Mapped
	Variables map[string]string

	location *time.Location
	logLevel string
	log      *zap.SugaredLogger
}

func New(configFile string, logLevel string) (c *C, err error) {
	c = &C{}
	c.logLevel = logLevel
	if c.log, err = l.NewLogConfig(c, "config"); err != nil {
		return c, err
	}

	c.log.Debug("starting config")

	if err = c.configViper(configFile); err != nil {
		err = errors.Annotate(err, "configuring viper")
		return nil, err
	}

	m := Mapped{}
	err = viper.Unmarshal(&m)
	if err != nil {
		return nil, err
	}

	if m.Interval <= 0 {
		m.Interval = DefaultInterval
	}

	if m.MaxPoints <= 0 {
		m.MaxPoints = DefaultMaxPoints
	}

	if m.QueryTimeout <= 0 {
		m.QueryTimeout = DefaultQueryTimeout
	}

	c.Mapped = m

	if err = c.configVariables(); err != nil {
		return nil, err
	}

	c.configLocation()

	_ = c.log.Sync()

	return c, err
}

func (c *C) configViper(configFile string) error {
	if configFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(configFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath("./")
		viper.AddConfigPath("/etc/grafink")
		viper.SetConfigName("grafink")
	}

	// Defaults double as the key registry: a key without a default is
	// invisible to Unmarshal when it only arrives via the environment.
	viper.SetDefault("grafana_url", "")
	viper.SetDefault("grafana_api_key", "")
	viper.SetDefault("dashboard_uid", "")
	viper.SetDefault("panel_id", 0)
	viper.SetDefault("panel_type", "")
	viper.SetDefault("time_from", DefaultTimeFrom)
	viper.SetDefault("time_to", DefaultTimeTo)
	viper.SetDefault("timezone", DefaultTimezone)
	viper.SetDefault("label", DefaultLabel)
	viper.SetDefault("variables", "")
	viper.SetDefault("trmnl_webhook_url", "")
	viper.SetDefault("interval", DefaultInterval)
	viper.SetDefault("rate_limit", 0)
	viper.SetDefault("max_points", DefaultMaxPoints)
	viper.SetDefault("query_timeout", DefaultQueryTimeout)
	viper.SetDefault("http_bind", DefaultHTTPBind)
	viper.SetDefault("preserve_order", false)

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in; pure-env setups run without one.
	if err := viper.ReadInConfig(); err == nil {
		c.log.Info("using config file: ", viper.ConfigFileUsed())
	} else if _, notFound := err.(viper.ConfigFileNotFoundError); notFound && configFile == "" {
		c.log.Debug("no config file found, environment only")
	} else {
		err = errors.Annotate(err, "could not read in viper config")
		return err
	}

	return nil
}

func (c *C) configVariables() error {
	c.Variables = make(map[string]string)
	raw := strings.TrimSpace(c.RawVariables)
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), &c.Variables); err != nil {
		return errors.NewNotValid(err, "variables must be a JSON object of string values")
	}
	return nil
}

func (c *C) configLocation() {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		c.log.Warnf("unknown timezone %q, falling back to UTC", c.Timezone)
		loc = time.UTC
	}
	c.location = loc
}

func (c *C) LogLevel() string {
	return c.logLevel
}

// Location is the display time zone for rendered timestamps.
func (c *C) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

func (c *C) IntervalDuration() time.Duration {
	return time.Duration(c.Interval) * time.Second
}

func (c *C) QueryTimeoutDuration() time.Duration {
	return time.Duration(c.QueryTimeout) * time.Second
}

// ValidatePusher checks the keys the push loop cannot run without. The HTTP
// server skips this: its requests may carry the same fields per call.
func (c *C) ValidatePusher() error {
	var missing []string
	if c.GrafanaURL == "" {
		missing = append(missing, "grafana_url")
	}
	if c.APIKey == "" {
		missing = append(missing, "grafana_api_key")
	}
	if c.DashboardUID == "" {
		missing = append(missing, "dashboard_uid")
	}
	if c.PanelID <= 0 {
		missing = append(missing, "panel_id")
	}
	if c.WebhookURL == "" {
		missing = append(missing, "trmnl_webhook_url")
	}
	if len(missing) > 0 {
		return errors.NewNotValid(nil, "missing configuration: "+strings.Join(missing, ", "))
	}
	return nil
}
