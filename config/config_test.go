package config_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/juju/errors"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"

	"github.com/grafink/grafink/config"
)

const sampleConfig = `
grafana_url: https://grafana.example.com
grafana_api_key: glsa_test
dashboard_uid: svc-health
panel_id: 4
timezone: America/New_York
variables: '{"env": "prod", "cluster": "us-east-1"}'
trmnl_webhook_url: https://usetrmnl.com/api/custom_plugins/abc
rate_limit: 30
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	dir, err := ioutil.TempDir("", "grafink-config")
	if err != nil {
		t.Fatalf("creating temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	path := filepath.Join(dir, "grafink.yaml")
	if err := ioutil.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func setEnv(t *testing.T, key, val string) {
	t.Helper()

	old, had := os.LookupEnv(key)
	if err := os.Setenv(key, val); err != nil {
		t.Fatalf("setting %s: %v", key, err)
	}
	t.Cleanup(func() {
		if had {
			_ = os.Setenv(key, old)
		} else {
			_ = os.Unsetenv(key)
		}
	})
}

func TestNewFromFile(t *testing.T) {
	viper.Reset()
	a := assert.New(t)

	path := writeConfig(t, sampleConfig)
	c, err := config.New(path, "debug")
	if !a.Nil(err) {
		t.FailNow()
	}

	a.Equal("https://grafana.example.com", c.GrafanaURL)
	a.Equal("glsa_test", c.APIKey)
	a.Equal("svc-health", c.DashboardUID)
	a.Equal(4, c.PanelID)
	a.Equal(30, c.RateLimit)
	a.Equal("https://usetrmnl.com/api/custom_plugins/abc", c.WebhookURL)

	// Unset keys keep their defaults.
	a.Equal(config.DefaultTimeFrom, c.TimeFrom)
	a.Equal(config.DefaultTimeTo, c.TimeTo)
	a.Equal(config.DefaultLabel, c.Label)
	a.Equal(config.DefaultMaxPoints, c.MaxPoints)
	a.Equal(config.DefaultQueryTimeout, c.QueryTimeout)
	a.Equal(config.DefaultHTTPBind, c.HTTPBind)

	a.Equal(map[string]string{"env": "prod", "cluster": "us-east-1"}, c.Variables)
	a.Equal("America/New_York", c.Location().String())
}

func TestNewFromEnv(t *testing.T) {
	viper.Reset()
	a := assert.New(t)

	setEnv(t, "GRAFANA_URL", "https://grafana.internal:3000")
	setEnv(t, "GRAFANA_API_KEY", "glsa_env")
	setEnv(t, "DASHBOARD_UID", "ops")
	setEnv(t, "PANEL_ID", "12")
	setEnv(t, "VARIABLES", `{"env": "staging"}`)

	c, err := config.New("", "info")
	if !a.Nil(err) {
		t.FailNow()
	}

	a.Equal("https://grafana.internal:3000", c.GrafanaURL)
	a.Equal("glsa_env", c.APIKey)
	a.Equal("ops", c.DashboardUID)
	a.Equal(12, c.PanelID)
	a.Equal("staging", c.Variables["env"])
	a.Equal(config.DefaultInterval, c.Interval)
}

func TestNewMissingFile(t *testing.T) {
	viper.Reset()
	a := assert.New(t)

	_, err := config.New("/does/not/exist/grafink.yaml", "info")
	a.NotNil(err)
}

func TestVariablesInvalidJSON(t *testing.T) {
	viper.Reset()
	a := assert.New(t)

	setEnv(t, "VARIABLES", "{broken")

	_, err := config.New("", "info")
	if !a.NotNil(err) {
		t.FailNow()
	}
	a.True(errors.IsNotValid(err))
}

func TestTimezoneFallback(t *testing.T) {
	viper.Reset()
	a := assert.New(t)

	setEnv(t, "TIMEZONE", "Mars/Olympus")

	c, err := config.New("", "info")
	if !a.Nil(err) {
		t.FailNow()
	}
	a.Equal(time.UTC, c.Location())
}

func TestDurations(t *testing.T) {
	a := assert.New(t)

	c := &config.C{Mapped: config.Mapped{Interval: 120, QueryTimeout: 5}}
	a.Equal(2*time.Minute, c.IntervalDuration())
	a.Equal(5*time.Second, c.QueryTimeoutDuration())
}

func TestValidatePusher(t *testing.T) {
	a := assert.New(t)

	c := &config.C{Mapped: config.Mapped{
		GrafanaURL:   "https://grafana.example.com",
		APIKey:       "glsa_test",
		DashboardUID: "svc-health",
		PanelID:      4,
		WebhookURL:   "https://usetrmnl.com/api/custom_plugins/abc",
	}}
	a.Nil(c.ValidatePusher())

	empty := &config.C{}
	err := empty.ValidatePusher()
	if !a.NotNil(err) {
		t.FailNow()
	}
	a.True(errors.IsNotValid(err))
	a.Contains(err.Error(), "grafana_url")
	a.Contains(err.Error(), "grafana_api_key")
	a.Contains(err.Error(), "dashboard_uid")
	a.Contains(err.Error(), "panel_id")
	a.Contains(err.Error(), "trmnl_webhook_url")
}
