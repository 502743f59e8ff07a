package grafana

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/juju/errors"
	"github.com/tidwall/sjson"
	"go.uber.org/zap"

	"github.com/grafink/grafink/config"
	l "github.com/grafink/grafink/logger"
	"github.com/grafink/grafink/timerange"
	"github.com/grafink/grafink/varsub"
)

// Client talks to one Grafana instance. It is cheap to build, one per run
// is fine.
type Client struct {
	base string
	rest *resty.Client
	log  *zap.SugaredLogger
}

func New(c *config.C, baseURL, apiKey string) (cl *Client, err error) {
	cl = &Client{}
	if cl.log, err = l.NewLogConfig(c, "grafana"); err != nil {
		return cl, err
	}
	cl.base = strings.TrimRight(baseURL, "/")
	cl.rest = resty.New()
	cl.rest.SetTimeout(c.QueryTimeoutDuration())
	if apiKey != "" {
		cl.rest.SetAuthToken(apiKey)
	}
	return cl, err
}

// GetDashboard fetches and parses one dashboard by uid.
func (c *Client) GetDashboard(uid string) (*Dashboard, error) {
	url := fmt.Sprintf("%s/api/dashboards/uid/%s", c.base, uid)

	c.log.Debug("fetching dashboard: ", url)

	resp, err := c.rest.R().
		EnableTrace().
		Get(url)
	if err != nil {
		return nil, c.transportErr(err, "fetching dashboard")
	}
	if !resp.IsSuccess() {
		return nil, c.statusErr(resp, fmt.Sprintf("dashboard %s", uid))
	}

	dash, err := parseDashboard(resp.Body())
	if err != nil {
		return nil, errors.Annotatef(err, "dashboard %s", uid)
	}

	c.log.Debugf("dashboard %s: %d panels", uid, len(dash.Panels))
	return dash, nil
}

// GetPanel fetches the dashboard and returns the panel with the given id.
func (c *Client) GetPanel(uid string, id int) (*Panel, error) {
	dash, err := c.GetDashboard(uid)
	if err != nil {
		return nil, err
	}
	p := dash.Panel(id)
	if p == nil {
		return nil, errors.NotFoundf("panel %d in dashboard %s", id, uid)
	}
	return p, nil
}

// QueryPanel re-runs the panel's targets for the resolved range. Variables
// are substituted textually into each target after the panel datasource has
// been injected where a target lacks its own.
func (c *Client) QueryPanel(p *Panel, rng timerange.Range, vars map[string]string) (*Result, error) {
	queries, err := buildQueries(p, vars)
	if err != nil {
		return nil, err
	}
	if len(queries) == 0 {
		c.log.Warnf("panel %d has no runnable targets", p.ID)
		return &Result{}, nil
	}

	body := map[string]interface{}{
		"from":    rng.FromMillis(),
		"to":      rng.ToMillis(),
		"queries": queries,
	}

	resp, err := c.rest.R().
		EnableTrace().
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(c.base + "/api/ds/query")
	if err != nil {
		return nil, c.transportErr(err, "querying datasource")
	}
	if !resp.IsSuccess() {
		return nil, c.statusErr(resp, fmt.Sprintf("panel %d query", p.ID))
	}

	var qr queryResponse
	if err := json.Unmarshal(resp.Body(), &qr); err != nil {
		return nil, errors.Annotate(err, "parsing query response")
	}

	res, upstreamErr := parseFrames(&qr)
	if res.Empty() && upstreamErr != "" {
		return nil, errors.Errorf("datasource error: %s", upstreamErr)
	}
	if upstreamErr != "" {
		c.log.Warnf("partial datasource error: %s", upstreamErr)
	}

	c.log.Debugf("panel %d: %d series", p.ID, len(res.Series))
	return res, nil
}

func buildQueries(p *Panel, vars map[string]string) ([]json.RawMessage, error) {
	merged := varsub.Merge(vars)
	queries := make([]json.RawMessage, 0, len(p.Targets))

	for i, target := range p.Targets {
		if hide, ok := target["hide"].(bool); ok && hide {
			continue
		}
		b, err := json.Marshal(target)
		if err != nil {
			return nil, errors.Annotatef(err, "encoding target %d", i)
		}
		if ds, ok := target["datasource"]; (!ok || ds == nil) && p.Datasource != nil {
			if b, err = sjson.SetBytes(b, "datasource", p.Datasource); err != nil {
				return nil, errors.Annotatef(err, "setting datasource on target %d", i)
			}
		}
		queries = append(queries, json.RawMessage(varsub.Apply(string(b), merged)))
	}
	return queries, nil
}

func (c *Client) transportErr(err error, what string) error {
	if ne, ok := err.(net.Error); ok && ne.Timeout() {
		return errors.NewTimeout(err, what+": grafana did not respond in time")
	}
	return errors.Annotate(err, what)
}

func (c *Client) statusErr(resp *resty.Response, what string) error {
	code := resp.StatusCode()
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return errors.Unauthorizedf("%s: grafana rejected the API key (status %d)", what, code)
	case http.StatusNotFound:
		return errors.NotFoundf("%s", what)
	case http.StatusGatewayTimeout:
		return errors.NewTimeout(nil, what+": grafana reported a datasource timeout")
	default:
		return errors.Errorf("%s: grafana returned status %d: %s", what, code, snippet(resp.Body()))
	}
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
