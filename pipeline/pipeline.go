// Package pipeline orchestrates one transformation run: resolve the time
// range, pass the rate limiter, fetch the panel, re-run its queries and
// normalize the result. All policy lives in the packages it calls; this one
// only fixes the order.
package pipeline

import (
	"math"
	"strings"
	"time"

	"github.com/juju/errors"
	"github.com/k0kubun/pp"
	"go.uber.org/zap"

	"github.com/grafink/grafink/config"
	"github.com/grafink/grafink/grafana"
	l "github.com/grafink/grafink/logger"
	"github.com/grafink/grafink/metrics"
	"github.com/grafink/grafink/ratelimit"
	"github.com/grafink/grafink/timerange"
	"github.com/grafink/grafink/transform"
)

// Query is everything one run needs. A zero PanelType means the dashboard's
// own panel type decides the rendering.
type Query struct {
	SourceURL    string
	APIKey       string
	DashboardUID string
	PanelID      int
	PanelType    string

	TimeFrom string
	TimeTo   string

	Label     string
	Variables map[string]string

	MaxPoints     int
	TZ            *time.Location
	PreserveOrder bool
}

// QueryFromConfig builds the default query the pusher runs and the HTTP
// layer overlays request fields on.
func QueryFromConfig(c *config.C) Query {
	return Query{
		SourceURL:     c.GrafanaURL,
		APIKey:        c.APIKey,
		DashboardUID:  c.DashboardUID,
		PanelID:       c.PanelID,
		PanelType:     c.PanelType,
		TimeFrom:      c.TimeFrom,
		TimeTo:        c.TimeTo,
		Label:         c.Label,
		Variables:     c.Variables,
		MaxPoints:     c.MaxPoints,
		TZ:            c.Location(),
		PreserveOrder: c.PreserveOrder,
	}
}

func (q Query) Validate() error {
	var missing []string
	if q.SourceURL == "" {
		missing = append(missing, "grafana_url")
	}
	if q.DashboardUID == "" {
		missing = append(missing, "dashboard_uid")
	}
	if q.PanelID <= 0 {
		missing = append(missing, "panel_id")
	}
	if len(missing) > 0 {
		return errors.NewNotValid(nil, "missing query fields: "+strings.Join(missing, ", "))
	}
	return nil
}

// P is the shared pipeline. The limiter lives here so every caller, pusher
// and HTTP alike, draws from the same per-source budget.
type P struct {
	conf    *config.C
	log     *zap.SugaredLogger
	limiter *ratelimit.Limiter
}

func New(c *config.C) (p *P, err error) {
	p = &P{conf: c}
	if p.log, err = l.NewLogConfig(c, "pipeline"); err != nil {
		return p, err
	}
	p.limiter = ratelimit.New(c.RateLimit)
	if p.limiter.Enabled() {
		p.log.Infof("rate limit: %d requests per source per %s", c.RateLimit, ratelimit.Window)
	}
	return p, err
}

// Transform runs one query end to end.
func (p *P) Transform(q Query) (data *transform.Data, err error) {
	kind := transform.Kind("")
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		metrics.Runs.WithLabelValues(kindLabel(kind), outcome).Inc()
	}()

	if err = q.Validate(); err != nil {
		return nil, err
	}

	// A requested panel type fails fast, before any upstream traffic.
	if q.PanelType != "" {
		if kind, err = transform.ResolveKind(q.PanelType); err != nil {
			return nil, err
		}
	}

	rng, err := timerange.Resolve(q.TimeFrom, q.TimeTo)
	if err != nil {
		return nil, err
	}

	// One admission covers both upstream calls of this run.
	if err = p.limiter.Admit(q.SourceURL); err != nil {
		metrics.RateLimited.Inc()
		p.log.Warn(err.Error())
		return nil, err
	}

	gc, err := grafana.New(p.conf, q.SourceURL, q.APIKey)
	if err != nil {
		return nil, err
	}

	dash, err := gc.GetDashboard(q.DashboardUID)
	if err != nil {
		return nil, p.upstreamFailed(err)
	}

	panel := dash.Panel(q.PanelID)
	if panel == nil {
		return nil, errors.NotFoundf("panel %d in dashboard %s", q.PanelID, q.DashboardUID)
	}

	if kind == "" {
		if kind, err = transform.ResolveKind(panel.Type); err != nil {
			return nil, err
		}
	}

	res, err := gc.QueryPanel(panel, rng, q.Variables)
	if err != nil {
		return nil, p.upstreamFailed(err)
	}

	params := paramsFor(panel, q)
	p.log.Debugf("render params: %s", pp.Sprint(params))

	data, err = transform.Normalize(kind, res, params)
	if err != nil {
		return nil, err
	}

	p.log.Infof("rendered %s panel %d of %s (%s)", kind, q.PanelID, q.DashboardUID, rng.Span())
	return data, nil
}

// paramsFor merges the panel's display options with the request's.
func paramsFor(panel *grafana.Panel, q Query) transform.Params {
	raw := panel.Thresholds()
	steps := make([]transform.Step, 0, len(raw))
	for _, s := range raw {
		v := math.Inf(-1)
		if s.Value != nil {
			v = *s.Value
		}
		steps = append(steps, transform.Step{Value: v, Color: s.Color})
	}

	return transform.Params{
		Title:         panel.Title,
		Description:   panel.Description,
		Unit:          panel.Unit(),
		Decimals:      panel.Decimals(),
		Min:           panel.FieldMin(),
		Max:           panel.FieldMax(),
		Thresholds:    steps,
		LabelKey:      q.Label,
		MaxPoints:     q.MaxPoints,
		TZ:            q.TZ,
		PreserveOrder: q.PreserveOrder,
	}
}

func (p *P) upstreamFailed(err error) error {
	reason := "error"
	switch {
	case errors.IsUnauthorized(err):
		reason = "auth"
	case errors.IsNotFound(err):
		reason = "not_found"
	case errors.IsTimeout(err):
		reason = "timeout"
	}
	metrics.UpstreamErrors.WithLabelValues(reason).Inc()
	return err
}

func kindLabel(k transform.Kind) string {
	if k == "" {
		return "unknown"
	}
	return string(k)
}
