// Package transform turns raw Grafana query results into the flat display
// primitives a low-refresh e-ink device can render: single values, sparklines,
// bars, table cells, hexagon statuses. Everything here is deterministic and
// free of I/O.
package transform

import (
	"strings"
	"time"

	"github.com/juju/errors"

	"github.com/grafink/grafink/grafana"
)

// Kind is a canonical panel kind. The string value doubles as the
// panel_type field of the rendered payload.
type Kind string

const (
	KindStat       Kind = "stat"
	KindTimeSeries Kind = "timeseries"
	KindGauge      Kind = "gauge"
	KindBarGauge   Kind = "bargauge"
	KindBarChart   Kind = "barchart"
	KindTable      Kind = "table"
	KindPolystat   Kind = "polystat"
)

// ErrShapeMismatch reports a query result whose shape cannot feed the
// requested panel kind, a table result for a stat panel for instance.
var ErrShapeMismatch = errors.NewNotValid(nil, "query result shape does not match panel type")

// kindNames maps every accepted panel type string, aliases included, to its
// canonical kind. Adding a panel kind means one normalizer and one entry
// here. Legacy graph and barchart panels render as time series; the real
// polystat plugin id maps to the short name.
var kindNames = map[string]Kind{
	"stat":                   KindStat,
	"timeseries":             KindTimeSeries,
	"graph":                  KindTimeSeries,
	"barchart":               KindTimeSeries,
	"gauge":                  KindGauge,
	"bargauge":               KindBarGauge,
	"table":                  KindTable,
	"table-old":              KindTable,
	"polystat":               KindPolystat,
	"grafana-polystat-panel": KindPolystat,
}

var normalizers = map[Kind]func(*grafana.Result, Params) (*Data, error){
	KindStat:       normalizeStat,
	KindTimeSeries: normalizeTimeSeries,
	KindGauge:      normalizeGauge,
	KindBarGauge:   normalizeBars,
	KindBarChart:   normalizeBars,
	KindTable:      normalizeTable,
	KindPolystat:   normalizePolystat,
}

// ResolveKind maps a panel type string from a dashboard or a request to its
// canonical kind.
func ResolveKind(panelType string) (Kind, error) {
	k, ok := kindNames[strings.ToLower(strings.TrimSpace(panelType))]
	if !ok {
		return "", errors.NotSupportedf("panel type %q", panelType)
	}
	return k, nil
}

// Kinds lists the canonical kinds in render order.
func Kinds() []Kind {
	return []Kind{KindStat, KindTimeSeries, KindGauge, KindBarGauge, KindBarChart, KindTable, KindPolystat}
}

// Normalize renders one query result as the given kind. The result may be
// empty; the payload is then well formed but empty too.
func Normalize(kind Kind, res *grafana.Result, p Params) (*Data, error) {
	fn, ok := normalizers[kind]
	if !ok {
		return nil, errors.NotSupportedf("panel type %q", string(kind))
	}
	if res == nil {
		res = &grafana.Result{}
	}

	d, err := fn(res, p)
	if err != nil {
		return nil, errors.Annotatef(err, "rendering %s panel", kind)
	}

	d.Kind = kind
	d.Title = p.Title
	d.Description = p.Description
	d.Unit = p.Unit
	d.Timestamp = time.Now().In(p.location()).Format("2006-01-02 15:04 MST")
	return d, nil
}
