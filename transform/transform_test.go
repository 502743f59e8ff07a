package transform_test

import (
	"math"
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"

	"github.com/grafink/grafink/grafana"
	"github.com/grafink/grafink/transform"
)

func pts(base int64, vals ...float64) []grafana.Point {
	out := make([]grafana.Point, len(vals))
	for i, v := range vals {
		out[i] = grafana.Point{Time: float64(base + int64(i)*60000), Value: v}
	}
	return out
}

const baseMs = int64(1710500400000) // 2024-03-15 11:00 UTC

func seriesResult(s ...grafana.Series) *grafana.Result {
	return &grafana.Result{Series: s}
}

func TestResolveKindAliases(t *testing.T) {
	a := assert.New(t)

	cases := map[string]transform.Kind{
		"stat":                   transform.KindStat,
		"timeseries":             transform.KindTimeSeries,
		"graph":                  transform.KindTimeSeries,
		"barchart":               transform.KindTimeSeries,
		"gauge":                  transform.KindGauge,
		"bargauge":               transform.KindBarGauge,
		"table":                  transform.KindTable,
		"table-old":              transform.KindTable,
		"polystat":               transform.KindPolystat,
		"grafana-polystat-panel": transform.KindPolystat,
		"Stat":                   transform.KindStat,
		" TIMESERIES ":           transform.KindTimeSeries,
	}
	for in, want := range cases {
		got, err := transform.ResolveKind(in)
		if !a.Nil(err, in) {
			t.FailNow()
		}
		a.Equal(want, got, in)
	}
}

func TestResolveKindUnknown(t *testing.T) {
	a := assert.New(t)

	for _, in := range []string{"piechart", "heatmap", ""} {
		_, err := transform.ResolveKind(in)
		if !a.NotNil(err, in) {
			t.FailNow()
		}
		a.True(errors.IsNotSupported(err), in)
	}
}

func TestClassifyOrderedSteps(t *testing.T) {
	a := assert.New(t)

	steps := []transform.Step{
		{Value: 0, Color: "ok"},
		{Value: 50, Color: "warn"},
		{Value: 90, Color: "crit"},
	}

	a.Equal("ok", transform.Classify(49, steps))
	a.Equal("warn", transform.Classify(50, steps))
	a.Equal("crit", transform.Classify(95, steps))
	a.Equal("ok", transform.Classify(0, steps))
	a.Equal("", transform.Classify(-1, steps))
}

func TestClassifyBaseStep(t *testing.T) {
	a := assert.New(t)

	steps := []transform.Step{
		{Value: math.Inf(-1), Color: "green"},
		{Value: 80, Color: "red"},
	}
	a.Equal("green", transform.Classify(-50, steps))
	a.Equal("red", transform.Classify(81, steps))
}

func TestFormatValue(t *testing.T) {
	a := assert.New(t)

	v := func(f float64) *float64 { return &f }
	d := func(n int) *int { return &n }

	a.Equal("N/A", transform.FormatValue(nil, "", nil))
	a.Equal("42", transform.FormatValue(v(42), "", nil))
	a.Equal("42%", transform.FormatValue(v(42), "percent", nil))
	a.Equal("3.14", transform.FormatValue(v(3.14159), "", nil))
	a.Equal("3.1", transform.FormatValue(v(3.14159), "", d(1)))
	a.Equal("1024 B", transform.FormatValue(v(1024), "bytes", nil))
	a.Equal("2.50s", transform.FormatValue(v(2.5), "s", nil))
	a.Equal("7", transform.FormatValue(v(7), "unknown-unit", nil))
}

func TestNormalizeStat(t *testing.T) {
	a := assert.New(t)

	res := seriesResult(grafana.Series{Name: "errors", Points: pts(baseMs, 1, 2, 3.5)})
	d, err := transform.Normalize(transform.KindStat, res, transform.Params{
		Title: "Errors",
		Thresholds: []transform.Step{
			{Value: 0, Color: "green"},
			{Value: 3, Color: "red"},
		},
	})
	if !a.Nil(err) {
		t.FailNow()
	}

	a.Equal(transform.KindStat, d.Kind)
	a.Equal("Errors", d.Title)
	a.NotEmpty(d.Timestamp)
	if !a.NotNil(d.Stat) {
		t.FailNow()
	}
	a.Equal(3.5, *d.Stat.Value)
	a.Equal("3.50", d.Stat.Formatted)
	a.Equal("red", d.Stat.Color)
	a.Len(d.Stat.Sparkline, 3)
	a.Equal("11:00", d.Stat.Sparkline[0].Time)
}

func TestNormalizeStatSparklineCap(t *testing.T) {
	a := assert.New(t)

	vals := make([]float64, 300)
	for i := range vals {
		vals[i] = float64(i)
	}
	res := seriesResult(grafana.Series{Name: "m", Points: pts(baseMs, vals...)})

	d, err := transform.Normalize(transform.KindStat, res, transform.Params{MaxPoints: 40})
	if !a.Nil(err) {
		t.FailNow()
	}
	a.Len(d.Stat.Sparkline, 40)
	a.Equal(0.0, d.Stat.Sparkline[0].Value)
	a.Equal(299.0, d.Stat.Sparkline[39].Value)
}

func TestNormalizeStatSinglePointNoSparkline(t *testing.T) {
	a := assert.New(t)

	res := seriesResult(grafana.Series{Name: "m", Points: pts(baseMs, 9)})
	d, err := transform.Normalize(transform.KindStat, res, transform.Params{})
	if !a.Nil(err) {
		t.FailNow()
	}
	a.Equal(9.0, *d.Stat.Value)
	a.Empty(d.Stat.Sparkline)
}

func TestNormalizeStatEmptyResult(t *testing.T) {
	a := assert.New(t)

	d, err := transform.Normalize(transform.KindStat, &grafana.Result{}, transform.Params{})
	if !a.Nil(err) {
		t.FailNow()
	}
	a.Nil(d.Stat.Value)
	a.Equal("N/A", d.Stat.Formatted)
	a.Equal("green", d.Stat.Color)
}

func TestNormalizeStatRejectsTable(t *testing.T) {
	a := assert.New(t)

	res := &grafana.Result{Table: &grafana.Table{
		Columns: []grafana.Column{{Name: "host", Type: "string"}},
		Rows:    [][]interface{}{{"web-1"}},
	}}
	_, err := transform.Normalize(transform.KindStat, res, transform.Params{})
	if !a.NotNil(err) {
		t.FailNow()
	}
	a.True(errors.IsNotValid(err))
	a.Equal(transform.ErrShapeMismatch, errors.Cause(err))
}

func TestNormalizeTimeSeriesLabelResolution(t *testing.T) {
	a := assert.New(t)

	res := seriesResult(grafana.Series{
		Name:   "A",
		Labels: map[string]string{"service_name": "auth-service", "instance": "host:9090"},
		Points: pts(baseMs, 5, 6),
	})

	d, err := transform.Normalize(transform.KindTimeSeries, res, transform.Params{LabelKey: "service_name"})
	if !a.Nil(err) {
		t.FailNow()
	}
	if !a.Len(d.TimeSeries.Series, 1) {
		t.FailNow()
	}
	a.Equal("auth-service", d.TimeSeries.Series[0].Name)
	a.Equal("auth-service", d.TimeSeries.Points[0].Label)
}

func TestNormalizeTimeSeriesDefaultLabelFallback(t *testing.T) {
	a := assert.New(t)

	// No configured key match, "name" label wins over the raw identifier.
	res := seriesResult(grafana.Series{
		Name:   "A",
		Labels: map[string]string{"name": "checkout"},
		Points: pts(baseMs, 1),
	})
	d, err := transform.Normalize(transform.KindTimeSeries, res, transform.Params{LabelKey: "service"})
	if !a.Nil(err) {
		t.FailNow()
	}
	a.Equal("checkout", d.TimeSeries.Series[0].Name)

	// No labels at all: the raw identifier survives.
	res = seriesResult(grafana.Series{Name: "B", Points: pts(baseMs, 1)})
	d, err = transform.Normalize(transform.KindTimeSeries, res, transform.Params{})
	if !a.Nil(err) {
		t.FailNow()
	}
	a.Equal("B", d.TimeSeries.Series[0].Name)
}

func TestNormalizeTimeSeriesSkipsMalformedPoints(t *testing.T) {
	a := assert.New(t)

	res := seriesResult(grafana.Series{
		Name: "m",
		Points: []grafana.Point{
			{Time: nil, Value: 1.0},
			{Time: float64(baseMs), Value: 2.0},
			{Time: float64(baseMs + 60000), Value: "not-a-number"},
		},
	})

	d, err := transform.Normalize(transform.KindTimeSeries, res, transform.Params{})
	if !a.Nil(err) {
		t.FailNow()
	}
	if !a.Len(d.TimeSeries.Series, 1) {
		t.FailNow()
	}
	a.Equal(1, d.TimeSeries.Series[0].Points)
	a.Len(d.TimeSeries.Points, 1)
	a.Equal(2.0, d.TimeSeries.Points[0].Value)
}

func TestNormalizeTimeSeriesDropsDeadSeries(t *testing.T) {
	a := assert.New(t)

	res := seriesResult(
		grafana.Series{Name: "dead", Points: []grafana.Point{{Time: nil, Value: nil}}},
		grafana.Series{Name: "live", Points: pts(baseMs, 4, 8)},
	)

	d, err := transform.Normalize(transform.KindTimeSeries, res, transform.Params{})
	if !a.Nil(err) {
		t.FailNow()
	}
	if !a.Len(d.TimeSeries.Series, 1) {
		t.FailNow()
	}
	a.Equal("live", d.TimeSeries.Series[0].Name)
	a.Equal(8.0, *d.TimeSeries.Current)
	a.Equal(4.0, *d.TimeSeries.Min)
	a.Equal(8.0, *d.TimeSeries.Max)
	a.Equal(6.0, *d.TimeSeries.Avg)
}

func TestNormalizeTimeSeriesEmpty(t *testing.T) {
	a := assert.New(t)

	d, err := transform.Normalize(transform.KindTimeSeries, &grafana.Result{}, transform.Params{})
	if !a.Nil(err) {
		t.FailNow()
	}
	a.NotNil(d.TimeSeries)
	a.Empty(d.TimeSeries.Series)
	a.Empty(d.TimeSeries.Points)
	a.Nil(d.TimeSeries.Current)
	a.Equal("N/A", d.TimeSeries.Formatted)
}

func TestNormalizeTimeSeriesRejectsTable(t *testing.T) {
	a := assert.New(t)

	res := &grafana.Result{Table: &grafana.Table{
		Columns: []grafana.Column{{Name: "host", Type: "string"}},
		Rows:    [][]interface{}{{"web-1"}},
	}}
	_, err := transform.Normalize(transform.KindTimeSeries, res, transform.Params{})
	if !a.NotNil(err) {
		t.FailNow()
	}
	a.Equal(transform.ErrShapeMismatch, errors.Cause(err))
}

func TestNormalizeGauge(t *testing.T) {
	a := assert.New(t)

	min, max := 0.0, 200.0
	res := seriesResult(grafana.Series{Name: "mem", Points: pts(baseMs, 150)})

	d, err := transform.Normalize(transform.KindGauge, res, transform.Params{Min: &min, Max: &max})
	if !a.Nil(err) {
		t.FailNow()
	}
	a.Equal(150.0, *d.Gauge.Value)
	a.Equal(75, d.Gauge.Percent)
	a.Equal(0.0, d.Gauge.Min)
	a.Equal(200.0, d.Gauge.Max)
}

func TestNormalizeGaugeClamped(t *testing.T) {
	a := assert.New(t)

	// Defaults are 0..100; out-of-span values pin to the ends.
	over := seriesResult(grafana.Series{Name: "m", Points: pts(baseMs, 250)})
	d, err := transform.Normalize(transform.KindGauge, over, transform.Params{})
	if !a.Nil(err) {
		t.FailNow()
	}
	a.Equal(100, d.Gauge.Percent)

	under := seriesResult(grafana.Series{Name: "m", Points: pts(baseMs, -10)})
	d, err = transform.Normalize(transform.KindGauge, under, transform.Params{})
	if !a.Nil(err) {
		t.FailNow()
	}
	a.Equal(0, d.Gauge.Percent)
}

func TestNormalizeGaugeEmpty(t *testing.T) {
	a := assert.New(t)

	d, err := transform.Normalize(transform.KindGauge, &grafana.Result{}, transform.Params{})
	if !a.Nil(err) {
		t.FailNow()
	}
	a.Nil(d.Gauge.Value)
	a.Equal(0, d.Gauge.Percent)
	a.Equal("N/A", d.Gauge.Formatted)
}

func TestNormalizeBarsSortedDescending(t *testing.T) {
	a := assert.New(t)

	res := seriesResult(
		grafana.Series{Name: "low", Points: pts(baseMs, 10)},
		grafana.Series{Name: "high", Points: pts(baseMs, 90)},
		grafana.Series{Name: "mid", Points: pts(baseMs, 50)},
	)

	d, err := transform.Normalize(transform.KindBarGauge, res, transform.Params{})
	if !a.Nil(err) {
		t.FailNow()
	}
	if !a.Len(d.Bars.Bars, 3) {
		t.FailNow()
	}
	a.Equal("high", d.Bars.Bars[0].Name)
	a.Equal("mid", d.Bars.Bars[1].Name)
	a.Equal("low", d.Bars.Bars[2].Name)
	a.Equal(100, d.Bars.Bars[0].Percent)
	a.Equal(56, d.Bars.Bars[1].Percent)
	a.Equal(10.0, d.Bars.Min)
	a.Equal(90.0, d.Bars.Max)
}

func TestNormalizeBarsPreserveOrder(t *testing.T) {
	a := assert.New(t)

	res := seriesResult(
		grafana.Series{Name: "first", Points: pts(baseMs, 10)},
		grafana.Series{Name: "second", Points: pts(baseMs, 90)},
	)

	d, err := transform.Normalize(transform.KindBarChart, res, transform.Params{PreserveOrder: true})
	if !a.Nil(err) {
		t.FailNow()
	}
	a.Equal(transform.KindBarChart, d.Kind)
	a.Equal("first", d.Bars.Bars[0].Name)
	a.Equal("second", d.Bars.Bars[1].Name)
}

func TestNormalizeTable(t *testing.T) {
	a := assert.New(t)

	res := &grafana.Result{Table: &grafana.Table{
		Columns: []grafana.Column{
			{Name: "host", Type: "string"},
			{Name: "up", Type: "boolean"},
			{Name: "load", Type: "number"},
			{Name: "seen", Type: "time"},
		},
		Rows: [][]interface{}{
			{"web-1", true, 0.75, float64(baseMs)},
			{"web-2", false, 3.0, nil},
		},
	}}

	d, err := transform.Normalize(transform.KindTable, res, transform.Params{})
	if !a.Nil(err) {
		t.FailNow()
	}
	a.Equal([]string{"host", "up", "load", "seen"}, d.Table.Columns)
	a.Equal(2, d.Table.RowCount)
	a.Equal([]string{"web-1", "Yes", "0.75", "2024-03-15 11:00"}, d.Table.Rows[0])
	a.Equal([]string{"web-2", "No", "3", ""}, d.Table.Rows[1])
}

func TestNormalizeTableEmpty(t *testing.T) {
	a := assert.New(t)

	d, err := transform.Normalize(transform.KindTable, &grafana.Result{}, transform.Params{})
	if !a.Nil(err) {
		t.FailNow()
	}
	a.NotNil(d.Table)
	a.Empty(d.Table.Columns)
	a.Equal(0, d.Table.RowCount)
}

func TestNormalizeTableRejectsSeries(t *testing.T) {
	a := assert.New(t)

	res := seriesResult(grafana.Series{Name: "m", Points: pts(baseMs, 1)})
	_, err := transform.Normalize(transform.KindTable, res, transform.Params{})
	if !a.NotNil(err) {
		t.FailNow()
	}
	a.True(errors.IsNotValid(err))
	a.Equal(transform.ErrShapeMismatch, errors.Cause(err))
}

func TestNormalizePolystatNumeric(t *testing.T) {
	a := assert.New(t)

	steps := []transform.Step{
		{Value: math.Inf(-1), Color: "red"},
		{Value: 50, Color: "yellow"},
		{Value: 90, Color: "green"},
	}
	res := seriesResult(
		grafana.Series{Name: "disk", Points: pts(baseMs, 95)},
		grafana.Series{Name: "cpu", Points: pts(baseMs, 60)},
		grafana.Series{Name: "mem", Points: pts(baseMs, 20)},
	)

	d, err := transform.Normalize(transform.KindPolystat, res, transform.Params{Thresholds: steps})
	if !a.Nil(err) {
		t.FailNow()
	}
	if !a.Len(d.Polystat.Cells, 3) {
		t.FailNow()
	}
	a.Equal("ok", d.Polystat.Cells[0].Status)
	a.Equal("warning", d.Polystat.Cells[1].Status)
	a.Equal("critical", d.Polystat.Cells[2].Status)
}

func TestNormalizePolystatWithoutThresholds(t *testing.T) {
	a := assert.New(t)

	res := seriesResult(
		grafana.Series{Name: "up", Points: pts(baseMs, 1)},
		grafana.Series{Name: "down", Points: pts(baseMs, 0)},
	)

	d, err := transform.Normalize(transform.KindPolystat, res, transform.Params{})
	if !a.Nil(err) {
		t.FailNow()
	}
	a.Equal("ok", d.Polystat.Cells[0].Status)
	a.Equal("critical", d.Polystat.Cells[1].Status)
}

func TestNormalizePolystatTextValues(t *testing.T) {
	a := assert.New(t)

	res := seriesResult(
		grafana.Series{Name: "api", Points: []grafana.Point{{Time: float64(baseMs), Value: "healthy"}}},
		grafana.Series{Name: "db", Points: []grafana.Point{{Time: float64(baseMs), Value: "connection error"}}},
		grafana.Series{Name: "cache", Points: []grafana.Point{{Time: float64(baseMs), Value: "degraded"}}},
	)

	d, err := transform.Normalize(transform.KindPolystat, res, transform.Params{})
	if !a.Nil(err) {
		t.FailNow()
	}
	if !a.Len(d.Polystat.Cells, 3) {
		t.FailNow()
	}
	a.Equal("ok", d.Polystat.Cells[0].Status)
	a.Nil(d.Polystat.Cells[0].Value)
	a.Equal("healthy", d.Polystat.Cells[0].Formatted)
	a.Equal("critical", d.Polystat.Cells[1].Status)
	a.Equal("warning", d.Polystat.Cells[2].Status)
}

func TestNormalizeUnknownKind(t *testing.T) {
	a := assert.New(t)

	_, err := transform.Normalize(transform.Kind("piechart"), &grafana.Result{}, transform.Params{})
	if !a.NotNil(err) {
		t.FailNow()
	}
	a.True(errors.IsNotSupported(err))
}

func TestMergeVariablesStat(t *testing.T) {
	a := assert.New(t)

	res := seriesResult(grafana.Series{Name: "m", Points: pts(baseMs, 1, 2)})
	d, err := transform.Normalize(transform.KindStat, res, transform.Params{Title: "Errors", Unit: "percent"})
	if !a.Nil(err) {
		t.FailNow()
	}

	m := d.MergeVariables()
	a.Equal("stat", m["panel_type"])
	a.Equal("Errors", m["title"])
	a.Equal("percent", m["unit"])
	a.Equal(2.0, m["value"])
	a.Equal("2%", m["formatted_value"])
	a.Contains(m, "sparkline")
	a.Contains(m, "timestamp")
}

func TestMergeVariablesEmptyStatHasNullValue(t *testing.T) {
	a := assert.New(t)

	d, err := transform.Normalize(transform.KindStat, &grafana.Result{}, transform.Params{})
	if !a.Nil(err) {
		t.FailNow()
	}
	m := d.MergeVariables()
	a.Nil(m["value"])
	a.Equal("N/A", m["formatted_value"])
	a.NotContains(m, "sparkline")
}

func TestMergeVariablesTable(t *testing.T) {
	a := assert.New(t)

	d, err := transform.Normalize(transform.KindTable, &grafana.Result{}, transform.Params{Title: "Hosts"})
	if !a.Nil(err) {
		t.FailNow()
	}
	m := d.MergeVariables()
	a.Equal("table", m["panel_type"])
	a.Equal(0, m["row_count"])
	a.Contains(m, "columns")
	a.Contains(m, "rows")
}
