// Package sample holds canned panel payloads, one per kind, so display
// templates can be developed against stable data without a Grafana instance.
package sample

import (
	"github.com/grafink/grafink/transform"
)

const stamp = "2025-11-30 12:00 UTC"

var builders = map[transform.Kind]func() *transform.Data{
	transform.KindStat:       stat,
	transform.KindTimeSeries: timeSeries,
	transform.KindGauge:      gauge,
	transform.KindBarGauge:   barGauge,
	transform.KindBarChart:   barChart,
	transform.KindTable:      table,
	transform.KindPolystat:   polystat,
}

// Data returns a fresh demonstration payload for k.
func Data(k transform.Kind) (*transform.Data, bool) {
	b, ok := builders[k]
	if !ok {
		return nil, false
	}
	return b(), true
}

// Kinds lists the kinds that have demonstration payloads.
func Kinds() []transform.Kind {
	out := make([]transform.Kind, 0, len(builders))
	for _, k := range transform.Kinds() {
		if _, ok := builders[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

func fp(v float64) *float64 { return &v }

func stat() *transform.Data {
	return &transform.Data{
		Kind:        transform.KindStat,
		Title:       "Active Users",
		Description: "Currently online",
		Timestamp:   stamp,
		Stat: &transform.StatData{
			Value:     fp(1247),
			Formatted: "1,247",
			Color:     "green",
		},
	}
}

func timeSeries() *transform.Data {
	points := []transform.ChartPoint{
		{Time: "11:00", Value: 25, Label: "cpu"},
		{Time: "11:10", Value: 32, Label: "cpu"},
		{Time: "11:20", Value: 45, Label: "cpu"},
		{Time: "11:30", Value: 38, Label: "cpu"},
		{Time: "11:40", Value: 52, Label: "cpu"},
		{Time: "11:50", Value: 48, Label: "cpu"},
		{Time: "12:00", Value: 42, Label: "cpu"},
	}
	return &transform.Data{
		Kind:      transform.KindTimeSeries,
		Title:     "CPU Usage",
		Timestamp: stamp,
		TimeSeries: &transform.TimeSeriesData{
			Series: []transform.SeriesInfo{{
				Name:      "cpu",
				Current:   42,
				Formatted: "42%",
				Min:       25,
				Max:       52,
				Avg:       40.29,
				Points:    len(points),
			}},
			Points:    points,
			Current:   fp(42),
			Formatted: "42%",
			Min:       fp(25),
			Max:       fp(52),
			Avg:       fp(40.29),
		},
	}
}

func gauge() *transform.Data {
	return &transform.Data{
		Kind:      transform.KindGauge,
		Title:     "Memory Usage",
		Timestamp: stamp,
		Gauge: &transform.GaugeData{
			Value:     fp(68),
			Formatted: "68%",
			Percent:   68,
			Min:       0,
			Max:       100,
			Color:     "yellow",
		},
	}
}

func barGauge() *transform.Data {
	return &transform.Data{
		Kind:      transform.KindBarGauge,
		Title:     "System Pressure",
		Timestamp: stamp,
		Bars: &transform.BarsData{
			Bars: []transform.Bar{
				{Name: "memory", Value: 72.8, Formatted: "72.8%", Percent: 100, Color: "yellow"},
				{Name: "cpu", Value: 45.2, Formatted: "45.2%", Percent: 62, Color: "green"},
				{Name: "io", Value: 12.5, Formatted: "12.5%", Percent: 17, Color: "green"},
			},
			Min: 12.5,
			Max: 72.8,
		},
	}
}

func barChart() *transform.Data {
	return &transform.Data{
		Kind:      transform.KindBarChart,
		Title:     "Requests by Region",
		Timestamp: stamp,
		Bars: &transform.BarsData{
			Bars: []transform.Bar{
				{Name: "us-east", Value: 1840, Formatted: "1840 req/s", Percent: 100, Color: "green"},
				{Name: "eu-west", Value: 1212, Formatted: "1212 req/s", Percent: 66, Color: "green"},
				{Name: "ap-south", Value: 498, Formatted: "498 req/s", Percent: 27, Color: "green"},
			},
			Min: 498,
			Max: 1840,
		},
	}
}

func table() *transform.Data {
	return &transform.Data{
		Kind:      transform.KindTable,
		Title:     "Server Status",
		Timestamp: stamp,
		Table: &transform.TableData{
			Columns: []string{"Host", "CPU", "Memory", "Status"},
			Rows: [][]string{
				{"web-server-01", "42%", "60%", "OK"},
				{"web-server-02", "35%", "45%", "OK"},
				{"db-primary", "78%", "82%", "Warning"},
				{"db-replica", "25%", "40%", "OK"},
				{"cache-01", "15%", "90%", "Critical"},
				{"worker-01", "55%", "50%", "OK"},
			},
			RowCount: 6,
		},
	}
}

func polystat() *transform.Data {
	return &transform.Data{
		Kind:      transform.KindPolystat,
		Title:     "Service Health",
		Timestamp: stamp,
		Polystat: &transform.PolystatData{
			Cells: []transform.PolyCell{
				{Name: "API Gateway", Value: fp(99.9), Formatted: "99.9%", Status: "ok"},
				{Name: "Auth Service", Value: fp(100), Formatted: "100%", Status: "ok"},
				{Name: "Database", Value: fp(98.5), Formatted: "98.5%", Status: "ok"},
				{Name: "Cache", Value: fp(85.2), Formatted: "85.2%", Status: "warning"},
				{Name: "Queue", Value: fp(100), Formatted: "100%", Status: "ok"},
				{Name: "Storage", Value: fp(45.0), Formatted: "45.0%", Status: "critical"},
				{Name: "CDN", Value: fp(99.99), Formatted: "99.99%", Status: "ok"},
				{Name: "Search", Value: fp(92.3), Formatted: "92.3%", Status: "warning"},
				{Name: "Email", Value: fp(100), Formatted: "100%", Status: "ok"},
			},
		},
	}
}
