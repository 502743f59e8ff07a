package transform

// Data is one rendered panel. Exactly one variant member is set, matching
// Kind. MergeVariables flattens it into the key set the display templates
// consume.
type Data struct {
	Kind        Kind   `json:"panel_type"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Unit        string `json:"unit,omitempty"`
	Timestamp   string `json:"timestamp"`

	Stat       *StatData       `json:"stat,omitempty"`
	TimeSeries *TimeSeriesData `json:"time_series,omitempty"`
	Gauge      *GaugeData      `json:"gauge,omitempty"`
	Bars       *BarsData       `json:"bars,omitempty"`
	Table      *TableData      `json:"table,omitempty"`
	Polystat   *PolystatData   `json:"polystat,omitempty"`
}

// SparkPoint is one sparkline sample.
type SparkPoint struct {
	Time  string  `json:"time"`
	Value float64 `json:"value"`
}

type StatData struct {
	Value     *float64     `json:"value"`
	Formatted string       `json:"formatted_value"`
	Color     string       `json:"color"`
	Sparkline []SparkPoint `json:"sparkline,omitempty"`
}

// SeriesInfo summarizes one series of a time-series panel.
type SeriesInfo struct {
	Name      string  `json:"name"`
	Current   float64 `json:"current"`
	Formatted string  `json:"formatted_current"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	Avg       float64 `json:"avg"`
	Points    int     `json:"point_count"`
}

// ChartPoint is one chart sample, labeled with its series.
type ChartPoint struct {
	Time  string  `json:"time"`
	Value float64 `json:"value"`
	Label string  `json:"label"`
}

type TimeSeriesData struct {
	Series []SeriesInfo `json:"series"`
	Points []ChartPoint `json:"chart_data"`

	// Headline numbers, taken from the first series.
	Current   *float64 `json:"current_value"`
	Formatted string   `json:"formatted_value"`
	Min       *float64 `json:"min_value"`
	Max       *float64 `json:"max_value"`
	Avg       *float64 `json:"avg_value"`
}

type GaugeData struct {
	Value     *float64 `json:"value"`
	Formatted string   `json:"formatted_value"`
	Percent   int      `json:"percentage"`
	Min       float64  `json:"min"`
	Max       float64  `json:"max"`
	Color     string   `json:"color"`
}

type Bar struct {
	Name      string  `json:"name"`
	Value     float64 `json:"value"`
	Formatted string  `json:"formatted_value"`
	Percent   int     `json:"percentage"`
	Color     string  `json:"color"`
}

type BarsData struct {
	Bars []Bar   `json:"bars"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

type TableData struct {
	Columns  []string   `json:"columns"`
	Rows     [][]string `json:"rows"`
	RowCount int        `json:"row_count"`
}

// PolyCell is one hexagon of a polystat panel.
type PolyCell struct {
	Name      string   `json:"name"`
	Value     *float64 `json:"value"`
	Formatted string   `json:"formatted_value"`
	Status    string   `json:"status"`
}

type PolystatData struct {
	Cells []PolyCell `json:"stats"`
}

// MergeVariables flattens the payload into the template key set delivered
// to the display webhook.
func (d *Data) MergeVariables() map[string]interface{} {
	m := map[string]interface{}{
		"panel_type": string(d.Kind),
		"title":      d.Title,
		"timestamp":  d.Timestamp,
	}
	if d.Description != "" {
		m["description"] = d.Description
	}
	if d.Unit != "" {
		m["unit"] = d.Unit
	}

	switch {
	case d.Stat != nil:
		m["value"] = deref(d.Stat.Value)
		m["formatted_value"] = d.Stat.Formatted
		m["color"] = d.Stat.Color
		if len(d.Stat.Sparkline) > 0 {
			m["sparkline"] = d.Stat.Sparkline
		}
	case d.TimeSeries != nil:
		m["series"] = d.TimeSeries.Series
		m["chart_data"] = d.TimeSeries.Points
		m["current_value"] = deref(d.TimeSeries.Current)
		m["formatted_value"] = d.TimeSeries.Formatted
		m["min_value"] = deref(d.TimeSeries.Min)
		m["max_value"] = deref(d.TimeSeries.Max)
		m["avg_value"] = deref(d.TimeSeries.Avg)
	case d.Gauge != nil:
		m["value"] = deref(d.Gauge.Value)
		m["formatted_value"] = d.Gauge.Formatted
		m["percentage"] = d.Gauge.Percent
		m["min"] = d.Gauge.Min
		m["max"] = d.Gauge.Max
		m["color"] = d.Gauge.Color
	case d.Bars != nil:
		m["bars"] = d.Bars.Bars
		m["min"] = d.Bars.Min
		m["max"] = d.Bars.Max
	case d.Table != nil:
		m["columns"] = d.Table.Columns
		m["rows"] = d.Table.Rows
		m["row_count"] = d.Table.RowCount
	case d.Polystat != nil:
		m["stats"] = d.Polystat.Cells
	}
	return m
}

func deref(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
