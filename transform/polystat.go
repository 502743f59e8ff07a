package transform

import (
	"strings"

	"github.com/grafink/grafink/grafana"
)

// normalizePolystat renders one hexagon per series from its latest reported
// value. Numeric values classify through the thresholds; bare status strings
// (health checks that report "down" or "degraded") classify by keyword.
func normalizePolystat(res *grafana.Result, p Params) (*Data, error) {
	series, err := seriesShaped(res)
	if err != nil {
		return nil, err
	}

	pd := &PolystatData{Cells: []PolyCell{}}

	for _, s := range series {
		raw := lastValue(s)
		if raw == nil {
			continue
		}

		cell := PolyCell{Name: displayName(s, p.labelKey())}
		if f, ok := toFloat(raw); ok {
			v := f
			cell.Value = &v
			cell.Formatted = FormatValue(&v, p.Unit, p.Decimals)
			cell.Status = numericStatus(v, p.Thresholds)
		} else if str, ok := raw.(string); ok {
			cell.Formatted = str
			cell.Status = textStatus(str)
		} else {
			continue
		}
		pd.Cells = append(pd.Cells, cell)
	}

	return &Data{Polystat: pd}, nil
}

// lastValue walks back to the newest point that carries any value at all.
func lastValue(s grafana.Series) interface{} {
	for i := len(s.Points) - 1; i >= 0; i-- {
		if s.Points[i].Value != nil {
			return s.Points[i].Value
		}
	}
	return nil
}

func numericStatus(v float64, steps []Step) string {
	if len(steps) == 0 {
		// Without thresholds the only readable signal is up/down.
		if v == 0 {
			return "critical"
		}
		return "ok"
	}
	return severityName(Classify(v, steps))
}

func textStatus(s string) string {
	t := strings.ToLower(s)
	for _, kw := range []string{"error", "down", "fail", "critical"} {
		if strings.Contains(t, kw) {
			return "critical"
		}
	}
	for _, kw := range []string{"warn", "degraded"} {
		if strings.Contains(t, kw) {
			return "warning"
		}
	}
	return "ok"
}
