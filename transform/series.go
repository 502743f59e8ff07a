package transform

import (
	"strconv"
	"time"

	"github.com/juju/errors"
	"github.com/prometheus/common/model"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/grafink/grafink/grafana"
)

// sample is one parsed point.
type sample struct {
	t model.Time
	v float64
}

// samplesOf coerces a raw series, dropping every point whose time or value
// cannot be read. A bad sample never fails the series, it is just absent.
func samplesOf(s grafana.Series) []sample {
	out := make([]sample, 0, len(s.Points))
	for _, pt := range s.Points {
		ts, ok := toTime(pt.Time)
		if !ok {
			continue
		}
		v, ok := toFloat(pt.Value)
		if !ok {
			continue
		}
		out = append(out, sample{t: ts, v: v})
	}
	return out
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// toTime reads a frame timestamp. Numbers at or above 1e12 are epoch
// milliseconds, smaller ones epoch seconds; strings must be RFC3339.
func toTime(v interface{}) (model.Time, bool) {
	switch ts := v.(type) {
	case float64:
		if ts >= 1e12 {
			return model.Time(int64(ts)), true
		}
		return model.Time(int64(ts * 1000)), true
	case int64:
		if ts >= 1_000_000_000_000 {
			return model.Time(ts), true
		}
		return model.Time(ts * 1000), true
	case string:
		t, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			return 0, false
		}
		return model.TimeFromUnixNano(t.UnixNano()), true
	default:
		return 0, false
	}
}

// downsample thins a series to at most max samples, always keeping the
// first and the last and spacing the interior evenly.
func downsample(in []sample, max int) []sample {
	if max <= 0 || len(in) <= max {
		return in
	}
	if max == 1 {
		return []sample{in[len(in)-1]}
	}
	n := len(in)
	out := make([]sample, max)
	for i := 0; i < max; i++ {
		out[i] = in[i*(n-1)/(max-1)]
	}
	return out
}

// statsOf reduces a non-empty sample set.
func statsOf(samples []sample) (min, max, avg float64) {
	vals := make([]float64, len(samples))
	for i, s := range samples {
		vals[i] = s.v
	}
	return floats.Min(vals), floats.Max(vals), stat.Mean(vals, nil)
}

// displayName resolves what a series is called on the device: the
// configured label key first, then the default label key, then the raw
// series identifier.
func displayName(s grafana.Series, labelKey string) string {
	if v, ok := s.Labels[labelKey]; ok && v != "" {
		return v
	}
	if v, ok := s.Labels[DefaultLabelKey]; ok && v != "" {
		return v
	}
	if s.Name != "" {
		return s.Name
	}
	return "Unknown"
}

func clock(t model.Time, loc *time.Location) string {
	return t.Time().In(loc).Format("15:04")
}

// seriesShaped rejects table results for the series-driven panel kinds.
func seriesShaped(res *grafana.Result) ([]grafana.Series, error) {
	if res.Table != nil {
		return nil, errors.Annotatef(ErrShapeMismatch, "expected time series, got a table with %d rows", len(res.Table.Rows))
	}
	return res.Series, nil
}
