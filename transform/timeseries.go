package transform

import "github.com/grafink/grafink/grafana"

// normalizeTimeSeries renders every usable series: per-series summary rows
// plus one flattened, downsampled point stream for the chart. Headline
// numbers come from the first series.
func normalizeTimeSeries(res *grafana.Result, p Params) (*Data, error) {
	series, err := seriesShaped(res)
	if err != nil {
		return nil, err
	}

	td := &TimeSeriesData{
		Series:    []SeriesInfo{},
		Points:    []ChartPoint{},
		Formatted: NoValue,
	}
	loc := p.location()

	for _, s := range series {
		samples := samplesOf(s)
		if len(samples) == 0 {
			continue
		}

		name := displayName(s, p.labelKey())
		min, max, avg := statsOf(samples)
		current := samples[len(samples)-1].v

		td.Series = append(td.Series, SeriesInfo{
			Name:      name,
			Current:   current,
			Formatted: FormatValue(&current, p.Unit, p.Decimals),
			Min:       min,
			Max:       max,
			Avg:       round2(avg),
			Points:    len(samples),
		})

		for _, sm := range downsample(samples, p.MaxPoints) {
			td.Points = append(td.Points, ChartPoint{
				Time:  clock(sm.t, loc),
				Value: sm.v,
				Label: name,
			})
		}
	}

	if len(td.Series) > 0 {
		first := td.Series[0]
		cur, min, max, avg := first.Current, first.Min, first.Max, first.Avg
		td.Current = &cur
		td.Formatted = first.Formatted
		td.Min = &min
		td.Max = &max
		td.Avg = &avg
	}

	return &Data{TimeSeries: td}, nil
}
