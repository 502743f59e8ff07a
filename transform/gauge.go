package transform

import "github.com/grafink/grafink/grafana"

// normalizeGauge renders the latest value of the first usable series as a
// position on the panel's [min,max] span, 0/100 when the panel sets none.
func normalizeGauge(res *grafana.Result, p Params) (*Data, error) {
	series, err := seriesShaped(res)
	if err != nil {
		return nil, err
	}

	min, max := 0.0, 100.0
	if p.Min != nil {
		min = *p.Min
	}
	if p.Max != nil {
		max = *p.Max
	}

	g := &GaugeData{
		Formatted: NoValue,
		Min:       min,
		Max:       max,
		Color:     defaultColor,
	}

	for _, s := range series {
		samples := samplesOf(s)
		if len(samples) == 0 {
			continue
		}
		v := samples[len(samples)-1].v
		g.Value = &v
		g.Formatted = FormatValue(&v, p.Unit, p.Decimals)
		g.Percent = percentOf(v, min, max)
		g.Color = colorOrDefault(Classify(v, p.Thresholds))
		break
	}

	return &Data{Gauge: g}, nil
}
