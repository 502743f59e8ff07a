package transform

import "github.com/grafink/grafink/grafana"

// normalizeStat renders the latest value of the first usable series, with a
// sparkline of the history when there is one worth drawing.
func normalizeStat(res *grafana.Result, p Params) (*Data, error) {
	series, err := seriesShaped(res)
	if err != nil {
		return nil, err
	}

	st := &StatData{
		Formatted: NoValue,
		Color:     defaultColor,
	}

	for _, s := range series {
		samples := samplesOf(s)
		if len(samples) == 0 {
			continue
		}

		last := samples[len(samples)-1].v
		st.Value = &last
		st.Formatted = FormatValue(&last, p.Unit, p.Decimals)
		st.Color = colorOrDefault(Classify(last, p.Thresholds))

		// A one-point sparkline is just noise.
		if len(samples) > 1 {
			loc := p.location()
			for _, sm := range downsample(samples, p.MaxPoints) {
				st.Sparkline = append(st.Sparkline, SparkPoint{
					Time:  clock(sm.t, loc),
					Value: sm.v,
				})
			}
		}
		break
	}

	return &Data{Stat: st}, nil
}
