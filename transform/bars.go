package transform

import (
	"sort"

	"github.com/grafink/grafink/grafana"
)

// normalizeBars renders one bar per series from its latest value. Bars sort
// descending by value unless the panel asks for upstream order; bar lengths
// scale against the largest bar.
func normalizeBars(res *grafana.Result, p Params) (*Data, error) {
	series, err := seriesShaped(res)
	if err != nil {
		return nil, err
	}

	bd := &BarsData{Bars: []Bar{}}

	for _, s := range series {
		samples := samplesOf(s)
		if len(samples) == 0 {
			continue
		}
		v := samples[len(samples)-1].v
		bd.Bars = append(bd.Bars, Bar{
			Name:      displayName(s, p.labelKey()),
			Value:     v,
			Formatted: FormatValue(&v, p.Unit, p.Decimals),
			Color:     colorOrDefault(Classify(v, p.Thresholds)),
		})
	}

	if len(bd.Bars) == 0 {
		return &Data{Bars: bd}, nil
	}

	if !p.PreserveOrder {
		sort.SliceStable(bd.Bars, func(i, j int) bool {
			return bd.Bars[i].Value > bd.Bars[j].Value
		})
	}

	bd.Min, bd.Max = bd.Bars[0].Value, bd.Bars[0].Value
	for _, b := range bd.Bars[1:] {
		if b.Value < bd.Min {
			bd.Min = b.Value
		}
		if b.Value > bd.Max {
			bd.Max = b.Value
		}
	}

	for i := range bd.Bars {
		bd.Bars[i].Percent = barLength(bd.Bars[i].Value, bd.Max)
	}

	return &Data{Bars: bd}, nil
}

// barLength scales a bar against the largest value, clamped to 0..100.
func barLength(v, max float64) int {
	if max <= 0 {
		return 0
	}
	return percentOf(v, 0, max)
}
