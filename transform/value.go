package transform

import (
	"math"
	"strconv"
)

// NoValue is what the device shows when a panel produced nothing.
const NoValue = "N/A"

// unitSuffix maps the common Grafana unit ids to a display suffix. Unknown
// units render bare, which beats guessing.
var unitSuffix = map[string]string{
	"percent":     "%",
	"percentunit": "%",
	"bytes":       " B",
	"decbytes":    " B",
	"seconds":     "s",
	"s":           "s",
	"ms":          "ms",
	"ops":         " ops",
	"reqps":       " req/s",
	"rps":         " req/s",
	"short":       "",
	"none":        "",
}

// FormatValue renders a value for the device. Whole numbers drop their
// fraction, everything else keeps two decimals unless the panel overrides.
func FormatValue(v *float64, unit string, decimals *int) string {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return NoValue
	}

	d := 2
	if decimals != nil && *decimals >= 0 {
		d = *decimals
	}

	var s string
	if *v == math.Trunc(*v) {
		s = strconv.FormatFloat(*v, 'f', 0, 64)
	} else {
		s = strconv.FormatFloat(*v, 'f', d, 64)
	}
	return s + unitSuffix[unit]
}

// percentOf places v on the [min,max] span, clamped to 0..100. A collapsed
// span is all-or-nothing.
func percentOf(v, min, max float64) int {
	if max <= min {
		if v >= max {
			return 100
		}
		return 0
	}
	p := (v - min) / (max - min) * 100
	if p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}
	return int(math.Round(p))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
