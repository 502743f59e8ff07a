package transform

import "time"

// DefaultLabelKey is the metric label a series display name is taken from
// when the panel does not configure one.
const DefaultLabelKey = "name"

// Params carries the display options a normalizer needs, merged from the
// panel's fieldConfig and the request.
type Params struct {
	Title       string
	Description string
	Unit        string

	// Decimals overrides the default two fraction digits.
	Decimals *int

	// Min and Max bound gauges and bar scales; nil falls back to 0/100.
	Min *float64
	Max *float64

	// Thresholds are ascending classification steps.
	Thresholds []Step

	// LabelKey picks the series display name from the field labels.
	LabelKey string

	// MaxPoints caps sparkline and chart payload sizes. Zero or less
	// means uncapped.
	MaxPoints int

	// TZ is the display time zone for rendered clock times.
	TZ *time.Location

	// PreserveOrder keeps bars in upstream order instead of sorting them
	// by value.
	PreserveOrder bool
}

func (p Params) location() *time.Location {
	if p.TZ == nil {
		return time.UTC
	}
	return p.TZ
}

func (p Params) labelKey() string {
	if p.LabelKey == "" {
		return DefaultLabelKey
	}
	return p.LabelKey
}
